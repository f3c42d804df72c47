package render

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/timeline"
)

const none = "-"

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// TimelineTable renders the steps of a timeline, one row per step.
func TimelineTable(steps []timeline.Step) string {
	rows := make([][]string, 0, len(steps))
	for i, s := range steps {
		active := none
		if a, ok := s.Active(); ok {
			active = a.Name
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			s.Label(),
			active,
			orNone(strings.Join(device.Names(s.Connected()), ", ")),
			orNone(Chain(s.Ranked())),
		})
	}
	return renderTable(
		[]string{"#", "Step", "Active", "Connected", "Priority"},
		rows,
		[]columnAlignment{alignRight},
	)
}

// JournalTable renders journaled step records in sequence order.
func JournalTable(records []store.StepRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.Seq, 10),
			strconv.Itoa(r.Index),
			r.Label,
			orNone(r.Active),
			orNone(strings.Join(r.Connected, ", ")),
			orNone(strings.Join(r.Priority, " > ")),
		})
	}
	return renderTable(
		[]string{"Seq", "#", "Step", "Active", "Connected", "Priority"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}

// Table renders a plain left-aligned table.
func Table(headers []string, rows [][]string) string {
	return renderTable(headers, rows, nil)
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
