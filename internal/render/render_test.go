package render

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/timeline"
)

func smallCatalog(t *testing.T) *device.Catalog {
	t.Helper()
	c, err := device.NewCatalog([]device.TypeCount{
		{Type: device.Internal, Count: 1},
		{Type: device.USB, Count: 2},
	})
	require.NoError(t, err)
	return c
}

func sampleSteps(t *testing.T, c *device.Catalog) []timeline.Step {
	t.Helper()
	tl := timeline.New(strategy.NewPriorityList())
	for _, ev := range []timeline.Event{
		timeline.Plug(c.MustLookup("USB 1")),
		timeline.Plug(c.MustLookup("Internal")),
	} {
		_, err := tl.Apply(tl.Len()-1, ev)
		require.NoError(t, err)
	}
	return tl.Steps()
}

func TestPriorityChain(t *testing.T) {
	s := strategy.NewPriorityList()
	assert.Equal(t, "User Priority: (empty)", PriorityChain(s))

	s.Probe([]device.Device{device.Default().MustLookup("USB 1")})
	assert.Equal(t, "User Priority: USB 1", PriorityChain(s))
}

func TestChain(t *testing.T) {
	c := smallCatalog(t)
	assert.Equal(t, "", Chain(nil))
	assert.Equal(t, "USB 2 > Internal", Chain([]device.Device{c.MustLookup("USB 2"), c.MustLookup("Internal")}))
}

func TestChips_Plain(t *testing.T) {
	c := smallCatalog(t)
	steps := sampleSteps(t, c)

	assert.Equal(t, " Internal   USB 1   USB 2 ", Chips(c, steps[0], false))
	assert.Equal(t, " Internal  [*USB 1]  USB 2 ", Chips(c, steps[1], false))
	assert.Equal(t, "[Internal] [*USB 1]  USB 2 ", Chips(c, steps[2], false))
}

func TestChips_StyledKeepsNames(t *testing.T) {
	c := smallCatalog(t)
	steps := sampleSteps(t, c)

	out := Chips(c, steps[2], true)
	assert.Contains(t, out, "[*USB 1]")
	assert.Contains(t, out, "[Internal]")
	assert.Contains(t, out, "USB 2")
}

func TestTimelineTable(t *testing.T) {
	c := smallCatalog(t)
	out := TimelineTable(sampleSteps(t, c))

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "╭"), "rounded style: %q", lines[0])
	assert.Contains(t, out, "Initial state")
	assert.Contains(t, out, "Plug Internal")
	assert.Contains(t, out, "USB 1, Internal")
	assert.Contains(t, out, "Priority")
	// header, two rules, three rows and the bottom border
	assert.Len(t, lines, 7)
}

func TestJournalTable(t *testing.T) {
	out := JournalTable([]store.StepRecord{
		{Seq: 2, Index: 1, Label: "Plug USB 1", Active: "USB 1", Connected: []string{"USB 1"}, Priority: []string{"USB 1"}},
		{Seq: 3, Index: 2, Label: "Unplug USB 1", Connected: []string{}, Priority: []string{"USB 1"}},
	})

	assert.Contains(t, out, "Seq")
	assert.Contains(t, out, "Unplug USB 1")
	assert.Contains(t, out, " - ")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
