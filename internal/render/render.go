package render

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/strategy"
	"github.com/roach88/devsel/internal/timeline"
)

// Styles holds the chip styles.
type Styles struct {
	Active       lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
}

// DefaultStyles returns the chip palette.
func DefaultStyles() Styles {
	return Styles{
		Active: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a6e3a1")).
			Bold(true),
		Connected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#89b4fa")),
		Disconnected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")).
			Faint(true),
	}
}

// PriorityChain renders the strategy's own visualization.
func PriorityChain(s strategy.Strategy) string {
	return s.Visualize()
}

// Chain joins device names strongest first, e.g. "USB 2 > USB 1".
func Chain(devices []device.Device) string {
	return strings.Join(device.Names(devices), " > ")
}

// Chips renders one chip per catalog device: "[*name]" for the active
// device, "[name]" for other connected devices and " name " for the rest.
func Chips(c *device.Catalog, s timeline.Step, styled bool) string {
	styles := DefaultStyles()
	active, hasActive := s.Active()

	chips := make([]string, 0, c.Len())
	for _, d := range c.All() {
		var chip string
		var style lipgloss.Style
		switch {
		case hasActive && active.Same(d):
			chip, style = "[*"+d.Name+"]", styles.Active
		case s.IsConnected(d):
			chip, style = "["+d.Name+"]", styles.Connected
		default:
			chip, style = " "+d.Name+" ", styles.Disconnected
		}
		if styled {
			chip = style.Render(chip)
		}
		chips = append(chips, chip)
	}
	return strings.Join(chips, " ")
}

// IsTerminal reports whether w is a terminal, so callers can decide on
// styling.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
