package testutil

import (
	"testing"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
)

// DefaultSessionID is used when a scenario does not name its session.
const DefaultSessionID = "test-session-default"

// FixedSessionGenerator returns the same session id every time, so golden
// output does not depend on UUID generation.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id, or for
// DefaultSessionID when id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}

// Devices resolves names against c, failing the test on unknown names.
func Devices(t testing.TB, c *device.Catalog, names ...string) []device.Device {
	t.Helper()
	out := make([]device.Device, 0, len(names))
	for _, n := range names {
		d, err := c.Resolve(n)
		if err != nil {
			t.Fatalf("testutil.Devices: %v", err)
		}
		out = append(out, d)
	}
	return out
}

// Journal opens an in-memory journal closed at test cleanup.
func Journal(t testing.TB) *store.Store {
	t.Helper()
	j, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("testutil.Journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}
