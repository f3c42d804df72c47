package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("session-123")
	assert.Equal(t, "session-123", gen.Generate())
	assert.Equal(t, "session-123", gen.Generate())

	assert.Equal(t, DefaultSessionID, NewFixedSessionGenerator("").Generate())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestDevices(t *testing.T) {
	got := Devices(t, device.Default(), "USB 2", "3.5mm")

	require.Len(t, got, 2)
	assert.Equal(t, device.USB, got[0].Type)
	assert.Equal(t, device.ThreePointFive, got[1].Type)
}

func TestJournal(t *testing.T) {
	j := Journal(t)

	err := j.WriteSession(context.Background(), store.Session{ID: "s", Strategy: "priority-list", Catalog: "[]", CreatedSeq: 1})
	require.NoError(t, err)

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
