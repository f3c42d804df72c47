package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsel/internal/store"
)

func TestTrace_Session(t *testing.T) {
	dbPath := recordSession(t, "s1", "plug:USB 1", "plug:USB 2", "select:USB 1")

	out, err := execute(t, "text", NewTraceCommand, "--db", dbPath, "--session", "s1")
	require.NoError(t, err)

	assert.Contains(t, out, "Session: s1 (strategy priority-list)")
	assert.Contains(t, out, "Plug USB 2")
	assert.Contains(t, out, "USB 1 > USB 2")
}

func TestTrace_KindFilterJSON(t *testing.T) {
	dbPath := recordSession(t, "s1", "plug:USB 1", "plug:USB 2", "select:USB 1")

	out, err := execute(t, "json", NewTraceCommand, "--db", dbPath, "--session", "s1", "--kind", "select")
	require.NoError(t, err)

	var resp struct {
		SessionID string      `json:"session_id"`
		Data      TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Data.Steps, 1)
	step := resp.Data.Steps[0]
	assert.Equal(t, "select", step.Kind)
	assert.Equal(t, 3, step.Index)
	assert.Equal(t, []string{"USB 1", "USB 2"}, step.Priority)
	assert.Len(t, step.Digest, 64)
}

func TestTrace_ListSessions(t *testing.T) {
	dbPath := recordSession(t, "s1", "plug:USB 1")

	out, err := execute(t, "json", NewTraceCommand, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data []SessionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, SessionSummary{ID: "s1", Strategy: "priority-list", CreatedSeq: 1, Steps: 1}, resp.Data[0])
}

func TestTrace_EmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "text", NewTraceCommand, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in journal.")
}

func TestTrace_Errors(t *testing.T) {
	dbPath := recordSession(t, "s1", "plug:USB 1")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no journal", nil, "no journal"},
		{"missing journal", []string{"--db", filepath.Join(t.TempDir(), "none.db")}, "journal not found"},
		{"unknown session", []string{"--db", dbPath, "--session", "nope"}, "unknown session"},
		{"bad kind", []string{"--db", dbPath, "--session", "s1", "--kind", "yank"}, "invalid --kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "text", NewTraceCommand, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
