package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs a subcommand built from a fresh RootOptions and returns its
// stdout.
func execute(t *testing.T, format string, build func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := build(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// recordSession journals a short session into a new database file and
// returns its path.
func recordSession(t *testing.T, sessionID string, events ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "devsel.db")
	args := append([]string{"--db", dbPath, "--session", sessionID}, events...)
	_, err := execute(t, "text", NewSimulateCommand, args...)
	require.NoError(t, err)
	return dbPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
