package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_DefaultText(t *testing.T) {
	out, err := execute(t, "text", NewCatalogCommand)
	require.NoError(t, err)

	assert.Contains(t, out, "Device")
	assert.Contains(t, out, "Internal")
	assert.Contains(t, out, "3.5mm")
	assert.Contains(t, out, "Bluetooth 3")
}

func TestCatalog_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.cue")
	writeFile(t, path, `catalog: [{type: "3.5mm", count: 1}, {type: "USB", count: 2}]`)

	out, err := execute(t, "json", NewCatalogCommand, "--catalog", path)
	require.NoError(t, err)

	var resp struct {
		Data []CatalogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []CatalogEntry{
		{Name: "3.5mm", Type: "3.5mm", Priority: 3, Jack: true},
		{Name: "USB 1", Type: "USB", Priority: 3},
		{Name: "USB 2", Type: "USB", Priority: 3},
	}, resp.Data)
}

func TestCatalog_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	writeFile(t, path, `catalog: [{type: "Firewire", count: 1}]`)

	_, err := execute(t, "text", NewCatalogCommand, "--catalog", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
