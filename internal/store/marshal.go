package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/devsel/internal/canon"
)

// marshalNames converts a device name list to canonical JSON TEXT.
func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := canon.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalNames parses a JSON TEXT name list. Returns an empty slice, not
// nil, for an empty list.
func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if data == "" || data == "[]" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}
