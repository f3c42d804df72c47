package engine

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/devsel/internal/canon"
	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/store"
	"github.com/roach88/devsel/internal/timeline"
)

// StepObject is the canonical form of a step at a timeline index. It is
// what StepDigest hashes and what harness traces print.
func StepObject(index int, s timeline.Step) map[string]any {
	return map[string]any{
		"index":     index,
		"label":     s.Label(),
		"active":    activeName(s),
		"connected": device.Names(s.Connected()),
		"priority":  device.Names(s.Ranked()),
	}
}

// StepDigest returns the content digest of a step at a timeline index.
// Two steps with equal label, devices and preferences share a digest.
func StepDigest(index int, s timeline.Step) (string, error) {
	return canon.Digest(canon.DomainStep, StepObject(index, s))
}

// NewStepRecord builds the journal row for an accepted step.
func NewStepRecord(sessionID string, seq int64, index int, ev timeline.Event, s timeline.Step) (store.StepRecord, error) {
	digest, err := StepDigest(index, s)
	if err != nil {
		return store.StepRecord{}, err
	}
	return store.StepRecord{
		SessionID: sessionID,
		Seq:       seq,
		Index:     index,
		Kind:      string(ev.Kind),
		Device:    ev.Device.Name,
		Label:     s.Label(),
		Active:    activeName(s),
		Connected: device.Names(s.Connected()),
		Priority:  device.Names(s.Ranked()),
		Digest:    digest,
	}, nil
}

func catalogObject(spec []device.TypeCount) []any {
	entries := make([]any, len(spec))
	for i, e := range spec {
		entries[i] = map[string]any{"type": string(e.Type), "count": e.Count}
	}
	return entries
}

// EncodeCatalog returns the canonical JSON of a catalog spec.
func EncodeCatalog(spec []device.TypeCount) (string, error) {
	data, err := canon.Marshal(catalogObject(spec))
	if err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	return string(data), nil
}

// DecodeCatalog parses the output of EncodeCatalog.
func DecodeCatalog(data string) ([]device.TypeCount, error) {
	var spec []device.TypeCount
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, e := range spec {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("decode catalog: entry %d: %w: %q", i, device.ErrUnknownType, e.Type)
		}
	}
	return spec, nil
}

// CatalogDigest identifies a catalog spec.
func CatalogDigest(spec []device.TypeCount) (string, error) {
	return canon.Digest(canon.DomainCatalog, catalogObject(spec))
}

func activeName(s timeline.Step) string {
	if a, ok := s.Active(); ok {
		return a.Name
	}
	return ""
}
