package device

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// SpecError reports a catalog file that failed CUE compilation or schema
// validation.
type SpecError struct {
	File    string
	Message string
}

func (e *SpecError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("catalog spec %s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("catalog spec: %s", e.Message)
}

// LoadSpecFile reads and validates a CUE catalog spec.
func LoadSpecFile(path string) ([]TypeCount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog spec: %w", err)
	}
	return ParseSpec(data, path)
}

// LoadCatalog builds a catalog from a CUE spec file. An empty path yields
// the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	spec, err := LoadSpecFile(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(spec)
}

// ParseSpec compiles CUE source, unifies it with the catalog schema and
// decodes the entries in declaration order.
func ParseSpec(data []byte, filename string) ([]TypeCount, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &SpecError{File: "schema.cue", Message: cueerrors.Details(err, nil)}
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &SpecError{File: filename, Message: cueerrors.Details(err, nil)}
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &SpecError{File: filename, Message: cueerrors.Details(err, nil)}
	}

	list := unified.LookupPath(cue.ParsePath("catalog"))
	if !list.Exists() {
		return nil, &SpecError{File: filename, Message: "catalog field is required"}
	}

	var raw []struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	}
	if err := list.Decode(&raw); err != nil {
		return nil, &SpecError{File: filename, Message: cueerrors.Details(err, nil)}
	}
	if len(raw) == 0 {
		return nil, &SpecError{File: filename, Message: "catalog must list at least one entry"}
	}

	spec := make([]TypeCount, 0, len(raw))
	for i, entry := range raw {
		t, err := ParseType(entry.Type)
		if err != nil {
			return nil, &SpecError{File: filename, Message: fmt.Sprintf("catalog[%d]: %v", i, err)}
		}
		spec = append(spec, TypeCount{Type: t, Count: entry.Count})
	}
	return spec, nil
}
