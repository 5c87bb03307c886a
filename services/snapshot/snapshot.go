package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	pkgerrors "atlasworker/pkg/errors"
)

// Store reads and writes the JSON snapshot files handed between
// pipeline stages. The file shape is the committed contract: records
// round-trip losslessly, with absent fields serialized as explicit
// nulls.
type Store struct{}

// NewStore creates a snapshot store
func NewStore() *Store {
	return &Store{}
}

// Save writes v as an indented JSON snapshot, creating parent
// directories as needed.
func (s *Store) Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pkgerrors.NewSnapshot("save", "failed to create snapshot directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return pkgerrors.NewSnapshot("save", "failed to marshal snapshot", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pkgerrors.NewSnapshot("save", "failed to write snapshot file", err)
	}
	return nil
}

// Load reads a JSON snapshot into v
func (s *Store) Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.NewSnapshot("load", "failed to read snapshot file", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return pkgerrors.NewSnapshot("load", "failed to unmarshal snapshot", err)
	}
	return nil
}
