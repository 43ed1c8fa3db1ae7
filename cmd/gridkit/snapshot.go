package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/template"
)

// loadSnapshot reads an entity-state snapshot from a JSON file shaped like
// {"light.kitchen": {"state": "on", "attributes": {...}}}. An empty path
// yields an empty snapshot.
func loadSnapshot(path string) (template.Snapshot, error) {
	if path == "" {
		return template.Snapshot{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state snapshot: %w", err)
	}

	var snap template.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing state snapshot %s: %w", path, err)
	}
	return snap, nil
}

// selectView picks one view out of a parsed document by index.
func selectView(doc *config.Document, index int) (*config.View, error) {
	if index < 0 || index >= len(doc.Views) {
		return nil, fmt.Errorf("view index %d out of range (document has %d views)", index, len(doc.Views))
	}
	return &doc.Views[index], nil
}
