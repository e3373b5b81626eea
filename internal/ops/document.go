package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"safetasks/internal/state"
)

// ExportFile writes the store's backup document into dir under its dated
// name and returns the path.
func ExportFile(store *state.Store, dir string) (string, error) {
	name, doc, err := store.Export()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// ImportFile replaces the store's state with the document at path.
func ImportFile(ctx context.Context, store *state.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := store.Import(ctx, raw); err != nil {
		return fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	return nil
}
