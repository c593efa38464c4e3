package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
)

// WriteBytes writes data to path through a temporary file and a rename.
//
// Readers never observe a partially written file.
func WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, consts.PermsGenericDir); err != nil {
		return fmt.Errorf("failed to create parent for %q: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tubarchive-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Pl.E("failed to remove temp file %q: %v", tmpPath, err)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file for %q: %w", path, err)
	}
	if err := tmp.Chmod(consts.PermsJSONFile); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to chmod temp file for %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file for %q: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move temp file into %q: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON to path atomically.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON for %q: %w", path, err)
	}
	return WriteBytes(path, append(data, '\n'))
}
