// Atomic file primitives shared by the stores and the CLI.

package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile returns the content of path, or nil if it does not exist.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a storepath.Resolver
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// WriteFile atomically replaces path with data.
//
// The data is written and synced to a temporary file in the same directory,
// which is then renamed over path. Readers see either the old or the new
// content, never a partial write.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(fmt.Errorf("failed to write temp file: %w", err), os.Remove(tmpPath))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Join(fmt.Errorf("failed to sync temp file: %w", err), os.Remove(tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // G302: store files are not secret
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file: %w", err), os.Remove(tmpPath))
	}
	return nil
}

// RemoveFile removes path. A missing file is not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
