// Package storepath maps logical store file names to absolute paths.
//
// Stores depend on the [Resolver] interface only, so tests can redirect
// storage to a scratch directory with [Dir].
package storepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrDirectoryUnavailable is returned when the durable storage root cannot
	// be located or created.
	ErrDirectoryUnavailable = errors.New("storage directory unavailable")
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = errors.New("invalid store file name")
)

// Resolver resolves a store file name to an absolute path.
type Resolver interface {
	Path(name string) (string, error)
}

// Dir resolves names inside a fixed directory, creating it on demand.
type Dir string

// Path implements Resolver.
func (d Dir) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if d == "" {
		return "", fmt.Errorf("%w: empty root", ErrDirectoryUnavailable)
	}
	root, err := filepath.Abs(string(d))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return filepath.Join(root, name), nil
}

// UserDir resolves names inside the per-user application directory, e.g.
// ~/.config/<App> on Linux or ~/Library/Application Support/<App> on macOS.
type UserDir struct {
	App string
}

// Path implements Resolver.
func (u UserDir) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if u.App == "" {
		return "", fmt.Errorf("%w: application name is required", ErrDirectoryUnavailable)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return Dir(filepath.Join(base, u.App)).Path(name)
}

// ValidateName checks that name is a plain file name without any directory
// component.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), filepath.Base(name) != name:
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
