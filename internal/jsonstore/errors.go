package jsonstore

import (
	"errors"
	"fmt"

	"github.com/simplekit/jsonstore/internal/storepath"
)

// Error kinds. Use errors.Is to test which one an operation failed with.
var (
	// ErrDirectoryUnavailable means the durable storage root cannot be resolved.
	ErrDirectoryUnavailable = storepath.ErrDirectoryUnavailable
	// ErrRead means the backing file exists but could not be read.
	ErrRead = errors.New("read failed")
	// ErrDecode means the backing file holds a malformed or incompatible payload.
	ErrDecode = errors.New("malformed payload")
	// ErrEncode means a record could not be serialized.
	ErrEncode = errors.New("encode failed")
	// ErrWrite means the durable write or removal of the backing file failed.
	ErrWrite = errors.New("write failed")
)

// Error describes a failed store operation.
type Error struct {
	// Op is the internal step that failed: load, encode, write or remove.
	Op string
	// Path is the backing file.
	Path string
	// Kind is one of the Err* sentinels.
	Kind error
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
