// Package codec provides the deterministic JSON encoding used by store files.
//
// Encoding goes through encoding/json and is then canonicalized: object keys
// are sorted at every depth, including struct fields, and numbers keep their
// exact textual form. Byte-identical input therefore produces byte-identical
// output, which keeps store files diffable.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal encodes v into canonical JSON.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Canonicalize(raw)
}

// Unmarshal decodes data into v.
//
// Numbers decoded into interface values are kept as json.Number so that a
// decode/encode cycle does not alter them.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return nil
}

// Canonicalize rewrites a JSON document with sorted object keys and no
// insignificant whitespace.
func Canonicalize(raw []byte) ([]byte, error) {
	var tree any
	if err := Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to canonicalize: %w", err)
	}
	// encoding/json sorts map keys.
	return json.Marshal(tree)
}

// Encode encodes a single value.
func Encode[T any](v T) ([]byte, error) {
	return Marshal(v)
}

// Decode decodes a single value.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// EncodeList encodes a list of values. A nil list encodes as an empty array.
func EncodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return Marshal(items)
}

// DecodeList decodes a list of values. Empty input and JSON null decode to an
// empty, non-nil list.
func DecodeList[T any](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
