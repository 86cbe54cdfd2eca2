package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/simplekit/jsonstore/internal/codec"
	"github.com/simplekit/jsonstore/internal/jsonstore"
)

// document is an untyped JSON object as stored by an arbitrary store file.
type document map[string]any

func (d document) Clone() document {
	if d == nil {
		return nil
	}
	return cloneJSON(map[string]any(d)).(map[string]any)
}

// cloneJSON deep-copies a decoded JSON value. Scalars are immutable.
func cloneJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneJSON(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = cloneJSON(e)
		}
		return l
	default:
		return v
	}
}

// keyOf returns the identifier of d under field, or "" when missing.
func keyOf(d document, field string) string {
	v, ok := d[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (a *app) openEntities(arg, keyField string) (*jsonstore.EntityStore[document, string], error) {
	name, opts := a.options(arg)
	return jsonstore.NewEntityStore(jsonstore.EntityConfig[document, string]{
		Name: name,
		Key:  func(d document) string { return keyOf(d, keyField) },
	}, opts...)
}

func (a *app) openValue(arg string) (*jsonstore.ValueStore[document], error) {
	name, opts := a.options(arg)
	return jsonstore.NewValueStore[document](name, opts...)
}

// readInput returns arg, or stdin when arg is "-".
func readInput(in io.Reader, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}

// parseDocument decodes a JSON object, repairing malformed input. It reports
// whether a repair was needed.
func parseDocument(text string) (document, bool, error) {
	var d document
	err := codec.Unmarshal([]byte(text), &d)
	if err == nil {
		if d == nil {
			return nil, false, fmt.Errorf("expected a JSON object, got %s", strings.TrimSpace(text))
		}
		return d, false, nil
	}
	fixed, rerr := jsonrepair.JSONRepair(text)
	if rerr != nil {
		return nil, false, fmt.Errorf("invalid JSON: %w", err)
	}
	d = nil
	if err := codec.Unmarshal([]byte(fixed), &d); err != nil || d == nil {
		return nil, false, fmt.Errorf("expected a JSON object, got %s", fixed)
	}
	return d, true, nil
}

// writeJSON prints v as canonical JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	b, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
