package main

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/codec"
	"github.com/simplekit/jsonstore/internal/healthsync"
	"github.com/simplekit/jsonstore/internal/prefs"
)

// schemaTypes maps schema names to the Go type of the whole file content.
var schemaTypes = map[string]reflect.Type{
	"sync-metadata": reflect.TypeFor[[]healthsync.SyncMetadata](),
	"auto-sync":     reflect.TypeFor[healthsync.AutoSync](),
	"units":         reflect.TypeFor[prefs.Units](),
}

func newSchemaCmd() *cobra.Command {
	names := make([]string, 0, len(schemaTypes))
	for name := range schemaTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return &cobra.Command{
		Use:       "schema [" + strings.Join(names, "|") + "]",
		Short:     "Print the JSON Schema of a built-in store file",
		Long:      "Without argument, list the available schemas.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
				return err
			}
			b, err := fileSchema(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(b, '\n'))
			return err
		},
	}
}

// fileSchema returns the indented JSON Schema registered under name.
func fileSchema(name string) ([]byte, error) {
	t, ok := schemaTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true, Mapper: mapType}
	return json.MarshalIndent(r.ReflectFromType(t), "", "  ")
}

// mapType describes the types that serialize as strings.
func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeFor[codec.Time]():
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[uuid.UUID]():
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	}
	return nil
}
