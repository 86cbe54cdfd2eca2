package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/codec"
)

const defaultKey = "id"

func (a *app) newListCmd() *cobra.Command {
	var key, query string
	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "Print the records of an entity file",
		Long: `Print every record of an entity file as one JSON array.

With --query, the array is passed to a jq filter and each result is printed
on its own line.

Example:
  jsonstore list healthkit_entry_sync_metadata.json
  jsonstore list notes.json --query '.[] | select(.done) | .id'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openEntities(args[0], key)
			if err != nil {
				return err
			}
			docs, err := s.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			if query != "" {
				return runQuery(cmd.Context(), cmd.OutOrStdout(), query, docs)
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
	cmd.Flags().StringVar(&key, "key", defaultKey, "identifier field")
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq filter applied to the record array")
	return cmd
}

func (a *app) newPutCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "put FILE JSON",
		Short: "Insert or replace a record",
		Long: `Insert a record into an entity file, replacing the one with the same
identifier. JSON may be "-" to read from stdin. Malformed JSON such as
single quotes or trailing commas is repaired before storing.

Example:
  jsonstore put notes.json '{"id": 1, "text": "hello"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			d, repaired, err := parseDocument(text)
			if err != nil {
				return err
			}
			if repaired {
				a.logger.Warn("repaired malformed input")
			}
			id := keyOf(d, key)
			if id == "" {
				return fmt.Errorf("record has no %q field", key)
			}
			s, err := a.openEntities(args[0], key)
			if err != nil {
				return err
			}
			if err := s.Upsert(cmd.Context(), d); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", defaultKey, "identifier field")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	var key string
	var all bool
	cmd := &cobra.Command{
		Use:   "delete FILE [ID]",
		Short: "Delete a record, or every record with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openEntities(args[0], key)
			if err != nil {
				return err
			}
			n := 0
			if all {
				docs, err := s.Fetch(cmd.Context())
				if err != nil {
					return err
				}
				if err := s.DeleteAll(cmd.Context()); err != nil {
					return err
				}
				n = len(docs)
			} else {
				deleted, err := s.Delete(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if deleted {
					n = 1
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", defaultKey, "identifier field")
	cmd.Flags().BoolVar(&all, "all", false, "delete every record")
	return cmd
}

// runQuery runs a jq filter over docs and prints each result.
func runQuery(ctx context.Context, w io.Writer, expr string, docs []document) error {
	q, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	// gojq only accepts plain JSON values.
	raw, err := codec.EncodeList(docs)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}
	iter := q.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return fmt.Errorf("query failed: %w", err)
		}
		if err := writeJSON(w, v); err != nil {
			return err
		}
	}
}
