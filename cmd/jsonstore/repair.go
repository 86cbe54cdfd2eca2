package main

import (
	"bytes"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/codec"
	"github.com/simplekit/jsonstore/internal/jsonstore"
)

func (a *app) newRepairCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "repair FILE",
		Short: "Fix a corrupt file and rewrite it canonically",
		Long: `Repair a store file that fails to load with a malformed payload error.

Syntax errors such as truncated arrays, missing quotes or trailing commas are
fixed, then the file is rewritten atomically with sorted keys. A file that is
already canonical is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.path(args[0])
			if err != nil {
				return err
			}
			status, out, err := repair(path)
			if err != nil {
				return err
			}
			if status == statusRepaired || status == statusRewritten {
				if dryRun {
					_, err = cmd.OutOrStdout().Write(append(out, '\n'))
					return err
				}
				if err := jsonstore.WriteFile(path, out); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				a.logger.Info("Rewrote file", "path", path, "status", status)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), status)
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the result instead of writing it")
	return cmd
}

const (
	statusMissing   = "missing"
	statusCanonical = "canonical"
	statusRewritten = "rewritten"
	statusRepaired  = "repaired"
)

// repair returns the canonical form of the file at path and what had to be
// done to get it.
func repair(path string) (string, []byte, error) {
	data, err := jsonstore.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return statusMissing, nil, nil
	}
	if out, err := codec.Canonicalize(data); err == nil {
		if bytes.Equal(out, data) {
			return statusCanonical, out, nil
		}
		return statusRewritten, out, nil
	}
	fixed, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to repair %s: %w", path, err)
	}
	out, err := codec.Canonicalize([]byte(fixed))
	if err != nil {
		return "", nil, fmt.Errorf("failed to repair %s: %w", path, err)
	}
	return statusRepaired, out, nil
}
