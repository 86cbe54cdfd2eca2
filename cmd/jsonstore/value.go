package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newValueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value",
		Short: "Read or write a single-value file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get FILE",
			Short: "Print the value, or null when absent",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.openValue(args[0])
				if err != nil {
					return err
				}
				v, err := s.Fetch(cmd.Context())
				if err != nil {
					return err
				}
				if v == nil {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "null")
					return err
				}
				return writeJSON(cmd.OutOrStdout(), *v)
			},
		},
		&cobra.Command{
			Use:   "set FILE JSON",
			Short: `Replace the value. JSON may be "-" to read from stdin`,
			Args:  cobra.ExactArgs(2),
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
				s, err := a.openValue(args[0])
				if err != nil {
					return err
				}
				return s.Upsert(cmd.Context(), d)
			},
		},
		&cobra.Command{
			Use:   "clear FILE",
			Short: "Remove the value and its file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.openValue(args[0])
				if err != nil {
					return err
				}
				return s.Delete(cmd.Context())
			},
		},
	)
	return cmd
}
