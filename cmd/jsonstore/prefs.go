package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/healthsync"
	"github.com/simplekit/jsonstore/internal/jsonstore"
	"github.com/simplekit/jsonstore/internal/prefs"
)

func (a *app) storeOptions() []jsonstore.Option {
	return []jsonstore.Option{jsonstore.WithResolver(a.cfg.Resolver()), jsonstore.WithLogger(a.logger)}
}

func (a *app) newUnitsCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "units [milliliters|ounces]",
		Short: "Show or change the volume unit preference",
		Long: `Without argument, print the selected volume unit. With one, select it.
The default unit comes from default_unit in the configuration.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(prefs.Milliliters), string(prefs.Ounces)},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := prefs.NewUnitsStore(prefs.UnitsConfig{Default: a.cfg.DefaultUnit}, a.storeOptions()...)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case reset:
				if err := s.Reset(ctx); err != nil {
					return err
				}
			case len(args) == 1:
				u, err := prefs.ParseVolumeUnit(args[0])
				if err != nil {
					return err
				}
				if err := s.SetUnit(ctx, u); err != nil {
					return err
				}
			}
			u, err := s.Unit(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u, u.Title())
			return err
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the selection and use the default")
	return cmd
}

func (a *app) newAutoSyncCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "autosync [true|false]",
		Short: "Show or change the health data auto-sync switch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := healthsync.NewAutoSyncStore("", a.storeOptions()...)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case reset:
				if err := s.Reset(ctx); err != nil {
					return err
				}
			case len(args) == 1:
				on, err := strconv.ParseBool(args[0])
				if err != nil {
					return fmt.Errorf("invalid switch value %q", args[0])
				}
				if err := s.SetEnabled(ctx, on); err != nil {
					return err
				}
			}
			on, err := s.Enabled(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), on)
			return err
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "remove the stored switch")
	return cmd
}
