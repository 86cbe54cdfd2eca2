// Package main is the entry point for the jsonstore CLI.
//
// jsonstore inspects and edits the JSON files backing the application stores:
// entity collections, single values and the preference files. It can also
// watch a file for changes, repair a corrupt one and print the JSON Schema of
// the built-in record types.
//
// Usage:
//
//	jsonstore list healthkit_entry_sync_metadata.json --key id
//	jsonstore put notes.json '{"id":1,"text":"hello"}'
//	jsonstore value get healthkit_auto_sync.json
//	jsonstore watch notes.json
//	jsonstore repair notes.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/config"
	"github.com/simplekit/jsonstore/internal/jsonstore"
	"github.com/simplekit/jsonstore/internal/storepath"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jsonstore: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "jsonstore",
		Short: "Inspect and edit JSON store files",
		Long: `jsonstore inspects and edits the JSON files backing the application stores.

FILE is a store file name resolved in the data directory, or a path.

Configuration is read from config.yaml in the user configuration directory
unless --config is given. Flags override the file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to config file")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory holding the store files")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.newListCmd(),
		a.newPutCmd(),
		a.newDeleteCmd(),
		a.newValueCmd(),
		a.newWatchCmd(),
		a.newRepairCmd(),
		a.newUnitsCmd(),
		a.newAutoSyncCmd(),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		if p, err := config.DefaultPath(jsonstore.DefaultApp); err == nil {
			path = p
		}
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, _ := cfg.Level()
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)
	return nil
}

// options returns the store options for arg. A bare file name is resolved by
// the configured resolver; a path overrides it with the path's directory.
func (a *app) options(arg string) (string, []jsonstore.Option) {
	name := filepath.Base(arg)
	var r storepath.Resolver = a.cfg.Resolver()
	if name != arg {
		r = storepath.Dir(filepath.Dir(arg))
	}
	return name, []jsonstore.Option{jsonstore.WithResolver(r), jsonstore.WithLogger(a.logger)}
}

// path resolves arg to the backing file location.
func (a *app) path(arg string) (string, error) {
	name := filepath.Base(arg)
	if name != arg {
		return storepath.Dir(filepath.Dir(arg)).Path(name)
	}
	return a.cfg.Resolver().Path(name)
}

// newLogger returns a tint logger writing to w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	w, color := terminal(w)
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  "15:04:05.000",
		NoColor:     !color,
		ReplaceAttr: dropAttrs(os.Getenv("JOURNAL_STREAM") != ""),
	}))
}

// terminal wraps w for ANSI output and reports whether it is a TTY.
func terminal(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return w, false
	}
	return colorable.NewColorable(f), isatty.IsTerminal(f.Fd())
}

// dropAttrs removes empty attributes, and the timestamp when journald
// already records one.
func dropAttrs(noTime bool) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if noTime && len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		switch a.Value.Kind() {
		case slog.KindString:
			if a.Value.String() == "" {
				return slog.Attr{}
			}
		case slog.KindAny:
			if a.Value.Any() == nil {
				return slog.Attr{}
			}
		}
		return a
	}
}
