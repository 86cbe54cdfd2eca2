package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/simplekit/jsonstore/internal/codec"
	"github.com/simplekit/jsonstore/internal/jsonstore"
)

func (a *app) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Print the file content every time it changes",
		Long: `Print the decoded content of FILE, then again every time another process
rewrites or removes it. A missing file prints null. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.path(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return watchFile(cmd.Context(), a.logger, path, func(data []byte) error {
				return printSnapshot(w, a.logger, data)
			})
		},
	}
}

// watchFile calls emit with the content of path, then again whenever it
// changes, until ctx is done. The parent directory is watched so atomic
// renames over path are seen.
func watchFile(ctx context.Context, logger *slog.Logger, path string, emit func([]byte) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	last, err := jsonstore.ReadFile(path)
	if err != nil {
		return err
	}
	if err := emit(last); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op == fsnotify.Chmod {
				continue
			}
			data, err := jsonstore.ReadFile(path)
			if err != nil {
				logger.WarnContext(ctx, "Error reading watched file", "path", path, "err", err)
				continue
			}
			if bytes.Equal(data, last) {
				continue
			}
			last = data
			if err := emit(data); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "Error watching file", "path", path, "err", err)
		}
	}
}

func printSnapshot(w io.Writer, logger *slog.Logger, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		_, err := fmt.Fprintln(w, "null")
		return err
	}
	var v any
	if err := codec.Unmarshal(data, &v); err != nil {
		logger.Warn("Skipping malformed content", "err", err)
		return nil
	}
	return writeJSON(w, v)
}
