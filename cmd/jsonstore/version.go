package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, ok := debug.ReadBuildInfo()
			return newBuildInfo(info, ok).write(cmd.OutOrStdout())
		},
	}
}

// buildInfo is the subset of the embedded build metadata that is printed.
type buildInfo struct {
	version  string
	goVer    string
	revision string
	built    string
	modified bool
}

func newBuildInfo(info *debug.BuildInfo, ok bool) buildInfo {
	b := buildInfo{version: "dev", goVer: "unknown", revision: "unknown"}
	if !ok || info == nil {
		return b
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.version = v
	}
	b.goVer = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.revision = s.Value
			if len(b.revision) > 12 {
				b.revision = b.revision[:12]
			}
		case "vcs.time":
			b.built = s.Value
		case "vcs.modified":
			b.modified = s.Value == "true"
		}
	}
	return b
}

func (b buildInfo) write(w io.Writer) error {
	rev := b.revision
	if b.modified {
		rev += "-dirty"
	}
	if _, err := fmt.Fprintf(w, "jsonstore %s (%s, %s)\n", b.version, rev, b.goVer); err != nil {
		return err
	}
	if b.built != "" {
		_, err := fmt.Fprintf(w, "  committed %s\n", b.built)
		return err
	}
	return nil
}
