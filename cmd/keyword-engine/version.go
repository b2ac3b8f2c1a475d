// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the keyword-engine version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), readBuildInfo)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var readBuildInfo = debug.ReadBuildInfo

// printVersion writes the ldflags version, then the Go toolchain and VCS
// revision recorded in the binary when available.
func printVersion(w io.Writer, info func() (*debug.BuildInfo, bool)) {
	fmt.Fprintf(w, "keyword-engine %s\n", version)
	bi, ok := info()
	if !ok {
		return
	}
	fmt.Fprintf(w, "  go:       %s\n", bi.GoVersion)
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			fmt.Fprintf(w, "  revision: %s\n", s.Value)
		case "vcs.modified":
			if s.Value == "true" {
				fmt.Fprintln(w, "  modified: true")
			}
		}
	}
}
