package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/amp"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, version)
				return
			}
			fmt.Fprintf(w, "amp %s (commit %s, built %s)\n", version, commit, date)
			fmt.Fprintf(w, "  Wire version: %d\n", amp.Version)
			fmt.Fprintf(w, "  Go version:   %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
