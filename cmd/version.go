package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via -ldflags)
// These default values indicate a development build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func userAgent() string {
	return "seca-sri/" + Version
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for seca-sri",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			out := cmd.OutOrStdout()

			if verbose {
				fmt.Fprintf(out, `seca-sri Version Information:
  Version:    %s
  Git Commit: %s
  Build Date: %s
  Go Version: %s
  OS/Arch:    %s/%s
  Compiler:   %s
`, Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.Compiler)
			} else {
				fmt.Fprintf(out, "seca-sri version %s\n", Version)
			}
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
