package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "stepwise", resolveVersion())
	},
}

// resolveVersion falls back to the module version recorded by
// `go install module@version` when no -ldflags version was stamped.
func resolveVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}
