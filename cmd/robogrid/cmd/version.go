package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/robogrid/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "RoboGrid v%s\n", version.Platform)
		fmt.Fprintf(out, "  Engine:     %s\n", version.Engine)
		fmt.Fprintf(out, "  Journal:    %s\n", version.Journal)
		fmt.Fprintf(out, "  Server:     %s\n", version.Server)
		fmt.Fprintf(out, "  TUI:        %s\n", version.TUI)
		fmt.Fprintf(out, "  Git Commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  Build Date: %s\n", version.BuildDate)
		fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
