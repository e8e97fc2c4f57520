package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seantiz/tasksolver/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tasksolver %s\n", version.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:     %s\n", version.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:      %s\n", version.BuildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "  go version: %s\n", version.GoVersion())
	},
}
