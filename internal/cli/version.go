package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the awoc version",
	Args:  maxArgs(0),
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "awoc %s\n", version.Version)
	fmt.Fprintf(out, "  commit: %s\n", version.Commit)
	fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
	if version.IsDevBuild() {
		fmt.Fprintln(out, "  (development build)")
	}
	return nil
}
