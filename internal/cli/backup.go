package cli

import (
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage the backup store",
	Long:  `Commands for creating, listing, inspecting, and cleaning backups.`,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
