package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/config"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage awoc configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented configuration file",
	Long: `Write a fully commented configuration file with all available options.

By default the project-level config (.awoc/config.yml) is written; pass
--user for the user-level config instead. An existing file is never
overwritten without --force.

Examples:
  awoc config init
  awoc config init --user
  awoc config init --force`,
	Args: maxArgs(0),
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("user", false, "write the user-level config instead of the project one")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	userLevel, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	path := config.ProjectConfigPath()
	if userLevel {
		var err error
		path, err = config.UserConfigPath()
		if err != nil {
			return apperrors.WrapWithMessage(err, apperrors.Configuration,
				"locating user config directory")
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return apperrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", path),
			"Pass --force to overwrite it",
			"Edit the existing file instead")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.WrapWithMessage(err, apperrors.Configuration,
			"creating config directory")
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return apperrors.WrapWithMessage(err, apperrors.Configuration,
			"writing config file")
	}

	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", path))
	return nil
}
