// Package cli implements the awoc command tree: install, uninstall, restore,
// backup lifecycle, doctor, and version.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/config"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
)

var (
	cfgFile    string
	targetFlag string
)

var rootCmd = &cobra.Command{
	Use:   "awoc",
	Short: "Manage the AWOC configuration framework",
	Long: `awoc installs, backs up, restores, and removes the AWOC agent and
command configuration for an AI coding-assistant host.

Every destructive operation takes a safety backup first and reports its
identifier, so recovery is always one 'awoc restore <backup>' away.`,
	Example: `  awoc install                  # Install into ~/.claude
  awoc install --target ./.claude  # Project-level install
  awoc backup create pre-experiment
  awoc backup list
  awoc restore 20260825            # Restore by date reference
  awoc uninstall --purge-backups`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: .awoc/config.yml)")
	rootCmd.PersistentFlags().StringVar(&targetFlag, "target", "", "installation directory (default: ~/.claude)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})
}

// Execute runs the root command and maps errors to the documented exit
// codes: 0 success, 1 operation failed, 2 invalid arguments.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if cliErr := apperrors.AsCLIError(err); cliErr != nil {
		apperrors.PrintError(cliErr)
		if cliErr.Category == apperrors.Argument {
			os.Exit(ExitInvalidArguments)
		}
		os.Exit(ExitOperationFailed)
	}

	apperrors.PrintSimpleError(err, apperrors.Runtime)
	os.Exit(ExitOperationFailed)
	return err
}

// exactArgs is cobra.ExactArgs with structured argument errors, so arg-count
// mistakes exit with the invalid-arguments code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return apperrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("expected %d argument(s), got %d", n, len(args)),
				cmd.UseLine())
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with structured argument errors.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return apperrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("expected at most %d argument(s), got %d", n, len(args)),
				cmd.UseLine())
		}
		return nil
	}
}

// loadConfiguration loads the hierarchical config, honoring --config.
func loadConfiguration() (*config.Configuration, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, apperrors.WrapWithMessage(err, apperrors.Configuration,
			"loading configuration",
			"Check the syntax of .awoc/config.yml",
			"Run with --config to point at a different file")
	}
	return cfg, nil
}

// resolveTarget returns the installation root, honoring --target.
func resolveTarget(cfg *config.Configuration) (string, error) {
	if targetFlag != "" {
		return targetFlag, nil
	}
	dir, err := cfg.ResolveTargetDir()
	if err != nil {
		return "", apperrors.WrapWithMessage(err, apperrors.Configuration, "resolving target directory")
	}
	return dir, nil
}

// resolveStore returns the backup store for the configured root.
func resolveStore(cfg *config.Configuration) (*backup.Store, error) {
	root, err := cfg.ResolveBackupDir()
	if err != nil {
		return nil, apperrors.WrapWithMessage(err, apperrors.Configuration, "resolving backup directory")
	}
	return backup.NewStore(root), nil
}

// confirm prompts for a y/N answer on the command's input stream.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
