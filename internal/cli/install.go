package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/output"
	"github.com/awoc-dev/awoc/internal/version"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install or upgrade the AWOC configuration",
	Long: `Install the AWOC agents, commands, hooks, and settings into the target
directory.

When an existing installation is detected, a safety backup of the current
state is taken before any file is overwritten, and the new marker records
its location. There is no automatic rollback: if the install fails after
files were written, recover by restoring the reported safety backup.

Examples:
  awoc install
  awoc install --target ./.claude
  awoc install --force`,
	Args: maxArgs(0),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().Bool("force", false, "reinstall over an existing installation without prompting")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	targetRoot, err := resolveTarget(cfg)
	if err != nil {
		return err
	}
	store, err := resolveStore(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if install.MarkerExists(targetRoot) && !force && !cfg.SkipConfirmations {
		if !confirm(cmd, fmt.Sprintf("AWOC is already installed at %s. Reinstall?", targetRoot)) {
			fmt.Fprintln(out, "Install cancelled.")
			return nil
		}
	}

	installer := &install.Installer{
		Store:      store,
		TargetRoot: targetRoot,
		Version:    version.Version,
		Compress:   cfg.Compress,
	}

	fmt.Fprintf(out, "Installing AWOC %s to %s...\n", version.Version, targetRoot)

	result, err := installer.Run()
	reportInstallBackups(cmd, result)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Runtime,
			"The target directory was not rolled back",
			"Recover with 'awoc restore <safety-backup>' if needed")
	}

	for _, rel := range result.Deployed {
		fmt.Fprintf(out, "  + %s\n", rel)
	}
	output.PrintSuccess(out, fmt.Sprintf("Installed %d files to %s", len(result.Deployed), targetRoot))
	fmt.Fprintln(out, "Run 'awoc doctor' to verify the installation.")
	return nil
}

// reportInstallBackups prints any backup the operation created, success or
// not, so recovery is self-describing.
func reportInstallBackups(cmd *cobra.Command, result *install.Result) {
	if result == nil {
		return
	}
	out := cmd.OutOrStdout()
	if result.SafetyBackup != nil {
		output.PrintBackupCreated(out, result.SafetyBackup.Name, result.SafetyBackup.Path)
	}
	for _, w := range result.Warnings {
		output.PrintWarning(out, w)
	}
}
