package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/backup"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/output"
	"github.com/awoc-dev/awoc/internal/progress"
	"github.com/awoc-dev/awoc/internal/restore"
	"github.com/awoc-dev/awoc/internal/version"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-ref>",
	Short: "Restore the installation from a backup",
	Long: `Restore the target directory from a backup.

The reference resolves by exact name first, then unique name prefix, then
unique date substring (e.g. '20260825'). An ambiguous reference is an error,
never a guess.

A safety backup of the current target state is always taken before any file
is overwritten. If post-restore validation reports issues, the restore is
NOT rolled back; run restore again pointing at the reported safety backup.

Examples:
  awoc restore 20260825-143012
  awoc restore pre-install
  awoc restore 20260825 --yes`,
	Args: exactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	skipConfirm, _ := cmd.Flags().GetBool("yes")

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

	if !skipConfirm && !cfg.SkipConfirmations {
		if !confirm(cmd, fmt.Sprintf("Overwrite %s with backup %q?", targetRoot, args[0])) {
			fmt.Fprintln(out, "Restore cancelled.")
			return nil
		}
	}

	engine := restore.NewEngine(store, targetRoot,
		restore.WithCompression(cfg.Compress),
		restore.WithSourceVersion(version.Version),
	)

	display := progress.NewDisplay(progress.DetectTerminalCapabilities(), out)
	display.Start(fmt.Sprintf("Restoring %q into %s", args[0], targetRoot))

	report, err := engine.Restore(args[0])
	if err != nil {
		display.Fail("Restore failed")
	} else {
		display.Complete(fmt.Sprintf("Restored %s", report.Backup.Name))
	}

	reportRestoreOutcome(cmd, report)

	if err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) || errors.Is(err, backup.ErrAmbiguousBackupReference) {
			return wrapResolveError(err)
		}
		return apperrors.Wrap(err, apperrors.Runtime,
			"The target was not rolled back",
			"Recover with 'awoc restore <safety-backup>' if needed")
	}
	return nil
}

// reportRestoreOutcome prints the safety backup identifier and any
// validation findings. Printed on success and failure alike.
func reportRestoreOutcome(cmd *cobra.Command, report *restore.Report) {
	if report == nil {
		return
	}
	out := cmd.OutOrStdout()

	if report.SafetyBackup != nil {
		output.PrintBackupCreated(out, report.SafetyBackup.Name, report.SafetyBackup.Path)
	}
	for _, w := range report.Warnings {
		output.PrintWarning(out, w)
	}
	if report.Phase == restore.PhaseWarning && report.SafetyBackup != nil {
		fmt.Fprintf(out, "Validation reported issues. To revert: awoc restore %s\n",
			report.SafetyBackup.Name)
	}
}
