package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/output"
)

var backupCleanCmd = &cobra.Command{
	Use:   "clean [keep-count]",
	Short: "Delete old backups beyond the retention limit",
	Long: `Delete the oldest backups, keeping only the most recent ones.

Without an argument, the configured keep_count (default 10) is used.
Backups held by an in-flight restore are never deleted. Re-running on an
already-clean store removes nothing.

Examples:
  awoc backup clean
  awoc backup clean 3`,
	Args: maxArgs(1),
	RunE: runBackupClean,
}

func init() {
	backupCmd.AddCommand(backupCleanCmd)
}

func runBackupClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	store, err := resolveStore(cfg)
	if err != nil {
		return err
	}

	keep := cfg.KeepCount
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return apperrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("keep-count must be a positive integer, got %q", args[0]),
				cmd.UseLine())
		}
		keep = n
	}

	release, err := store.AcquireLock("backup clean")
	if err != nil {
		return apperrors.Wrap(err, apperrors.Store)
	}
	defer release()

	result, err := store.EnforceRetention(keep)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Store)
	}

	out := cmd.OutOrStdout()
	for _, ref := range result.Removed {
		fmt.Fprintf(out, "  - %s\n", ref.Name)
	}
	for name, msg := range result.Errors {
		output.PrintWarning(out, fmt.Sprintf("could not delete %s: %s", name, msg))
	}
	output.PrintSuccess(out, fmt.Sprintf("Removed %d backups, kept %d",
		len(result.Removed), len(result.Kept)))
	return nil
}
