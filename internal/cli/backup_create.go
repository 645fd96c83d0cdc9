package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/backup"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/output"
	"github.com/awoc-dev/awoc/internal/version"
)

var backupCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a backup of the current installation",
	Long: `Create a backup of the target directory in the backup store.

Without a name, one is generated from the current timestamp. A name that
already exists in the store fails loudly; the store never overwrites a
backup in place.

Examples:
  awoc backup create
  awoc backup create pre-experiment
  awoc backup create --no-compress`,
	Args: maxArgs(1),
	RunE: runBackupCreate,
}

func init() {
	backupCreateCmd.Flags().Bool("no-compress", false, "keep the backup as a plain directory")
	backupCmd.AddCommand(backupCreateCmd)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	noCompress, _ := cmd.Flags().GetBool("no-compress")

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

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	sourceVersion := version.Version
	if m, err := install.LoadMarker(targetRoot); err == nil && m.Version != "" {
		sourceVersion = m.Version
	}

	release, err := store.AcquireLock("backup create")
	if err != nil {
		return apperrors.Wrap(err, apperrors.Store)
	}
	defer release()

	result, err := store.Create(targetRoot, backup.CreateOptions{
		Name:          name,
		Compress:      !noCompress && cfg.Compress,
		SourceVersion: sourceVersion,
	})
	if err != nil {
		return wrapStoreError(err)
	}

	out := cmd.OutOrStdout()
	output.PrintBackupCreated(out, result.Ref.Name, result.Ref.Path)
	for _, w := range result.Warnings {
		output.PrintWarning(out, w)
	}
	return nil
}

// wrapStoreError attaches remediation matching the failure class.
func wrapStoreError(err error) error {
	switch {
	case errors.Is(err, backup.ErrDuplicateBackupName):
		return apperrors.Wrap(err, apperrors.Store,
			"Pick a different name, or delete the existing backup first",
			"Run 'awoc backup list' to see existing names")
	case errors.Is(err, backup.ErrSourceUnavailable):
		return apperrors.Wrap(err, apperrors.Store,
			"Check that the target directory exists and is readable",
			"Run 'awoc install' if AWOC is not installed yet")
	case errors.Is(err, backup.ErrStoreUnwritable):
		return apperrors.Wrap(err, apperrors.Store,
			"Check permissions on the backup store directory")
	default:
		return apperrors.Wrap(err, apperrors.Store)
	}
}
