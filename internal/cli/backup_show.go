package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/backup"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
)

var backupShowCmd = &cobra.Command{
	Use:   "show <backup-ref>",
	Short: "Show the manifest of a backup",
	Long: `Show the full manifest of a single backup.

The reference resolves the same way as for restore: exact name, unique
prefix, then unique date substring. Archive-form backups are described
from their sidecar manifest without decompressing anything.`,
	Args: exactArgs(1),
	RunE: runBackupShow,
}

func init() {
	backupCmd.AddCommand(backupShowCmd)
}

func runBackupShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	store, err := resolveStore(cfg)
	if err != nil {
		return err
	}

	ref, err := store.Resolve(args[0])
	if err != nil {
		return wrapResolveError(err)
	}

	out := cmd.OutOrStdout()
	m := ref.Manifest
	fmt.Fprintf(out, "Name:       %s\n", ref.Name)
	fmt.Fprintf(out, "Created:    %s\n", ref.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Form:       %s\n", formLabel(ref.Form))
	fmt.Fprintf(out, "Path:       %s\n", ref.Path)
	fmt.Fprintf(out, "Version:    %s\n", m.SourceVersion)
	fmt.Fprintf(out, "System:     %s\n", m.System)
	fmt.Fprintf(out, "User:       %s\n", m.User)
	if m.Commit != "" {
		fmt.Fprintf(out, "Commit:     %s\n", m.Commit)
	}
	fmt.Fprintf(out, "Files (%d):\n", len(m.Files))
	for _, f := range m.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

// wrapResolveError attaches remediation for the two resolution failure modes.
func wrapResolveError(err error) error {
	switch {
	case errors.Is(err, backup.ErrAmbiguousBackupReference):
		return apperrors.Wrap(err, apperrors.Store,
			"Use a longer prefix or the full backup name",
			"Run 'awoc backup list' to see all names")
	case errors.Is(err, backup.ErrBackupNotFound):
		return apperrors.Wrap(err, apperrors.Store,
			"Run 'awoc backup list' to see available backups")
	default:
		return apperrors.Wrap(err, apperrors.Store)
	}
}
