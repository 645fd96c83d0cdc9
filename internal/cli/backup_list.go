package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/backup"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
)

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the store, newest first",
	Long: `List all backups in the backup store, newest first.

Partial backups from interrupted operations never appear; a backup is
listed only once its manifest is in place.`,
	Args: maxArgs(0),
	RunE: runBackupList,
}

func init() {
	backupCmd.AddCommand(backupListCmd)
}

func runBackupList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	store, err := resolveStore(cfg)
	if err != nil {
		return err
	}

	refs, err := store.List()
	if err != nil {
		return apperrors.Wrap(err, apperrors.Store)
	}

	out := cmd.OutOrStdout()
	if len(refs) == 0 {
		fmt.Fprintf(out, "No backups in %s\n", store.Root)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tFORM\tVERSION\tFILES")
	for _, ref := range refs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			ref.Name,
			ref.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			formLabel(ref.Form),
			ref.Manifest.SourceVersion,
			len(ref.Manifest.Files))
	}
	return w.Flush()
}

func formLabel(form backup.Form) string {
	if form == backup.FormArchive {
		return "archive"
	}
	return "directory"
}
