package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awoc-dev/awoc/internal/config"
	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/output"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the AWOC configuration",
	Long: `Remove the AWOC installation from the target directory.

Only files positively identified as AWOC-owned (the set recorded in the
installation marker) are deleted; nothing else in the target is touched.
The backup store survives by default so a later reinstall can restore
history; pass --purge-backups to delete it too.

Examples:
  awoc uninstall
  awoc uninstall --restore-original
  awoc uninstall --purge-backups`,
	Args: maxArgs(0),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().Bool("keep-backups", true, "preserve the backup store")
	uninstallCmd.Flags().Bool("purge-backups", false, "delete the entire backup store")
	uninstallCmd.Flags().Bool("restore-original", false, "restore pre-AWOC content from the recorded backup before removal")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	purge, _ := cmd.Flags().GetBool("purge-backups")
	restoreOriginal, _ := cmd.Flags().GetBool("restore-original")

	if purge && cmd.Flags().Changed("keep-backups") {
		return apperrors.NewArgumentErrorWithUsage(
			"--keep-backups and --purge-backups are mutually exclusive",
			cmd.UseLine())
	}

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

	if !install.MarkerExists(targetRoot) {
		remediation := []string{"Run 'awoc install' first"}
		for _, found := range discoverOtherInstallations(targetRoot) {
			remediation = append(remediation,
				fmt.Sprintf("An installation exists at %s; pass --target %s", found, found))
		}
		return apperrors.NewRuntimeError(
			fmt.Sprintf("no AWOC installation found at %s", targetRoot), remediation...)
	}

	out := cmd.OutOrStdout()

	if !cfg.SkipConfirmations {
		prompt := fmt.Sprintf("Remove the AWOC installation at %s?", targetRoot)
		if purge {
			prompt = fmt.Sprintf("Remove the AWOC installation at %s and delete ALL backups?", targetRoot)
		}
		if !confirm(cmd, prompt) {
			fmt.Fprintln(out, "Uninstall cancelled.")
			return nil
		}
	}

	uninstaller := &install.Uninstaller{
		Store:           store,
		TargetRoot:      targetRoot,
		PreserveBackups: !purge,
		RestoreOriginal: restoreOriginal,
	}

	result, err := uninstaller.Run()
	if err != nil {
		return apperrors.Wrap(err, apperrors.Runtime)
	}

	for _, rel := range result.Removed {
		fmt.Fprintf(out, "  - %s\n", rel)
	}
	for _, w := range result.Warnings {
		output.PrintWarning(out, w)
	}
	if result.RestoredOriginal {
		output.PrintSuccess(out, "Restored original content from the recorded backup")
	}
	if result.StorePurged {
		output.PrintSuccess(out, "Backup store deleted")
	} else {
		fmt.Fprintf(out, "Backup store preserved at %s\n", store.Root)
	}
	output.PrintSuccess(out, fmt.Sprintf("Removed %d files from %s", len(result.Removed), targetRoot))
	return nil
}

// discoverOtherInstallations checks the well-known roots for a marker when
// the requested target has none, so the error can point somewhere useful.
func discoverOtherInstallations(targetRoot string) []string {
	var candidates []string
	if home, err := config.DefaultTargetDir(); err == nil && home != targetRoot {
		candidates = append(candidates, home)
	}
	if project := ".claude"; project != targetRoot {
		candidates = append(candidates, project)
	}
	return install.DiscoverInstallations(candidates)
}
