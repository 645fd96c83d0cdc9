package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/awoc-dev/awoc/internal/errors"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/output"
	"github.com/awoc-dev/awoc/internal/validate"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate the AWOC installation",
	Long: `Run validation checks against the installed AWOC configuration:
required files present, settings JSON well-formed, hook scripts
executable.

Exits non-zero when any check fails, so it can gate scripts.`,
	Args: maxArgs(0),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	targetRoot, err := resolveTarget(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !install.MarkerExists(targetRoot) {
		return apperrors.NewRuntimeError(
			fmt.Sprintf("no AWOC installation found at %s", targetRoot),
			"Run 'awoc install' first")
	}

	output.PrintStepHeader(out, 1, 2, "Installation metadata")
	marker, err := install.LoadMarker(targetRoot)
	if err != nil {
		return apperrors.WrapWithMessage(err, apperrors.Runtime, "reading installation marker",
			"The marker file may be corrupted; reinstall with 'awoc install --force'")
	}
	fmt.Fprintf(out, "  AWOC %s installed at %s (%s)\n",
		marker.Version, targetRoot, marker.InstalledAt.Local().Format("2006-01-02 15:04"))

	output.PrintStepHeader(out, 2, 2, "Validation checks")
	report, err := validate.Run(targetRoot)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Runtime)
	}

	for _, check := range report.Checks {
		output.PrintCheckResult(out, check.Name, check.Passed, check.Message)
	}

	if !report.Passed {
		return apperrors.NewRuntimeError("installation validation failed",
			"Reinstall with 'awoc install --force' to repair the installation")
	}
	output.PrintSuccess(out, "All checks passed")
	return nil
}
