// Package output provides terminal output formatting utilities for the awoc CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintStepHeader prints a colored step header (e.g., "[2/2] Validation checks...").
// Uses cyan for the step indicator and white for the step name.
func PrintStepHeader(out io.Writer, stepNum, totalSteps int, stepName string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(fmt.Sprintf("[%d/%d]", stepNum, totalSteps)), white(stepName+"..."))
}

// PrintSuccess prints a colored success message.
// Uses green checkmark and cyan for the subject.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintWarning prints a colored warning message.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
}

// PrintBackupCreated prints the identifier of a backup an operation created.
// Every operation reports the backups it created so recovery is always
// self-describing, even after a failure.
func PrintBackupCreated(out io.Writer, name, path string) {
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s backup created: %s %s\n", green("→"), name, dim("("+path+")"))
}

// PrintCheckResult prints a pass/fail line for a validation check.
func PrintCheckResult(out io.Writer, name string, passed bool, message string) {
	if passed {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(out, "  %s %s: %s\n", green("✓"), name, message)
		return
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(out, "  %s %s: %s\n", red("✗"), name, message)
}
