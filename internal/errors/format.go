package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Rendering styles. fatih/color degrades these to plain text automatically
// when the output is not a color terminal.
var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	categoryTag = color.New(color.FgYellow).SprintFunc()
	causeText   = color.New(color.Faint).SprintFunc()
	usageLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	usageText   = color.New(color.FgCyan).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
)

// FormatError renders a CLIError for the terminal: the categorized message,
// the root cause when it adds information (the store sentinel under a failed
// backup operation, for instance), the correct usage for argument errors,
// then the remediation steps.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n",
		errorLabel("Error"), categoryTag(err.Category.String()), errorMsg(err.Message))

	if cause := rootCause(err); cause != "" {
		fmt.Fprintf(&sb, "  %s %s\n", causeText("caused by:"), causeText(cause))
	}

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", usageLabel("Usage:"), usageText(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", fixLabel("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", bullet("•"), step)
		}
	}

	return sb.String()
}

// rootCause returns the innermost wrapped error's message when the headline
// message does not already carry it. Wrap copies the full chain into Message,
// so this only fires for errors wrapped with an independent summary.
func rootCause(err *CLIError) string {
	if err.Err == nil {
		return ""
	}

	cause := err.Err
	for {
		next := stderrors.Unwrap(cause)
		if next == nil {
			break
		}
		cause = next
	}

	msg := cause.Error()
	if msg == "" || strings.Contains(err.Message, msg) {
		return ""
	}
	return msg
}

// FprintError writes a formatted CLIError to the given writer.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// PrintError writes a formatted CLIError to stderr.
func PrintError(err *CLIError) {
	FprintError(os.Stderr, err)
}

// PrintSimpleError renders a plain error under a category banner. Used for
// errors that escaped the command layer without CLIError structure.
func PrintSimpleError(err error, category ErrorCategory) {
	if err == nil {
		return
	}
	FprintError(os.Stderr, &CLIError{
		Category: category,
		Message:  err.Error(),
	})
}
