package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Display renders a spinner for a long-running step. When the terminal is not
// a TTY the spinner is disabled and steps are reported as plain lines, so
// output stays readable in logs and CI.
type Display struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spin    *spinner.Spinner
}

// NewDisplay creates a Display for the given terminal capabilities.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     out,
	}
}

// Start begins displaying a step. On a TTY this starts a spinner; otherwise
// the message is printed once.
func (d *Display) Start(message string) {
	if !d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}

	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond,
		spinner.WithWriter(d.out))
	d.spin.Suffix = " " + message
	d.spin.Start()
}

// Complete stops the spinner and prints a success line for the step.
func (d *Display) Complete(message string) {
	d.stopSpinner()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Checkmark, message)
}

// Fail stops the spinner and prints a failure line for the step.
func (d *Display) Fail(message string) {
	d.stopSpinner()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Failure, message)
}

// Stop halts the spinner without printing a status line.
// Useful before handing the terminal to interactive prompts.
func (d *Display) Stop() {
	d.stopSpinner()
}

func (d *Display) stopSpinner() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
