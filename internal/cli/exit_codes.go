package cli

// Exit codes for the awoc CLI.
// These codes support programmatic composition and shell scripting.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitOperationFailed indicates the operation failed with a reported error
	ExitOperationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 2
)
