package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit, no issues found
	ExitLintError     = 1 // Catalog lint failed or fail-on threshold hit
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitIOError       = 3 // File read/write failure
	ExitInternalError = 4 // Unexpected internal error
)
