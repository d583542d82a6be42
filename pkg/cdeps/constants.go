package cdeps

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Scan completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitFilesystemError = 20 // Root directory missing or unreadable
	ExitParseFailure    = 21 // A file could not be parsed and the abort policy was active
	ExitScanCanceled    = 22 // Scan was canceled or timed out
)

const (
	// ConfigFileName is the optional per-project configuration file looked up in the scan root.
	ConfigFileName = "cdeps.yaml"

	// DefaultWorkers is the number of files extracted at a time.
	// One worker keeps the scan sequential and the progress indices in inventory order.
	DefaultWorkers = 1
)
