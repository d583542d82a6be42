package cdeps

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := scanner.ScanDirectory(ctx, root, nil)
//	if errors.Is(err, cdeps.ErrFilesystem) {
//	    // Root directory is missing or unreadable
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFilesystem indicates the root directory or an entry below it could not be read.
	ErrFilesystem = errors.New("filesystem error")

	// ErrParseFailure indicates the parser could not produce a translation unit for a file.
	ErrParseFailure = errors.New("parse failure")

	// ErrIncompleteInput indicates a file has unresolved includes or malformed
	// directives and the parse was not allowed to tolerate them.
	ErrIncompleteInput = errors.New("incomplete input")

	// ErrScanCanceled indicates the scan context was canceled between two files.
	ErrScanCanceled = errors.New("scan canceled")

	// ErrUsage indicates the command line was misused.
	ErrUsage = errors.New("usage error")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrFilesystem):
		return ExitFilesystemError
	case errors.Is(err, ErrParseFailure):
		return ExitParseFailure
	case errors.Is(err, ErrScanCanceled):
		return ExitScanCanceled
	}

	// cobra reports flag and argument problems as plain errors
	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
	"missing required argument",
}
