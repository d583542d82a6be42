package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how scan progress is presented.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is watching the terminal.
	ModeInteractive
)

// DetectMode determines whether cdeps may draw an interactive progress bar.
//
// Returns ModeNonInteractive if:
//   - CDEPS_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stderr is not a terminal
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	return detectMode(os.Getenv, func(fd uintptr) bool { return term.IsTerminal(int(fd)) })
}

func detectMode(getenv func(string) string, isTerminal func(fd uintptr) bool) Mode {
	// Check environment overrides first
	if getenv("CDEPS_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if getenv("CI") != "" {
		return ModeNonInteractive
	}
	if getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	// stdin carries the quit key
	if !isTerminal(os.Stdin.Fd()) {
		return ModeNonInteractive
	}

	// progress is drawn on stderr; stdout stays free for the report
	if !isTerminal(os.Stderr.Fd()) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
