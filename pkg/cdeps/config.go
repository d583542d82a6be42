package cdeps

import (
	"errors"
	"fmt"
	"strings"
)

// ParserBackend names an implementation of the parsing collaborator.
type ParserBackend string

const (
	// ParserDirective is the pure Go preprocessor directive scanner.
	ParserDirective ParserBackend = "directive"

	// ParserTreeSitter parses files with the tree-sitter C++ grammar.
	ParserTreeSitter ParserBackend = "treesitter"
)

// IncludeStyle selects how include paths are reported.
type IncludeStyle string

const (
	// IncludeResolved reports includes as the parser resolved them, comparable with map keys.
	IncludeResolved IncludeStyle = "resolved"

	// IncludeSpelled reports includes exactly as written in the directive.
	IncludeSpelled IncludeStyle = "spelled"
)

// ParseFailurePolicy decides what a scan does when a file yields no translation unit.
type ParseFailurePolicy string

const (
	// ParseFailureSkip logs the failure, records it and continues without the file.
	ParseFailureSkip ParseFailurePolicy = "skip"

	// ParseFailureAbort fails the whole scan.
	ParseFailureAbort ParseFailurePolicy = "abort"
)

// ExtensionRule maps a filename suffix to a file kind.
type ExtensionRule struct {
	Suffix string `yaml:"suffix"`
	Kind   Kind   `yaml:"kind"`
}

// DefaultExtensions is the ordered suffix table used when none is configured.
func DefaultExtensions() []ExtensionRule {
	return []ExtensionRule{
		{Suffix: ".cpp", Kind: KindCppSource},
		{Suffix: ".c", Kind: KindCSource},
		{Suffix: ".hpp", Kind: KindCppHeader},
		{Suffix: ".h", Kind: KindCHeader},
	}
}

// ScanConfig contains every setting of a scan after flags, environment and
// cdeps.yaml have been merged.
type ScanConfig struct {
	// Root is the directory to scan.
	Root string

	// Parser selects the parsing backend.
	Parser ParserBackend

	// Strict disables tolerance of incomplete input.
	Strict bool

	// IncludeStyle selects resolved or spelled include paths.
	IncludeStyle IncludeStyle

	// OnParseFailure selects skip-and-continue or abort.
	OnParseFailure ParseFailurePolicy

	// Workers is the number of files extracted concurrently.
	Workers int

	// Extensions is the ordered classification table.
	Extensions []ExtensionRule

	// Exclude holds gitignore-style patterns pruned from the walk.
	Exclude []string

	// Verbose enables detailed logging
	Verbose bool
}

// DefaultScanConfig returns the configuration matching the plain scan behavior.
func DefaultScanConfig(root string) ScanConfig {
	return ScanConfig{
		Root:           root,
		Parser:         ParserDirective,
		IncludeStyle:   IncludeResolved,
		OnParseFailure: ParseFailureSkip,
		Workers:        DefaultWorkers,
		Extensions:     DefaultExtensions(),
	}
}

// ParseOptions derives the parser options from the configuration.
func (c *ScanConfig) ParseOptions() ParseOptions {
	return ParseOptions{
		SkipFunctionBodies: true,
		TolerateIncomplete: !c.Strict,
	}
}

// Validate checks if the ScanConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ScanConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, fmt.Errorf("Root is required: %w", ErrInvalidConfig))
	}

	switch c.Parser {
	case ParserDirective, ParserTreeSitter:
	default:
		errs = append(errs, fmt.Errorf("unknown parser %q (want %s or %s): %w", c.Parser, ParserDirective, ParserTreeSitter, ErrInvalidConfig))
	}

	switch c.IncludeStyle {
	case IncludeResolved, IncludeSpelled:
	default:
		errs = append(errs, fmt.Errorf("unknown include style %q (want %s or %s): %w", c.IncludeStyle, IncludeResolved, IncludeSpelled, ErrInvalidConfig))
	}

	switch c.OnParseFailure {
	case ParseFailureSkip, ParseFailureAbort:
	default:
		errs = append(errs, fmt.Errorf("unknown parse failure policy %q (want %s or %s): %w", c.OnParseFailure, ParseFailureSkip, ParseFailureAbort, ErrInvalidConfig))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d: %w", c.Workers, ErrInvalidConfig))
	}

	if len(c.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("at least one extension rule is required: %w", ErrInvalidConfig))
	}
	for i, rule := range c.Extensions {
		if rule.Suffix == "" {
			errs = append(errs, fmt.Errorf("extension rule %d has an empty suffix: %w", i, ErrInvalidConfig))
		}
		if !rule.Kind.IsProjectFile() {
			errs = append(errs, fmt.Errorf("extension rule %q has no valid kind: %w", rule.Suffix, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}
