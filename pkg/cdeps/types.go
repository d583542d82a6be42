package cdeps

import (
	"context"
	"fmt"
)

// Kind identifies which recognized source/header flavor a project file is.
type Kind int

const (
	// KindUnknown marks a filesystem entry that is not a project file.
	KindUnknown Kind = iota
	KindCSource
	KindCHeader
	KindCppSource
	KindCppHeader
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindCSource:   "c_source",
	KindCHeader:   "c_header",
	KindCppSource: "cpp_source",
	KindCppHeader: "cpp_header",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsProjectFile reports whether k is one of the recognized kinds.
func (k Kind) IsProjectFile() bool {
	return k >= KindCSource && k <= KindCppHeader
}

// ParseKind converts a kind name such as "cpp_header" back into a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k.IsProjectFile() {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown file kind %q: %w", name, ErrInvalidConfig)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ProjectFile is one entry of a scan inventory.
type ProjectFile struct {
	// Path is the '/'-separated path of the file, rooted like the scan root.
	Path string `json:"path" yaml:"path"`

	// Kind is the recognized flavor of the file.
	Kind Kind `json:"kind" yaml:"kind"`
}

// DependencyMap maps a project file path to its direct include paths,
// in the order the parser reported them. Duplicates are kept.
type DependencyMap map[string][]string

// FileFailure records a file whose parse failed and that was skipped.
type FileFailure struct {
	Path string
	Err  error
}

// ScanResult is the outcome of one ScanDirectory call.
type ScanResult struct {
	// ID identifies the scan run in logs and reports.
	ID string

	// Root is the normalized root directory that was scanned.
	Root string

	// Files is the inventory the scan iterated, in enumeration order.
	Files []ProjectFile

	// Dependencies holds one entry per successfully extracted file.
	Dependencies DependencyMap

	// Failures lists files skipped under ParseFailureSkip.
	Failures []FileFailure
}

// FileEnumerator produces the file inventory of a directory tree.
type FileEnumerator interface {
	// Enumerate recursively lists the project files under root.
	Enumerate(root string) ([]ProjectFile, error)
}

// ProgressObserver receives one notification per processed file.
// It is called synchronously from the scan and must not block for long.
type ProgressObserver interface {
	OnProgress(index, total int, relPath string)
}

// ProgressFunc adapts an ordinary function to ProgressObserver.
type ProgressFunc func(index, total int, relPath string)

// OnProgress calls f(index, total, relPath).
func (f ProgressFunc) OnProgress(index, total int, relPath string) {
	f(index, total, relPath)
}

// NopProgress is the observer used when the caller supplies none.
var NopProgress ProgressObserver = ProgressFunc(func(int, int, string) {})

// ParseOptions selects how the parsing collaborator treats a file.
type ParseOptions struct {
	// SkipFunctionBodies asks the parser not to analyze function bodies.
	SkipFunctionBodies bool

	// TolerateIncomplete lets unresolved includes and malformed input degrade
	// to best-effort results instead of failing the parse.
	TolerateIncomplete bool
}

// Inclusion is one include directive processed while parsing a translation unit.
type Inclusion struct {
	// Path is the included file as reported by the parser.
	Path string

	// Depth is 1 for directives in the parsed file itself and grows by one
	// for every level of nesting through included headers.
	Depth int
}

// TranslationUnit is the parsed representation of one file.
type TranslationUnit interface {
	// Path returns the path the unit was parsed from.
	Path() string

	// Includes returns every processed inclusion in encounter order.
	Includes() []Inclusion
}

// Parser builds translation units.
// A Parser is owned by a single scan call and is not safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, path string, opts ParseOptions) (TranslationUnit, error)
	Close() error
}

// ParserFactory opens a fresh Parser handle.
type ParserFactory func() (Parser, error)
