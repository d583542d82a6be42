// Package extractor turns one source file into its list of direct includes.
package extractor

import (
	"context"
	"fmt"

	"github.com/vvka-141/cdeps/internal/paths"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Extractor asks a parser for a file's translation unit and keeps the
// includes written in the file itself. It is as safe for concurrent use as
// the parser it wraps.
type Extractor struct {
	parser cdeps.Parser
	logger cdeps.Logger
	opts   cdeps.ParseOptions
}

// DefaultOptions skips function bodies and tolerates incomplete input.
func DefaultOptions() cdeps.ParseOptions {
	return cdeps.ParseOptions{
		SkipFunctionBodies: true,
		TolerateIncomplete: true,
	}
}

// New creates an Extractor. Panics if parser or logger is nil.
func New(parser cdeps.Parser, logger cdeps.Logger, opts cdeps.ParseOptions) *Extractor {
	if parser == nil {
		panic("parser cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Extractor{parser: parser, logger: logger, opts: opts}
}

// ExtractIncludes returns the direct includes of the file at path in the
// order the parser reports them, duplicates kept. A file with no includes
// yields an empty, non-nil list.
func (e *Extractor) ExtractIncludes(ctx context.Context, path string) ([]string, error) {
	e.logger.Info("Parsing %s", path)

	unit, err := e.parser.Parse(ctx, path, e.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", cdeps.ErrParseFailure, path, err)
	}

	includes := []string{}
	for _, inc := range unit.Includes() {
		if inc.Depth != 1 {
			continue
		}
		includes = append(includes, paths.Normalize(inc.Path))
	}
	return includes, nil
}
