package parser

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vvka-141/cdeps/internal/files/filesystem"
	"github.com/vvka-141/cdeps/internal/logging"
	"github.com/vvka-141/cdeps/internal/paths"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Index implements cdeps.Parser on top of a DirectiveSource.
// An Index is owned by one scan worker and is not safe for concurrent use.
type Index struct {
	fsProvider filesystem.FileSystemProvider
	source     DirectiveSource
	style      cdeps.IncludeStyle
	logger     cdeps.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithIncludeStyle selects resolved or spelled include paths.
func WithIncludeStyle(style cdeps.IncludeStyle) Option {
	return func(ix *Index) { ix.style = style }
}

// WithLogger routes verbose resolution diagnostics to logger.
func WithLogger(logger cdeps.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex creates an Index reading files from fsProvider.
// Panics if fsProvider or source is nil.
func NewIndex(fsProvider filesystem.FileSystemProvider, source DirectiveSource, opts ...Option) *Index {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if source == nil {
		panic("source cannot be nil")
	}
	ix := &Index{
		fsProvider: fsProvider,
		source:     source,
		style:      cdeps.IncludeResolved,
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Factory returns a cdeps.ParserFactory opening one Index, with its own
// backend from newSource, per call.
func Factory(fsProvider filesystem.FileSystemProvider, newSource func() (DirectiveSource, error), opts ...Option) cdeps.ParserFactory {
	return func() (cdeps.Parser, error) {
		source, err := newSource()
		if err != nil {
			return nil, fmt.Errorf("failed to create parser backend: %w", err)
		}
		return NewIndex(fsProvider, source, opts...), nil
	}
}

// Parse builds the translation unit of the file at filePath.
//
// The file itself must be readable and its directives must be listable,
// otherwise no unit is produced. Problems inside included headers are
// absorbed when opts.TolerateIncomplete is set and fail the parse otherwise.
func (ix *Index) Parse(ctx context.Context, filePath string, opts cdeps.ParseOptions) (cdeps.TranslationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := ix.fsProvider.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	directives, err := ix.source.Directives(ctx, filePath, content, opts)
	if err != nil {
		return nil, err
	}

	unit := &translationUnit{path: filePath}
	visited := map[string]bool{paths.Normalize(filePath): true}
	if err := ix.expand(ctx, unit, filePath, directives, 1, visited, opts); err != nil {
		return nil, err
	}
	return unit, nil
}

// expand records directives at depth and descends depth-first into every
// header it resolves, so unit.includes is in preprocessor encounter order.
func (ix *Index) expand(ctx context.Context, unit *translationUnit, includer string, directives []Directive, depth int, visited map[string]bool, opts cdeps.ParseOptions) error {
	for _, d := range directives {
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved, ok := ix.resolve(includer, d)
		if !ok {
			if !opts.TolerateIncomplete {
				return fmt.Errorf("%s:%d: cannot resolve include %s: %w", includer, d.Line, d, cdeps.ErrIncompleteInput)
			}
			ix.logger.Verbose("%s:%d: include %s not resolved", includer, d.Line, d)
			unit.add(d.Name, depth)
			continue
		}

		if ix.style == cdeps.IncludeSpelled {
			unit.add(d.Name, depth)
		} else {
			unit.add(resolved, depth)
		}

		// a header already expanded in this unit is guarded by the visited set
		if visited[resolved] {
			continue
		}
		visited[resolved] = true

		nested, err := ix.directivesOf(ctx, resolved, opts)
		if err != nil {
			if !opts.TolerateIncomplete {
				return fmt.Errorf("%s:%d: %w", includer, d.Line, err)
			}
			ix.logger.Verbose("skipping contents of %s: %v", resolved, err)
			continue
		}
		if err := ix.expand(ctx, unit, resolved, nested, depth+1, visited, opts); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) directivesOf(ctx context.Context, filePath string, opts cdeps.ParseOptions) ([]Directive, error) {
	content, err := ix.fsProvider.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, cdeps.ErrIncompleteInput)
	}
	return ix.source.Directives(ctx, filePath, content, opts)
}

// resolve finds the file a quoted include refers to, relative to the
// including file's directory. Other forms need compiler search paths.
func (ix *Index) resolve(includer string, d Directive) (string, bool) {
	if d.Form != FormQuoted || d.Name == "" {
		return "", false
	}

	candidate := joinInclude(paths.Normalize(includer), paths.Normalize(d.Name))
	info, err := ix.fsProvider.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", false
	}
	return candidate, true
}

// joinInclude joins name to the directory of includer and cleans the result,
// keeping a leading "./" so resolved paths stay comparable with walker paths.
func joinInclude(includer, name string) string {
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	joined := path.Join(path.Dir(includer), name)
	if strings.HasPrefix(includer, "./") && !strings.HasPrefix(joined, "../") && joined != "." {
		joined = "./" + joined
	}
	return joined
}

// Close releases the backend if it holds resources.
func (ix *Index) Close() error {
	if closer, ok := ix.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Verify Index implements the interface at compile time
var _ cdeps.Parser = (*Index)(nil)
