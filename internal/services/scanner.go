package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/cdeps/internal/extractor"
	"github.com/vvka-141/cdeps/internal/paths"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// ScanOptions tunes a Scanner.
type ScanOptions struct {
	// Parse is handed to the extractor for every file.
	Parse cdeps.ParseOptions

	// OnParseFailure decides between skipping a failed file and aborting.
	OnParseFailure cdeps.ParseFailurePolicy

	// Workers is the number of files extracted at a time. Values below 2
	// keep the scan sequential.
	Workers int
}

// DefaultScanOptions returns sequential scanning with tolerant parsing
// and the skip policy.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Parse:          extractor.DefaultOptions(),
		OnParseFailure: cdeps.ParseFailureSkip,
		Workers:        cdeps.DefaultWorkers,
	}
}

// ScanOptionsFromConfig derives scanner options from a validated configuration.
func ScanOptionsFromConfig(cfg cdeps.ScanConfig) ScanOptions {
	return ScanOptions{
		Parse:          cfg.ParseOptions(),
		OnParseFailure: cfg.OnParseFailure,
		Workers:        cfg.Workers,
	}
}

// Scanner builds the dependency map of a directory tree.
// Thread-Safety: safe for concurrent ScanDirectory calls; every call opens
// its own parser handles.
type Scanner struct {
	enumerator cdeps.FileEnumerator
	newParser  cdeps.ParserFactory
	logger     cdeps.Logger
	opts       ScanOptions
}

// NewScanner creates a Scanner with all dependencies injected.
// Panics on nil dependencies; those are wiring mistakes, not runtime conditions.
func NewScanner(enumerator cdeps.FileEnumerator, newParser cdeps.ParserFactory, logger cdeps.Logger, opts ScanOptions) *Scanner {
	if enumerator == nil {
		panic("enumerator cannot be nil")
	}
	if newParser == nil {
		panic("newParser cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.OnParseFailure == "" {
		opts.OnParseFailure = cdeps.ParseFailureSkip
	}
	return &Scanner{
		enumerator: enumerator,
		newParser:  newParser,
		logger:     logger,
		opts:       opts,
	}
}

// ScanDirectory enumerates the project files under root and extracts the
// direct includes of each one.
//
// The inventory is fixed before extraction starts. observer, when not nil,
// is told about every processed file with its path relative to root.
// An enumeration error yields cdeps.ErrFilesystem and no map; cancellation
// of ctx yields cdeps.ErrScanCanceled and no map.
func (s *Scanner) ScanDirectory(ctx context.Context, root string, observer cdeps.ProgressObserver) (cdeps.ScanResult, error) {
	if observer == nil {
		observer = cdeps.NopProgress
	}

	root = paths.Normalize(root)
	id := uuid.NewString()
	s.logger.Info("Scan started %s", root)
	s.logger.Verbose("Scan ID: %s", id)

	files, err := s.enumerator.Enumerate(root)
	if err != nil {
		if !errors.Is(err, cdeps.ErrFilesystem) {
			err = fmt.Errorf("%w: %w", cdeps.ErrFilesystem, err)
		}
		s.logger.Error("Scan of %s failed: %v", root, err)
		return cdeps.ScanResult{}, err
	}
	s.logger.Verbose("Found %d project files", len(files))

	run := &scanRun{
		scanner:  s,
		root:     root,
		files:    files,
		observer: observer,
		deps:     make(cdeps.DependencyMap, len(files)),
	}

	if s.opts.Workers > 1 && len(files) > 1 {
		err = run.extractConcurrently(ctx, s.opts.Workers)
	} else {
		err = run.extractSequentially(ctx)
	}
	if err != nil {
		s.logger.Error("Scan of %s failed: %v", root, err)
		return cdeps.ScanResult{}, err
	}

	s.logger.Info("Scan complete!")
	return cdeps.ScanResult{
		ID:           id,
		Root:         root,
		Files:        files,
		Dependencies: run.deps,
		Failures:     run.sortedFailures(),
	}, nil
}

// scanRun is the mutable state of one ScanDirectory call.
type scanRun struct {
	scanner  *Scanner
	root     string
	files    []cdeps.ProjectFile
	observer cdeps.ProgressObserver

	mu       sync.Mutex
	done     int
	deps     cdeps.DependencyMap
	failures []indexedFailure
}

type indexedFailure struct {
	index   int
	failure cdeps.FileFailure
}

func (r *scanRun) extractSequentially(ctx context.Context) error {
	ex, closeParser, err := r.openExtractor()
	if err != nil {
		return err
	}
	defer closeParser()

	total := len(r.files)
	for i, f := range r.files {
		if err := ctx.Err(); err != nil {
			return canceled(err)
		}

		p := paths.Normalize(f.Path)
		r.observer.OnProgress(i, total, paths.StripRoot(p, r.root))

		includes, err := ex.ExtractIncludes(ctx, p)
		if err := r.record(ctx, i, p, includes, err); err != nil {
			return err
		}
	}
	return nil
}

// extractConcurrently runs workers goroutines, each with its own parser
// handle. Progress is reported in completion order.
func (r *scanRun) extractConcurrently(ctx context.Context, workers int) error {
	if workers > len(r.files) {
		workers = len(r.files)
	}

	g, gctx := errgroup.WithContext(ctx)
	next := make(chan int)

	g.Go(func() error {
		defer close(next)
		for i := range r.files {
			select {
			case next <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			ex, closeParser, err := r.openExtractor()
			if err != nil {
				return err
			}
			defer closeParser()

			for i := range next {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := paths.Normalize(r.files[i].Path)
				includes, err := ex.ExtractIncludes(gctx, p)
				r.notify(p)
				if err := r.record(gctx, i, p, includes, err); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return canceled(ctxErr)
	}
	return err
}

// notify reports one completed file; calls are serialized and indices increase.
func (r *scanRun) notify(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer.OnProgress(r.done, len(r.files), paths.StripRoot(p, r.root))
	r.done++
}

// record stores the outcome of one extraction and applies the failure policy.
func (r *scanRun) record(ctx context.Context, index int, p string, includes []string, err error) error {
	if err == nil {
		r.mu.Lock()
		r.deps[p] = includes
		r.mu.Unlock()
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return canceled(ctxErr)
	}
	if r.scanner.opts.OnParseFailure == cdeps.ParseFailureAbort {
		return err
	}

	r.scanner.logger.Error("Skipping %s: %v", p, err)
	r.mu.Lock()
	r.failures = append(r.failures, indexedFailure{index: index, failure: cdeps.FileFailure{Path: p, Err: err}})
	r.mu.Unlock()
	return nil
}

func (r *scanRun) sortedFailures() []cdeps.FileFailure {
	sort.Slice(r.failures, func(i, j int) bool { return r.failures[i].index < r.failures[j].index })

	var out []cdeps.FileFailure
	for _, f := range r.failures {
		out = append(out, f.failure)
	}
	return out
}

// openExtractor opens a parser handle and wraps it in an extractor.
// The returned func closes the handle.
func (r *scanRun) openExtractor() (*extractor.Extractor, func(), error) {
	parser, err := r.scanner.newParser()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parser: %w", err)
	}
	closeParser := func() {
		if err := parser.Close(); err != nil {
			r.scanner.logger.Verbose("Failed to close parser: %v", err)
		}
	}
	return extractor.New(parser, r.scanner.logger, r.scanner.opts.Parse), closeParser, nil
}

func canceled(err error) error {
	return fmt.Errorf("%w: %w", cdeps.ErrScanCanceled, err)
}
