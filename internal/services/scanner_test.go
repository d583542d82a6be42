package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cdeps/internal/files/classifier"
	"github.com/vvka-141/cdeps/internal/files/filesystem"
	"github.com/vvka-141/cdeps/internal/files/walker"
	"github.com/vvka-141/cdeps/internal/logging"
	"github.com/vvka-141/cdeps/internal/parser"
	"github.com/vvka-141/cdeps/internal/parser/directive"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

func threeFiles() []cdeps.ProjectFile {
	return []cdeps.ProjectFile{
		{Path: "proj/a.cpp", Kind: cdeps.KindCppSource},
		{Path: "proj/b.h", Kind: cdeps.KindCHeader},
		{Path: "proj/c.h", Kind: cdeps.KindCHeader},
	}
}

func chainParser() *mockParser {
	return &mockParser{units: map[string][]cdeps.Inclusion{
		"proj/a.cpp": {{Path: "proj/b.h", Depth: 1}, {Path: "proj/c.h", Depth: 2}},
		"proj/b.h":   {{Path: "proj/c.h", Depth: 1}},
	}}
}

func TestScanDirectory_BuildsDependencyMap(t *testing.T) {
	factory := &mockFactory{parser: chainParser()}
	s := NewScanner(&mockEnumerator{files: threeFiles()}, factory.open, logging.NewNullLogger(), DefaultScanOptions())

	result, err := s.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)

	assert.Equal(t, cdeps.DependencyMap{
		"proj/a.cpp": {"proj/b.h"},
		"proj/b.h":   {"proj/c.h"},
		"proj/c.h":   {},
	}, result.Dependencies)
	assert.Equal(t, "proj", result.Root)
	assert.Equal(t, threeFiles(), result.Files)
	assert.Empty(t, result.Failures)

	_, err = uuid.Parse(result.ID)
	assert.NoError(t, err)

	assert.Equal(t, 1, factory.opened)
	assert.True(t, factory.parser.closed)
}

func TestScanDirectory_ProgressAccounting(t *testing.T) {
	s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: chainParser()}).open,
		logging.NewNullLogger(), DefaultScanOptions())
	observer := &recordingObserver{}

	_, err := s.ScanDirectory(context.Background(), "proj", observer)
	require.NoError(t, err)

	assert.Equal(t, []progressCall{
		{0, 3, "/a.cpp"},
		{1, 3, "/b.h"},
		{2, 3, "/c.h"},
	}, observer.calls)
}

func TestScanDirectory_NormalizesRootAndPaths(t *testing.T) {
	files := []cdeps.ProjectFile{{Path: `proj\sub\a.cpp`, Kind: cdeps.KindCppSource}}
	p := &mockParser{units: map[string][]cdeps.Inclusion{
		"proj/sub/a.cpp": {{Path: `proj\sub\b.h`, Depth: 1}},
	}}
	s := NewScanner(&mockEnumerator{files: files}, (&mockFactory{parser: p}).open, logging.NewNullLogger(), DefaultScanOptions())
	observer := &recordingObserver{}

	result, err := s.ScanDirectory(context.Background(), `proj\`, observer)
	require.NoError(t, err)

	assert.Equal(t, "proj/", result.Root)
	assert.Equal(t, cdeps.DependencyMap{"proj/sub/a.cpp": {"proj/sub/b.h"}}, result.Dependencies)
	assert.Equal(t, []progressCall{{0, 1, "sub/a.cpp"}}, observer.calls)
}

func TestScanDirectory_LogsLifecycle(t *testing.T) {
	logger := &recordingLogger{}
	s := NewScanner(&mockEnumerator{files: threeFiles()[:1]}, (&mockFactory{parser: chainParser()}).open, logger, DefaultScanOptions())

	_, err := s.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Scan started proj", "Parsing proj/a.cpp", "Scan complete!"}, logger.infos)
	assert.Empty(t, logger.errors)
}

func TestScanDirectory_EmptyInventory(t *testing.T) {
	factory := &mockFactory{parser: &mockParser{}}
	s := NewScanner(&mockEnumerator{}, factory.open, logging.NewNullLogger(), DefaultScanOptions())
	observer := &recordingObserver{}

	result, err := s.ScanDirectory(context.Background(), "empty", observer)
	require.NoError(t, err)

	assert.NotNil(t, result.Dependencies)
	assert.Empty(t, result.Dependencies)
	assert.Empty(t, observer.calls)
}

func TestScanDirectory_EnumerationFailure(t *testing.T) {
	factory := &mockFactory{parser: &mockParser{}}
	s := NewScanner(&mockEnumerator{err: errors.New("permission denied")}, factory.open, logging.NewNullLogger(), DefaultScanOptions())
	observer := &recordingObserver{}

	result, err := s.ScanDirectory(context.Background(), "proj", observer)
	assert.ErrorIs(t, err, cdeps.ErrFilesystem)
	assert.Nil(t, result.Dependencies)
	assert.Empty(t, observer.calls)
	assert.Zero(t, factory.opened)
}

func TestScanDirectory_ParseFailurePolicy(t *testing.T) {
	failing := func() *mockParser {
		p := chainParser()
		p.failOn = map[string]bool{"proj/b.h": true}
		return p
	}

	t.Run("skip records failure and continues", func(t *testing.T) {
		logger := &recordingLogger{}
		s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: failing()}).open, logger, DefaultScanOptions())
		observer := &recordingObserver{}

		result, err := s.ScanDirectory(context.Background(), "proj", observer)
		require.NoError(t, err)

		assert.Equal(t, cdeps.DependencyMap{
			"proj/a.cpp": {"proj/b.h"},
			"proj/c.h":   {},
		}, result.Dependencies)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "proj/b.h", result.Failures[0].Path)
		assert.ErrorIs(t, result.Failures[0].Err, cdeps.ErrParseFailure)
		assert.Len(t, observer.calls, 3)
		assert.Len(t, logger.errors, 1)
	})

	t.Run("abort fails the scan", func(t *testing.T) {
		opts := DefaultScanOptions()
		opts.OnParseFailure = cdeps.ParseFailureAbort
		s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: failing()}).open, logging.NewNullLogger(), opts)

		result, err := s.ScanDirectory(context.Background(), "proj", nil)
		assert.ErrorIs(t, err, cdeps.ErrParseFailure)
		assert.Contains(t, err.Error(), "proj/b.h")
		assert.Nil(t, result.Dependencies)
	})
}

func TestScanDirectory_ParserFactoryFailure(t *testing.T) {
	factory := &mockFactory{err: errors.New("grammar missing")}
	s := NewScanner(&mockEnumerator{files: threeFiles()}, factory.open, logging.NewNullLogger(), DefaultScanOptions())

	_, err := s.ScanDirectory(context.Background(), "proj", nil)
	assert.ErrorContains(t, err, "grammar missing")
}

func TestScanDirectory_Canceled(t *testing.T) {
	t.Run("before first file", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := chainParser()
		s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: p}).open, logging.NewNullLogger(), DefaultScanOptions())

		result, err := s.ScanDirectory(ctx, "proj", nil)
		assert.ErrorIs(t, err, cdeps.ErrScanCanceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result.Dependencies)
		assert.Empty(t, p.parsed)
	})

	t.Run("between files", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := chainParser()
		p.onParse = func(path string) {
			if path == "proj/a.cpp" {
				cancel()
			}
		}
		s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: p}).open, logging.NewNullLogger(), DefaultScanOptions())

		_, err := s.ScanDirectory(ctx, "proj", nil)
		assert.ErrorIs(t, err, cdeps.ErrScanCanceled)
		assert.Equal(t, []string{"proj/a.cpp"}, p.parsed)
	})
}

func TestScanDirectory_Concurrent(t *testing.T) {
	var files []cdeps.ProjectFile
	units := map[string][]cdeps.Inclusion{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		p := "proj/" + name + ".cpp"
		files = append(files, cdeps.ProjectFile{Path: p, Kind: cdeps.KindCppSource})
		units[p] = []cdeps.Inclusion{{Path: "proj/" + name + ".h", Depth: 1}}
	}

	opts := DefaultScanOptions()
	opts.Workers = 4
	factory := &mockFactory{parser: &mockParser{units: units}}
	s := NewScanner(&mockEnumerator{files: files}, factory.open, logging.NewNullLogger(), opts)
	observer := &recordingObserver{}

	result, err := s.ScanDirectory(context.Background(), "proj", observer)
	require.NoError(t, err)

	assert.Len(t, result.Dependencies, len(files))
	for _, f := range files {
		assert.Len(t, result.Dependencies[f.Path], 1)
	}
	assert.Equal(t, 4, factory.opened)

	require.Len(t, observer.calls, len(files))
	var rel []string
	for i, call := range observer.calls {
		assert.Equal(t, i, call.index)
		assert.Equal(t, len(files), call.total)
		rel = append(rel, call.relPath)
	}
	sort.Strings(rel)
	assert.Equal(t, []string{"/a.cpp", "/b.cpp", "/c.cpp", "/d.cpp", "/e.cpp", "/f.cpp", "/g.cpp", "/h.cpp"}, rel)
}

func TestScanDirectory_ConcurrentMatchesSequential(t *testing.T) {
	seq := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: chainParser()}).open,
		logging.NewNullLogger(), DefaultScanOptions())

	opts := DefaultScanOptions()
	opts.Workers = 3
	con := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: chainParser()}).open,
		logging.NewNullLogger(), opts)

	a, err := seq.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)
	b, err := con.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)

	assert.Equal(t, a.Dependencies, b.Dependencies)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestScanDirectory_ConcurrentAbort(t *testing.T) {
	p := chainParser()
	p.failOn = map[string]bool{"proj/c.h": true}

	opts := DefaultScanOptions()
	opts.Workers = 2
	opts.OnParseFailure = cdeps.ParseFailureAbort
	s := NewScanner(&mockEnumerator{files: threeFiles()}, (&mockFactory{parser: p}).open, logging.NewNullLogger(), opts)

	result, err := s.ScanDirectory(context.Background(), "proj", nil)
	assert.ErrorIs(t, err, cdeps.ErrParseFailure)
	assert.Nil(t, result.Dependencies)
}

func TestNewScanner_PanicsOnNil(t *testing.T) {
	factory := (&mockFactory{parser: &mockParser{}}).open
	logger := logging.NewNullLogger()

	assert.Panics(t, func() { NewScanner(nil, factory, logger, DefaultScanOptions()) })
	assert.Panics(t, func() { NewScanner(&mockEnumerator{}, nil, logger, DefaultScanOptions()) })
	assert.Panics(t, func() { NewScanner(&mockEnumerator{}, factory, nil, DefaultScanOptions()) })
}

func TestScanOptionsFromConfig(t *testing.T) {
	cfg := cdeps.DefaultScanConfig("proj")
	cfg.Strict = true
	cfg.Workers = 3
	cfg.OnParseFailure = cdeps.ParseFailureAbort

	opts := ScanOptionsFromConfig(cfg)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, cdeps.ParseFailureAbort, opts.OnParseFailure)
	assert.False(t, opts.Parse.TolerateIncomplete)
	assert.True(t, opts.Parse.SkipFunctionBodies)
}

// End-to-end scenarios wire the real walker, index and directive scanner.

func projectFS() *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem("/work")
	mfs.AddFile("proj/a.cpp", "#include \"b.h\"\nint main() { return 0; }\n")
	mfs.AddFile("proj/b.h", "#pragma once\n#include \"c.h\"\n")
	mfs.AddFile("proj/c.h", "// nothing here\n")
	mfs.AddFile("proj/notes.txt", "#include \"a.cpp\"\n")
	return mfs
}

func newRealScanner(fsProvider filesystem.FileSystemProvider, style cdeps.IncludeStyle, opts ScanOptions) *Scanner {
	w := walker.New(fsProvider, classifier.Default())
	factory := parser.Factory(fsProvider, directive.NewSource, parser.WithIncludeStyle(style))
	return NewScanner(w, factory, logging.NewNullLogger(), opts)
}

func TestScanDirectory_EndToEnd(t *testing.T) {
	tests := []struct {
		name  string
		style cdeps.IncludeStyle
		want  cdeps.DependencyMap
	}{
		{
			name:  "resolved",
			style: cdeps.IncludeResolved,
			want: cdeps.DependencyMap{
				"proj/a.cpp": {"proj/b.h"},
				"proj/b.h":   {"proj/c.h"},
				"proj/c.h":   {},
			},
		},
		{
			name:  "spelled",
			style: cdeps.IncludeSpelled,
			want: cdeps.DependencyMap{
				"proj/a.cpp": {"b.h"},
				"proj/b.h":   {"c.h"},
				"proj/c.h":   {},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRealScanner(projectFS(), tt.style, DefaultScanOptions())
			observer := &recordingObserver{}

			result, err := s.ScanDirectory(context.Background(), "proj", observer)
			require.NoError(t, err)

			assert.Equal(t, tt.want, result.Dependencies)
			assert.Equal(t, []progressCall{
				{0, 3, "/a.cpp"},
				{1, 3, "/b.h"},
				{2, 3, "/c.h"},
			}, observer.calls)
		})
	}
}

func TestScanDirectory_Idempotent(t *testing.T) {
	s := newRealScanner(projectFS(), cdeps.IncludeResolved, DefaultScanOptions())

	first, err := s.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)
	second, err := s.ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Dependencies, second.Dependencies)
	assert.Equal(t, first.Files, second.Files)
}

func TestScanDirectory_EndToEndDuplicates(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/work")
	mfs.AddFile("proj/a.cpp", "#include \"b.h\"\n#include \"b.h\"\n")
	mfs.AddFile("proj/b.h", "")

	result, err := newRealScanner(mfs, cdeps.IncludeResolved, DefaultScanOptions()).
		ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"proj/b.h", "proj/b.h"}, result.Dependencies["proj/a.cpp"])
}

func TestScanDirectory_EndToEndEmptyDirectory(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/work")
	mfs.AddDir("empty")
	observer := &recordingObserver{}

	result, err := newRealScanner(mfs, cdeps.IncludeResolved, DefaultScanOptions()).
		ScanDirectory(context.Background(), "empty", observer)
	require.NoError(t, err)
	assert.Empty(t, result.Dependencies)
	assert.Empty(t, observer.calls)
}

func TestScanDirectory_EndToEndNonexistentRoot(t *testing.T) {
	result, err := newRealScanner(filesystem.NewMemoryFileSystem("/work"), cdeps.IncludeResolved, DefaultScanOptions()).
		ScanDirectory(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, cdeps.ErrFilesystem)
	assert.Nil(t, result.Dependencies)
}

func TestScanDirectory_EndToEndStrictSkipsBrokenFile(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/work")
	mfs.AddFile("proj/a.cpp", "#include <vector>\n")
	mfs.AddFile("proj/b.cpp", "#include \"b.h\"\n")
	mfs.AddFile("proj/b.h", "")

	opts := DefaultScanOptions()
	opts.Parse.TolerateIncomplete = false

	result, err := newRealScanner(mfs, cdeps.IncludeResolved, opts).
		ScanDirectory(context.Background(), "proj", nil)
	require.NoError(t, err)

	assert.Equal(t, cdeps.DependencyMap{
		"proj/b.cpp": {"proj/b.h"},
		"proj/b.h":   {},
	}, result.Dependencies)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, cdeps.ErrIncompleteInput)
}

func TestScanDirectory_OSFileSystem(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write("proj/a.cpp", "#include \"b.h\"\n")
	write("proj/b.h", "#include \"c.h\"\n")
	write("proj/c.h", "")
	write("proj/notes.txt", "")

	proj := filepath.ToSlash(filepath.Join(root, "proj"))
	s := newRealScanner(filesystem.NewOSFileSystem(), cdeps.IncludeResolved, DefaultScanOptions())

	result, err := s.ScanDirectory(context.Background(), proj, nil)
	require.NoError(t, err)

	assert.Equal(t, cdeps.DependencyMap{
		proj + "/a.cpp": {proj + "/b.h"},
		proj + "/b.h":   {proj + "/c.h"},
		proj + "/c.h":   {},
	}, result.Dependencies)
}
