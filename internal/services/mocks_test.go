package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

type mockEnumerator struct {
	files []cdeps.ProjectFile
	err   error
	calls int
}

func (m *mockEnumerator) Enumerate(_ string) ([]cdeps.ProjectFile, error) {
	m.calls++
	return m.files, m.err
}

type mockUnit struct {
	path     string
	includes []cdeps.Inclusion
}

func (u *mockUnit) Path() string                { return u.path }
func (u *mockUnit) Includes() []cdeps.Inclusion { return u.includes }

// mockParser answers from a fixed table; paths missing from units fail.
type mockParser struct {
	units  map[string][]cdeps.Inclusion
	failOn map[string]bool
	// onParse runs before every parse when set
	onParse func(path string)

	mu     sync.Mutex
	parsed []string
	closed bool
}

func (m *mockParser) Parse(_ context.Context, path string, _ cdeps.ParseOptions) (cdeps.TranslationUnit, error) {
	if m.onParse != nil {
		m.onParse(path)
	}
	m.mu.Lock()
	m.parsed = append(m.parsed, path)
	m.mu.Unlock()

	if m.failOn[path] {
		return nil, fmt.Errorf("cannot parse %s", path)
	}
	return &mockUnit{path: path, includes: m.units[path]}, nil
}

func (m *mockParser) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockFactory hands out the same parser and counts opened handles.
type mockFactory struct {
	parser *mockParser
	err    error

	mu     sync.Mutex
	opened int
}

func (f *mockFactory) open() (cdeps.Parser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.opened++
	return f.parser, nil
}

type progressCall struct {
	index   int
	total   int
	relPath string
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []progressCall
}

func (o *recordingObserver) OnProgress(index, total int, relPath string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, progressCall{index, total, relPath})
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Verbose(string, ...interface{}) {}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}
