package walker

import (
	"fmt"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/vvka-141/cdeps/internal/files/classifier"
	"github.com/vvka-141/cdeps/internal/files/filesystem"
	"github.com/vvka-141/cdeps/internal/paths"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Walker enumerates project files from a directory tree.
// Walker is safe for concurrent use by multiple goroutines as long as
// the provided fsProvider is also safe for concurrent use.
type Walker struct {
	fsProvider filesystem.FileSystemProvider
	classifier *classifier.Classifier
	exclude    *ignore.GitIgnore
}

// Option configures a Walker.
type Option func(*Walker)

// WithExclude prunes entries matching the given gitignore-style patterns.
// Patterns are matched against paths relative to the walked root.
func WithExclude(patterns ...string) Option {
	return func(w *Walker) {
		if len(patterns) == 0 {
			return
		}
		w.exclude = ignore.CompileIgnoreLines(patterns...)
	}
}

// New creates a walker over fsProvider using c to recognize project files.
// Panics if fsProvider or c is nil.
func New(fsProvider filesystem.FileSystemProvider, c *classifier.Classifier, opts ...Option) *Walker {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if c == nil {
		panic("classifier cannot be nil")
	}
	w := &Walker{
		fsProvider: fsProvider,
		classifier: c,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enumerate recursively walks root and returns every project file in
// filesystem enumeration order. Paths are '/'-separated and start with root
// as the caller spelled it.
//
// Any failure to open root or to read an entry below it is returned wrapped
// in cdeps.ErrFilesystem; no partial inventory is returned.
func (w *Walker) Enumerate(root string) ([]cdeps.ProjectFile, error) {
	dir, err := w.fsProvider.Open(root)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open directory %s: %w", cdeps.ErrFilesystem, root, err)
	}

	prefix := joinPrefix(paths.Normalize(root))

	var files []cdeps.ProjectFile
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("%w: error walking %s: %w", cdeps.ErrFilesystem, root, err)
		}

		rel := file.RelativePath()
		if file.Info().IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filesystem.SkipDir
			}
			return nil
		}
		if w.excluded(rel) {
			return nil
		}

		kind, ok := w.classifier.Classify(file.Info().Name())
		if !ok {
			return nil
		}

		files = append(files, cdeps.ProjectFile{
			Path: prefix + rel,
			Kind: kind,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (w *Walker) excluded(rel string) bool {
	return w.exclude != nil && w.exclude.MatchesPath(rel)
}

// joinPrefix returns the string placed before a relative path, joining the
// same way os.path.join does: no doubled separator after a trailing slash.
func joinPrefix(root string) string {
	if root == "" || strings.HasSuffix(root, "/") {
		return root
	}
	return root + "/"
}

// Verify Walker implements the interface at compile time
var _ cdeps.FileEnumerator = (*Walker)(nil)
