package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// SkipDir can be returned from a WalkFunc to prune the directory being visited.
var SkipDir = fs.SkipDir

// File represents an individual file or directory met during a walk.
type File interface {
	// Path returns the provider path of the entry
	Path() string

	// RelativePath returns the '/'-separated path relative to the walked root
	RelativePath() string

	// Info returns entry metadata
	Info() FileInfo

	// ReadContent returns the file's content
	ReadContent() ([]byte, error)
}

// WalkFunc is called for every entry of a walk, the root included.
// A non-nil err reports an entry that could not be read; file is nil then.
// Returning SkipDir on a directory prunes it; any other error stops the walk.
type WalkFunc func(file File, err error) error

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the provider path of the directory
	Path() string

	// Walk traverses the tree in lexical order, calling fn for each entry
	Walk(fn WalkFunc) error
}

// FileSystemProvider is a factory for creating Directory instances
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}
