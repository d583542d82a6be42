// Package files groups the file discovery sub-packages used by a scan.
//
//   - filesystem: Filesystem abstraction with OS and in-memory implementations
//   - classifier: Extension-based classification of candidate source files
//   - walker: Recursive enumeration of classified files under a root
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/cdeps/internal/files/classifier"
//	    "github.com/vvka-141/cdeps/internal/files/filesystem"
//	    "github.com/vvka-141/cdeps/internal/files/walker"
//	)
//
//	c := classifier.New(cfg.Extensions)
//	w := walker.New(filesystem.NewOSFileSystem(), c, walker.WithExclude(cfg.Exclude...))
//	files, err := w.Enumerate("./src")
package files
