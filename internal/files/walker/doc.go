// Package walker produces the file inventory of a scan.
//
// The walker is responsible for:
//   - Recursively visiting every directory below a root
//   - Classifying each regular file by its name
//   - Pruning entries that match configured exclusion patterns
//
// It is filesystem-agnostic through the filesystem.FileSystemProvider
// interface, enabling both production use with the OS filesystem and
// testing with in-memory filesystems.
package walker
