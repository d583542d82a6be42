// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// The directory walker enumerates project files through a FileSystemProvider and
// the include parser reads file contents through the same provider, so a whole
// scan can run against an in-memory tree in tests.
//
// Key interfaces:
//   - FileSystemProvider: Factory for directory instances plus direct file access
//   - Directory: A directory tree that can be walked in lexical order
//   - File: An individual entry with metadata and a content accessor
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
