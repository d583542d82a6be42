// Package treesitter lists include directives by parsing C and C++ files
// with the tree-sitter C++ grammar.
//
// A Source owns a native parser handle. It is not safe for concurrent use
// and must be closed; scans open one Source per worker.
package treesitter
