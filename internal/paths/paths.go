// Package paths makes file paths comparable across platforms.
package paths

import "strings"

// Normalize replaces every backslash with a forward slash.
// It is idempotent and never fails.
func Normalize(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// StripRoot removes root from the start of p.
// If p does not literally start with root, p is returned unchanged.
// Both arguments are expected to be normalized already.
func StripRoot(p, root string) string {
	if root == "" {
		return p
	}
	return strings.TrimPrefix(p, root)
}
