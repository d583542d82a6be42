// Package classifier decides whether a file name belongs to the scanned project
// and which kind of C/C++ file it is.
package classifier

import (
	"strings"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Classifier matches file names against an ordered suffix table.
// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	rules []cdeps.ExtensionRule
}

// New creates a classifier from an ordered rule table; the first matching rule wins.
// Panics if rules is empty.
func New(rules []cdeps.ExtensionRule) *Classifier {
	if len(rules) == 0 {
		panic("rules cannot be empty")
	}
	return &Classifier{rules: append([]cdeps.ExtensionRule(nil), rules...)}
}

// Default returns the classifier for .cpp, .c, .hpp and .h.
func Default() *Classifier {
	return New(cdeps.DefaultExtensions())
}

// Classify returns the kind of filename, or (KindUnknown, false) when no rule matches.
// Matching is a case-sensitive suffix test; no content sniffing is done.
func (c *Classifier) Classify(filename string) (cdeps.Kind, bool) {
	for _, rule := range c.rules {
		if strings.HasSuffix(filename, rule.Suffix) {
			return rule.Kind, true
		}
	}
	return cdeps.KindUnknown, false
}
