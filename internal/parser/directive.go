package parser

import (
	"context"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Form is the syntactic form of an include directive.
type Form int

const (
	// FormQuoted is #include "path".
	FormQuoted Form = iota
	// FormAngled is #include <path>.
	FormAngled
	// FormMacro is #include MACRO.
	FormMacro
)

// Directive is one include directive found in a file.
type Directive struct {
	// Name is the include target without its delimiters.
	Name string

	// Form tells how Name was delimited.
	Form Form

	// Line is the 1-based line the directive starts on.
	Line int
}

// String returns the directive target as it was spelled.
func (d Directive) String() string {
	switch d.Form {
	case FormQuoted:
		return `"` + d.Name + `"`
	case FormAngled:
		return "<" + d.Name + ">"
	default:
		return d.Name
	}
}

// DirectiveSource lists the include directives of a single file's content,
// in source order. It does not follow includes.
type DirectiveSource interface {
	Directives(ctx context.Context, path string, content []byte, opts cdeps.ParseOptions) ([]Directive, error)
}
