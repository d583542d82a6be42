package parser

import "github.com/vvka-141/cdeps/pkg/cdeps"

// translationUnit implements cdeps.TranslationUnit.
type translationUnit struct {
	path     string
	includes []cdeps.Inclusion
}

func (u *translationUnit) Path() string                { return u.path }
func (u *translationUnit) Includes() []cdeps.Inclusion { return u.includes }

func (u *translationUnit) add(path string, depth int) {
	u.includes = append(u.includes, cdeps.Inclusion{Path: path, Depth: depth})
}
