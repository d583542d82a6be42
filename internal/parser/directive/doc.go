// Package directive lists C and C++ include directives without a compiler.
//
// The scanner splices continued lines, blanks out comments while keeping
// string and character literals intact, then reads each logical line that
// starts with '#'. It recognizes #include, #include_next and #import, and
// drops directives inside "#if 0" groups. Other conditionals are not
// evaluated, so both branches of an #ifdef are listed.
//
// Usage:
//
//	s := directive.New()
//	ds, err := s.Directives(ctx, "src/a.cpp", content, opts)
package directive
