// Package parser builds translation units for C/C++ files.
//
// An Index reads a file through a filesystem provider, asks a DirectiveSource
// backend for the file's #include directives and follows every include it can
// resolve, so the resulting unit lists the whole inclusion tree with a nesting
// depth per entry:
//
//	a.cpp:   #include "b.h"      -> {b.h, 1}
//	b.h:     #include "c.h"      -> {c.h, 2}
//	a.cpp:   #include <vector>   -> {vector, 1}
//
// Only quoted includes are resolved, against the directory of the including
// file. Angle-bracket and macro includes depend on compiler search paths and
// are reported by name without being followed.
package parser
