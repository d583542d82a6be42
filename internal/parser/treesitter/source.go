package treesitter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/vvka-141/cdeps/internal/parser"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// ErrSyntax reports a file whose syntax tree contains errors.
var ErrSyntax = errors.New("syntax error")

const (
	kindInclude       = "preproc_include"
	kindString        = "string_literal"
	kindSystemLib     = "system_lib_string"
	kindFunctionDef   = "function_definition"
	fieldPath         = "path"
	fieldFunctionBody = "body"
)

// Source implements parser.DirectiveSource with tree-sitter.
type Source struct {
	parser *tree_sitter.Parser
}

// New creates a Source with the C++ grammar loaded.
func New() (*Source, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_cpp.Language())); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load C++ grammar: %w", err)
	}
	return &Source{parser: p}, nil
}

// NewSource adapts New to the backend constructor parser.Factory expects.
func NewSource() (parser.DirectiveSource, error) {
	return New()
}

// Directives parses content and returns its preproc_include nodes in
// source order. Function bodies are skipped when opts.SkipFunctionBodies
// is set. Without opts.TolerateIncomplete a tree with errors fails.
func (s *Source) Directives(ctx context.Context, path string, content []byte, opts cdeps.ParseOptions) ([]parser.Directive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := s.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: tree-sitter returned no tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !opts.TolerateIncomplete {
		line := firstErrorLine(root)
		return nil, fmt.Errorf("%s:%d: %w: %w", path, line, ErrSyntax, cdeps.ErrIncompleteInput)
	}

	var directives []parser.Directive
	collect(root, content, opts.SkipFunctionBodies, &directives)
	return directives, nil
}

// collect walks n depth-first and appends every include it finds.
func collect(n *tree_sitter.Node, src []byte, skipBodies bool, out *[]parser.Directive) {
	if n.Kind() == kindInclude {
		if d, ok := includeOf(n, src); ok {
			*out = append(*out, d)
		}
		return
	}

	var body *tree_sitter.Node
	if skipBodies && n.Kind() == kindFunctionDef {
		body = n.ChildByFieldName(fieldFunctionBody)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if body != nil && child.Id() == body.Id() {
			continue
		}
		collect(child, src, skipBodies, out)
	}
}

func includeOf(n *tree_sitter.Node, src []byte) (parser.Directive, bool) {
	target := n.ChildByFieldName(fieldPath)
	if target == nil {
		return parser.Directive{}, false
	}

	d := parser.Directive{Line: int(n.StartPosition().Row) + 1}
	text := target.Utf8Text(src)
	switch target.Kind() {
	case kindString:
		d.Name = strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
		d.Form = parser.FormQuoted
	case kindSystemLib:
		d.Name = strings.TrimSuffix(strings.TrimPrefix(text, "<"), ">")
		d.Form = parser.FormAngled
	default:
		d.Name = strings.TrimSpace(text)
		d.Form = parser.FormMacro
	}
	return d, d.Name != ""
}

// firstErrorLine returns the 1-based line of the first error or missing node.
func firstErrorLine(n *tree_sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartPosition().Row) + 1
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && (child.HasError() || child.IsMissing()) {
			return firstErrorLine(child)
		}
	}
	return int(n.StartPosition().Row) + 1
}

// Close releases the native parser.
func (s *Source) Close() error {
	if s.parser != nil {
		s.parser.Close()
		s.parser = nil
	}
	return nil
}

// Verify Source implements the interface at compile time
var _ parser.DirectiveSource = (*Source)(nil)
