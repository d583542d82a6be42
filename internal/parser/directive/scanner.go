package directive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vvka-141/cdeps/internal/parser"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

var (
	// ErrUnterminatedComment reports a block comment still open at end of file.
	ErrUnterminatedComment = errors.New("unterminated comment")

	// ErrMalformedInclude reports an include directive without a usable target.
	ErrMalformedInclude = errors.New("malformed include")
)

// includeDirectives are the directive names that pull in another file.
var includeDirectives = map[string]bool{
	"include":      true,
	"include_next": true,
	"import":       true,
}

// Scanner implements parser.DirectiveSource. It holds no state between
// calls and is safe for concurrent use.
type Scanner struct{}

// New creates a Scanner.
func New() *Scanner {
	return &Scanner{}
}

// NewSource adapts New to the backend constructor parser.Factory expects.
func NewSource() (parser.DirectiveSource, error) {
	return New(), nil
}

// Directives lists the include directives of content in source order.
//
// With opts.TolerateIncomplete unset, an unterminated block comment or a
// malformed include fails the whole file. Otherwise malformed includes are
// dropped.
func (s *Scanner) Directives(ctx context.Context, path string, content []byte, opts cdeps.ParseOptions) ([]Directive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	split := splitLines(content)
	if split.openCommentLine > 0 && !opts.TolerateIncomplete {
		return nil, fmt.Errorf("%s:%d: %w: %w", path, split.openCommentLine, ErrUnterminatedComment, cdeps.ErrIncompleteInput)
	}

	var (
		directives []Directive
		cond       conditionals
	)
	for _, ll := range split.lines {
		name, rest, ok := directiveOf(ll.text)
		if !ok {
			continue
		}

		if cond.track(name, rest) || cond.skipping() {
			continue
		}
		if !includeDirectives[name] {
			continue
		}

		d, err := parseTarget(rest)
		if err != nil {
			if !opts.TolerateIncomplete {
				return nil, fmt.Errorf("%s:%d: #%s %s: %w: %w", path, ll.line, name, rest, err, cdeps.ErrIncompleteInput)
			}
			continue
		}
		d.Line = ll.line
		directives = append(directives, d)
	}
	return directives, nil
}

// Directive is re-exported for brevity inside this package.
type Directive = parser.Directive

// directiveOf splits a logical line into directive name and operand.
func directiveOf(text string) (name, rest string, ok bool) {
	text = strings.TrimLeft(text, " \t\f\v")
	if !strings.HasPrefix(text, "#") {
		return "", "", false
	}
	text = strings.TrimLeft(text[1:], " \t\f\v")

	end := 0
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	if end == 0 {
		return "", "", false
	}
	return text[:end], strings.TrimSpace(text[end:]), true
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// parseTarget reads the operand of an include directive.
func parseTarget(rest string) (Directive, error) {
	if rest == "" {
		return Directive{}, ErrMalformedInclude
	}

	switch rest[0] {
	case '"':
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return Directive{}, fmt.Errorf("%w: missing closing '\"'", ErrMalformedInclude)
		}
		return Directive{Name: rest[1 : end+1], Form: parser.FormQuoted}, nil
	case '<':
		end := strings.IndexByte(rest[1:], '>')
		if end < 0 {
			return Directive{}, fmt.Errorf("%w: missing closing '>'", ErrMalformedInclude)
		}
		return Directive{Name: rest[1 : end+1], Form: parser.FormAngled}, nil
	}

	if !isIdentByte(rest[0]) {
		return Directive{}, ErrMalformedInclude
	}
	end := 0
	for end < len(rest) && isIdentByte(rest[end]) {
		end++
	}
	return Directive{Name: rest[:end], Form: parser.FormMacro}, nil
}

// conditionals tracks #if nesting just enough to drop "#if 0" groups.
type conditionals struct {
	depth int
	// deadAt is the depth of the innermost "#if 0" being skipped, or 0.
	deadAt int
}

func (c *conditionals) skipping() bool { return c.deadAt > 0 }

// track updates nesting for conditional directives and reports whether name was one.
func (c *conditionals) track(name, rest string) bool {
	switch name {
	case "if", "ifdef", "ifndef":
		c.depth++
		if !c.skipping() && name == "if" && strings.TrimSpace(rest) == "0" {
			c.deadAt = c.depth
		}
	case "elif", "else", "elifdef", "elifndef":
		if c.deadAt == c.depth {
			c.deadAt = 0
		}
	case "endif":
		if c.deadAt == c.depth {
			c.deadAt = 0
		}
		if c.depth > 0 {
			c.depth--
		}
	default:
		return false
	}
	return true
}

// Verify Scanner implements the interface at compile time
var _ parser.DirectiveSource = (*Scanner)(nil)
