package directive

import "strings"

// logicalLine is one line after splicing and comment removal.
type logicalLine struct {
	text string
	// line is the 1-based physical line the logical line starts on.
	line int
}

type lexState int

const (
	stateNormal lexState = iota
	stateLineComment
	stateBlockComment
	stateString
	stateChar
	stateHeaderName
)

// splitResult holds the logical lines of a file and what the lexer saw at EOF.
type splitResult struct {
	lines []logicalLine

	// openCommentLine is the line of a block comment still open at EOF, or 0.
	openCommentLine int
}

// splitLines turns source into logical lines. Backslash-newline pairs are
// removed, comments become a single space, and a block comment spanning
// several lines keeps them on one logical line like the preprocessor does.
func splitLines(src []byte) splitResult {
	var (
		res          splitResult
		cur          strings.Builder
		state        = stateNormal
		physical     = 1
		start        = 1
		commentStart = 0
	)

	flush := func() {
		res.lines = append(res.lines, logicalLine{text: cur.String(), line: start})
		cur.Reset()
	}

	n := len(src)
	for i := 0; i < n; i++ {
		c := src[i]

		// line splice
		if c == '\\' {
			if j := newlineAt(src, i+1); j > 0 {
				i += j
				physical++
				continue
			}
		}

		if c == '\r' && i+1 < n && src[i+1] == '\n' {
			continue
		}

		if c == '\n' {
			physical++
			switch state {
			case stateBlockComment:
				continue
			case stateLineComment, stateString, stateChar, stateHeaderName:
				// literals do not span lines
				state = stateNormal
			}
			flush()
			start = physical
			continue
		}

		next := byte(0)
		if i+1 < n {
			next = src[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case c == '/' && next == '/':
				state = stateLineComment
				cur.WriteByte(' ')
				i++
			case c == '/' && next == '*':
				state = stateBlockComment
				commentStart = physical
				cur.WriteByte(' ')
				i++
			case c == '"':
				state = stateString
				cur.WriteByte(c)
			case c == '\'' && opensCharLiteral(cur.String()):
				state = stateChar
				cur.WriteByte(c)
			case c == '<' && isIncludeHead(cur.String()):
				state = stateHeaderName
				cur.WriteByte(c)
			default:
				cur.WriteByte(c)
			}

		case stateLineComment:
			// dropped

		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}

		case stateHeaderName:
			cur.WriteByte(c)
			if c == '>' {
				state = stateNormal
			}

		case stateString, stateChar:
			cur.WriteByte(c)
			if c == '\\' && i+1 < n && src[i+1] != '\n' && src[i+1] != '\r' {
				cur.WriteByte(src[i+1])
				i++
				continue
			}
			if (state == stateString && c == '"') || (state == stateChar && c == '\'') {
				state = stateNormal
			}
		}
	}

	if state == stateBlockComment {
		res.openCommentLine = commentStart
	}
	if cur.Len() > 0 {
		flush()
	}
	return res
}

// opensCharLiteral reports whether a quote following text starts a character
// literal. A quote inside a number (1'000, 0xFF'FF) is a digit separator.
func opensCharLiteral(text string) bool {
	start := len(text)
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	return start == len(text) || text[start] < '0' || text[start] > '9'
}

// isIncludeHead reports whether text is an include directive up to its
// operand, so a following '<' opens a header name.
func isIncludeHead(text string) bool {
	name, rest, ok := directiveOf(text)
	return ok && rest == "" && includeDirectives[name]
}

// newlineAt returns the width of a line ending at src[i], or 0.
func newlineAt(src []byte, i int) int {
	if i < len(src) && src[i] == '\n' {
		return 1
	}
	if i+1 < len(src) && src[i] == '\r' && src[i+1] == '\n' {
		return 2
	}
	return 0
}
