package parser

import (
	"fmt"
	"slices"
	"strings"
)

// contextRunes is how much consumed input a ParseError keeps before the
// failure position.
const contextRunes = 24

// ParseError describes why a document failed to parse. It points at the
// furthest position any grammar alternative reached.
type ParseError struct {
	Line     int      // 1-based
	Column   int      // 1-based, in runes
	Offset   int      // 0-based rune offset into the input
	Expected []string // sorted, deduplicated token descriptions
	Message  string   // set when the input was recognised but invalid
	Context  string   // up to 24 runes of input preceding the failure
	Input    string
}

func newParseError(s *state) *ParseError {
	pos := max(s.furthest, 0)
	expected := slices.Clone(s.expected)
	var message string
	if s.rejected != nil {
		pos, expected, message = s.rejected.pos, nil, s.rejected.message
	}

	line, column := 1, 1
	for i := 0; i < pos && i < len(s.src); i++ {
		switch r := s.src[i]; {
		case r == '\n':
			line++
			column = 1
		case r == '\r':
			// \r\n counts once
			if i+1 < len(s.src) && s.src[i+1] == '\n' {
				continue
			}
			line++
			column = 1
		default:
			column++
		}
	}

	slices.Sort(expected)
	expected = slices.Compact(expected)

	return &ParseError{
		Line:     line,
		Column:   column,
		Offset:   pos,
		Expected: expected,
		Message:  message,
		Context:  s.slice(max(0, pos-contextRunes), min(pos, len(s.src))),
		Input:    string(s.src),
	}
}

// Summary returns the one-line description without the snippet.
func (e *ParseError) Summary() string {
	what := e.Message
	if what == "" {
		what = "expected " + joinAlternatives(e.Expected)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, what)
}

// Error returns the formatted error message with line/column and code snippet
func (e *ParseError) Error() string {
	snippet := e.createCodeSnippet()
	if snippet == "" {
		return "parse error: " + e.Summary()
	}
	return "parse error: " + e.Summary() + "\n" + snippet
}

// Snippet returns the source line of the failure with a caret under the
// failing column, or "" when the input is unavailable.
func (e *ParseError) Snippet() string { return e.createCodeSnippet() }

// createCodeSnippet creates a code snippet showing the error location
func (e *ParseError) createCodeSnippet() string {
	if e.Input == "" || e.Line == 0 {
		return ""
	}

	lines := splitLines(e.Input)
	if e.Line > len(lines) {
		return ""
	}

	lineContent := lines[e.Line-1]

	// Rust/Clang style
	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %d:%d\n", e.Line, e.Column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Line, lineContent))
	snippet.WriteString("   | ")
	if e.Column > 0 && e.Column <= len([]rune(lineContent))+1 {
		snippet.WriteString(strings.Repeat(" ", e.Column-1) + "^")
	}

	return snippet.String()
}

// splitLines splits on any of the three newline styles.
func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return strings.Split(input, "\n")
}

func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return "valid input"
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
	}
}
