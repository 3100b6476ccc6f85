package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/aledsdavies/cadence/core/types"
)

func isHSpace(r rune) bool { return r == ' ' || r == '\t' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func skipHSpace(s *state, pos int) int {
	for pos < len(s.src) && isHSpace(s.src[pos]) {
		pos++
	}
	return pos
}

// hspace1 matches one or more spaces or tabs.
func hspace1(s *state, pos int) (struct{}, int, bool) {
	next := skipHSpace(s, pos)
	if next == pos {
		s.expect(pos, "whitespace")
		return struct{}{}, pos, false
	}
	return struct{}{}, next, true
}

// newlineAt reports the position after a line terminator at pos: \r\n, \n
// or \r. Each line may use its own style.
func newlineAt(s *state, pos int) (int, bool) {
	r, ok := s.peek(pos)
	switch {
	case ok && r == '\n':
		return pos + 1, true
	case ok && r == '\r':
		if next, ok := s.peek(pos + 1); ok && next == '\n' {
			return pos + 2, true
		}
		return pos + 1, true
	default:
		return pos, false
	}
}

// newline matches one line terminator.
func newline(s *state, pos int) (struct{}, int, bool) {
	next, ok := newlineAt(s, pos)
	if !ok {
		s.expect(pos, "newline")
		return struct{}{}, pos, false
	}
	return struct{}{}, next, true
}

// lineEnd matches trailing spaces followed by a newline or the end of input.
func lineEnd(s *state, pos int) (struct{}, int, bool) {
	pos = skipHSpace(s, pos)
	if pos == len(s.src) {
		return struct{}{}, pos, true
	}
	return newline(s, pos)
}

// blankLines skips lines that hold nothing but whitespace. It never fails
// and records no expectations.
func blankLines(s *state, pos int) (struct{}, int, bool) {
	for {
		next, ok := newlineAt(s, skipHSpace(s, pos))
		if !ok {
			return struct{}{}, pos, true
		}
		pos = next
	}
}

func digits(s *state, pos int) (string, int, bool) {
	end := pos
	for end < len(s.src) && isDigit(s.src[end]) {
		end++
	}
	if end == pos {
		s.expect(pos, "digit")
		return "", pos, false
	}
	return s.slice(pos, end), end, true
}

// integer matches a non-negative decimal integer that fits in an int.
var integer = label("number", func(s *state, pos int) (int, int, bool) {
	ds, next, ok := digits(s, pos)
	if !ok {
		return 0, pos, false
	}
	n, err := strconv.Atoi(ds)
	if err != nil {
		s.reject(pos, "number "+ds+" is too large")
		return 0, pos, false
	}
	return n, next, true
})

// unit matches a single case-insensitive unit letter.
func unit(letter rune) Parser[rune] {
	lower := letter
	upper := letter - 'a' + 'A'
	return satisfy(quote(string(letter)), func(r rune) bool { return r == lower || r == upper })
}

// durationComponent matches digits followed by a unit letter. Seconds may
// carry a fraction.
func durationComponent(letter rune, fractional bool) Parser[[2]string] {
	u := unit(letter)
	return func(s *state, pos int) ([2]string, int, bool) {
		whole, next, ok := digits(s, pos)
		if !ok {
			return [2]string{}, pos, false
		}
		var frac string
		if fractional {
			if dot, ok := s.peek(next); ok && dot == '.' {
				f, afterFrac, ok := digits(s, next+1)
				if !ok {
					return [2]string{}, pos, false
				}
				frac, next = f, afterFrac
			}
		}
		if _, next, ok = u(s, next); !ok {
			return [2]string{}, pos, false
		}
		return [2]string{whole, frac}, next, true
	}
}

var (
	hoursComponent   = durationComponent('h', false)
	minutesComponent = durationComponent('m', false)
	secondsComponent = durationComponent('s', true)
)

// duration matches a duration literal: optional hours, minutes and
// fractional seconds in that order, separated by horizontal whitespace only.
// At least one component is required.
var duration = label("duration", func(s *state, pos int) (time.Duration, int, bool) {
	var parts [3][2]string
	components := [...]Parser[[2]string]{hoursComponent, minutesComponent, secondsComponent}

	at, found := pos, false
	for i, component := range components {
		start := at
		if found {
			start = skipHSpace(s, at)
		}
		v, next, ok := component(s, start)
		if !ok {
			continue
		}
		parts[i], at, found = v, next, true
	}
	if !found {
		return 0, pos, false
	}

	d, err := types.Compose(parts[0][0], parts[1][0], parts[2][0], parts[2][1])
	if err != nil {
		s.reject(pos, "invalid duration: "+err.Error())
		return 0, pos, false
	}
	return d, at, true
})

// stringLiteral matches a single- or double-quoted string. A backslash
// escapes the delimiter or another backslash; line breaks are not allowed.
var stringLiteral = label("string", func(s *state, pos int) (string, int, bool) {
	delim, ok := s.peek(pos)
	if !ok || (delim != '"' && delim != '\'') {
		s.expect(pos, "string")
		return "", pos, false
	}

	var b strings.Builder
	at := pos + 1
	for {
		r, ok := s.peek(at)
		switch {
		case !ok || r == '\n' || r == '\r':
			s.expect(at, quote(string(delim)))
			return "", pos, false
		case r == delim:
			return b.String(), at + 1, true
		case r == '\\':
			escaped, ok := s.peek(at + 1)
			if !ok || (escaped != delim && escaped != '\\') {
				s.expect(at+1, quote(string(delim)), quote(`\`))
				return "", pos, false
			}
			b.WriteRune(escaped)
			at += 2
		default:
			b.WriteRune(r)
			at++
		}
	}
})
