package parser

import (
	"slices"
	"strings"
	"unicode"
)

// Parser is a combinator over rune input. It returns the parsed value and
// the position after it, or ok == false with the failure recorded in s.
//
// Parsers never consume on failure: the returned position is only meaningful
// when ok is true, and callers retry alternatives from their own position.
type Parser[T any] func(s *state, pos int) (value T, next int, ok bool)

// state is shared by every parser of one parse. It tracks the furthest
// position any alternative reached and what would have let it continue.
type state struct {
	src      []rune
	config   *ParserConfig
	furthest int
	expected []string
	rejected *rejection
}

func newState(input string, config *ParserConfig) *state {
	return &state{src: []rune(input), config: config, furthest: -1}
}

// expect records that one of what was required at pos.
func (s *state) expect(pos int, what ...string) {
	switch {
	case pos > s.furthest:
		s.furthest = pos
		s.expected = append(s.expected[:0], what...)
	case pos == s.furthest:
		s.expected = append(s.expected, what...)
	}
}

// reject records input that was recognised but is invalid, like an
// overflowing number. The first rejection decides the parse: no other
// alternative can make the document valid again.
func (s *state) reject(pos int, msg string) {
	if s.rejected == nil {
		s.rejected = &rejection{pos: pos, message: msg}
	}
}

type rejection struct {
	pos     int
	message string
}

type mark struct {
	furthest int
	expected []string
}

func (s *state) mark() mark {
	return mark{furthest: s.furthest, expected: slices.Clone(s.expected)}
}

func (s *state) restore(m mark) {
	s.furthest = m.furthest
	s.expected = m.expected
}

func (s *state) peek(pos int) (rune, bool) {
	if pos >= len(s.src) {
		return 0, false
	}
	return s.src[pos], true
}

func (s *state) slice(from, to int) string {
	return string(s.src[from:to])
}

// text matches want exactly.
func text(want string) Parser[string] {
	runes := []rune(want)
	desc := quote(want)
	return func(s *state, pos int) (string, int, bool) {
		if pos+len(runes) > len(s.src) || !slices.Equal(s.src[pos:pos+len(runes)], runes) {
			s.expect(pos, desc)
			return "", pos, false
		}
		return want, pos + len(runes), true
	}
}

// fold matches want ignoring case. Spaces in want match one or more
// horizontal whitespace characters, so fold("wait for") accepts "WAIT  for".
func fold(want string) Parser[string] {
	words := strings.Fields(want)
	desc := quote(want)
	return func(s *state, pos int) (string, int, bool) {
		at := pos
		for i, word := range words {
			if i > 0 {
				n := skipHSpace(s, at)
				if n == at {
					s.expect(pos, desc)
					return "", pos, false
				}
				at = n
			}
			for _, r := range word {
				got, ok := s.peek(at)
				if !ok || unicode.ToLower(got) != unicode.ToLower(r) {
					s.expect(pos, desc)
					return "", pos, false
				}
				at++
			}
		}
		return want, at, true
	}
}

// satisfy matches one rune accepted by pred.
func satisfy(desc string, pred func(rune) bool) Parser[rune] {
	return func(s *state, pos int) (rune, int, bool) {
		r, ok := s.peek(pos)
		if !ok || !pred(r) {
			s.expect(pos, desc)
			return 0, pos, false
		}
		return r, pos + 1, true
	}
}

// eof matches the end of input.
func eof(s *state, pos int) (struct{}, int, bool) {
	if pos < len(s.src) {
		s.expect(pos, "end of input")
		return struct{}{}, pos, false
	}
	return struct{}{}, pos, true
}

// choice tries each alternative in order and returns the first success.
func choice[T any](alternatives ...Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		for _, p := range alternatives {
			if v, next, ok := p(s, pos); ok {
				return v, next, true
			}
		}
		var zero T
		return zero, pos, false
	}
}

// many applies p zero or more times. p must consume input when it succeeds.
func many[T any](p Parser[T]) Parser[[]T] {
	return func(s *state, pos int) ([]T, int, bool) {
		var out []T
		for {
			v, next, ok := p(s, pos)
			if !ok || next == pos {
				return out, pos, true
			}
			out = append(out, v)
			pos = next
		}
	}
}

// sepBy1 applies p one or more times, separated by sep.
func sepBy1[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s *state, pos int) ([]T, int, bool) {
		first, next, ok := p(s, pos)
		if !ok {
			return nil, pos, false
		}
		out := []T{first}
		pos = next
		for {
			_, afterSep, ok := sep(s, pos)
			if !ok {
				return out, pos, true
			}
			v, afterItem, ok := p(s, afterSep)
			if !ok {
				return out, pos, true
			}
			out = append(out, v)
			pos = afterItem
		}
	}
}

// mapTo converts a successful result.
func mapTo[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(s *state, pos int) (U, int, bool) {
		v, next, ok := p(s, pos)
		if !ok {
			var zero U
			return zero, pos, false
		}
		return f(v), next, true
	}
}

// label replaces the expectations of a failure that made no progress with a
// single description, so errors say "duration" instead of listing digits.
func label[T any](desc string, p Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		m := s.mark()
		v, next, ok := p(s, pos)
		if !ok && s.furthest <= pos {
			s.restore(m)
			s.expect(pos, desc)
		}
		return v, next, ok
	}
}

func quote(s string) string {
	return "'" + s + "'"
}
