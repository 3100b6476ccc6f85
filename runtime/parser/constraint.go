package parser

import "github.com/aledsdavies/cadence/core/routine"

// Constraint grammar:
//
//	constraint = ["^"] atom { "," atom }
//	atom       = number [ ".." number [ ".." number ] ]
//	number     = digits | ("first" | "last") [ ("+" | "-") digits ]
//
// Two numbers form low..high, three form low..step..high. Horizontal
// whitespace is allowed around commas and offset signs.

var (
	firstKeyword = fold("first")
	lastKeyword  = fold("last")
	rangeDots    = text("..")
	negation     = text("^")
)

func offset(s *state, pos int) (int, int, bool) {
	at := skipHSpace(s, pos)
	sign, ok := s.peek(at)
	if !ok || (sign != '+' && sign != '-') {
		s.expect(at, "'+'", "'-'")
		return 0, pos, false
	}
	n, next, ok := integer(s, skipHSpace(s, at+1))
	if !ok {
		return 0, pos, false
	}
	if sign == '-' {
		n = -n
	}
	return n, next, true
}

func anchored(keyword Parser[string], build func(int) routine.Number) Parser[routine.Number] {
	return func(s *state, pos int) (routine.Number, int, bool) {
		_, next, ok := keyword(s, pos)
		if !ok {
			return routine.Number{}, pos, false
		}
		if n, afterOffset, ok := offset(s, next); ok {
			return build(n), afterOffset, true
		}
		return build(0), next, true
	}
}

var number = label("number", choice(
	mapTo(integer, routine.Literal),
	anchored(firstKeyword, routine.First),
	anchored(lastKeyword, routine.Last),
))

func atom(s *state, pos int) (routine.Atom, int, bool) {
	numbers, next, ok := sepBy1(number, rangeDots)(s, pos)
	if !ok {
		return routine.Atom{}, pos, false
	}

	switch len(numbers) {
	case 1:
		return routine.Single(numbers[0]), next, true
	case 2:
		return routine.Range(numbers[0], numbers[1]), next, true
	case 3:
		step := numbers[1]
		if step.Anchor == routine.AnchorLiteral && step.Value == 0 {
			s.reject(pos, "range step must be positive")
			return routine.Atom{}, pos, false
		}
		return routine.SteppedRange(numbers[0], step, numbers[2]), next, true
	default:
		s.reject(pos, "a range takes at most a low, a step and a high bound")
		return routine.Atom{}, pos, false
	}
}

func comma(s *state, pos int) (struct{}, int, bool) {
	at := skipHSpace(s, pos)
	if r, ok := s.peek(at); !ok || r != ',' {
		s.expect(at, "','")
		return struct{}{}, pos, false
	}
	return struct{}{}, skipHSpace(s, at+1), true
}

func constraint(s *state, pos int) (routine.Constraint, int, bool) {
	var c routine.Constraint
	if _, next, ok := negation(s, pos); ok {
		c.Negated = true
		pos = next
	}
	atoms, next, ok := sepBy1(atom, comma)(s, pos)
	if !ok {
		return routine.Constraint{}, pos, false
	}
	c.Atoms = atoms
	return c, next, true
}
