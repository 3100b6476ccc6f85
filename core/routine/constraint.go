package routine

import (
	"strconv"
	"strings"
)

// Predicate decides whether a numbered event applies, given the event's
// number and the first and last numbers of its kind.
type Predicate func(current, first, last int) bool

// Anchor says what a constraint number is relative to.
type Anchor uint8

const (
	AnchorLiteral Anchor = iota // plain integer
	AnchorFirst                 // first, first+N, first-N
	AnchorLast                  // last, last+N, last-N
)

// Number is a constraint operand. For AnchorLiteral, Value is the number
// itself; otherwise it is the offset from first or last.
type Number struct {
	Anchor Anchor
	Value  int
}

// Literal returns a literal number.
func Literal(n int) Number { return Number{Anchor: AnchorLiteral, Value: n} }

// First returns first+offset.
func First(offset int) Number { return Number{Anchor: AnchorFirst, Value: offset} }

// Last returns last+offset.
func Last(offset int) Number { return Number{Anchor: AnchorLast, Value: offset} }

// Resolve evaluates the number for a concrete first/last pair.
func (n Number) Resolve(first, last int) int {
	switch n.Anchor {
	case AnchorFirst:
		return first + n.Value
	case AnchorLast:
		return last + n.Value
	default:
		return n.Value
	}
}

func (n Number) String() string {
	var name string
	switch n.Anchor {
	case AnchorFirst:
		name = "first"
	case AnchorLast:
		name = "last"
	default:
		return strconv.Itoa(n.Value)
	}
	switch {
	case n.Value > 0:
		return name + "+" + strconv.Itoa(n.Value)
	case n.Value < 0:
		return name + strconv.Itoa(n.Value)
	default:
		return name
	}
}

// Atom is a single number or a stepped inclusive range.
type Atom struct {
	Low  Number
	High *Number // nil for a single number
	Step *Number // nil means a step of 1
}

// Single returns an atom matching exactly n.
func Single(n Number) Atom { return Atom{Low: n} }

// Range returns an atom matching low..high with step 1.
func Range(low, high Number) Atom { return Atom{Low: low, High: &high} }

// SteppedRange returns an atom matching low, low+step, ... up to high.
func SteppedRange(low, step, high Number) Atom { return Atom{Low: low, High: &high, Step: &step} }

// Match reports whether current is one of the numbers the atom touches.
// A step that resolves to zero or less touches nothing.
func (a Atom) Match(current, first, last int) bool {
	low := a.Low.Resolve(first, last)
	if a.High == nil {
		return current == low
	}
	high := a.High.Resolve(first, last)
	step := 1
	if a.Step != nil {
		step = a.Step.Resolve(first, last)
	}
	if step <= 0 || current < low || current > high {
		return false
	}
	return (current-low)%step == 0
}

func (a Atom) String() string {
	if a.High == nil {
		return a.Low.String()
	}
	if a.Step == nil {
		return a.Low.String() + ".." + a.High.String()
	}
	return a.Low.String() + ".." + a.Step.String() + ".." + a.High.String()
}

// Constraint is a union of atoms, optionally negated as a whole.
type Constraint struct {
	Negated bool
	Atoms   []Atom
}

// Match reports whether any atom matches, inverted when negated.
func (c Constraint) Match(current, first, last int) bool {
	matched := false
	for _, atom := range c.Atoms {
		if atom.Match(current, first, last) {
			matched = true
			break
		}
	}
	return matched != c.Negated
}

// Predicate returns c as a predicate function.
func (c Constraint) Predicate() Predicate {
	return c.Match
}

// String renders the constraint in markup syntax.
func (c Constraint) String() string {
	parts := make([]string, len(c.Atoms))
	for i, atom := range c.Atoms {
		parts[i] = atom.String()
	}
	s := strings.Join(parts, ",")
	if c.Negated {
		return "^" + s
	}
	return s
}
