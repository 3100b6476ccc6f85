package routine

import "github.com/aledsdavies/cadence/core/invariant"

// EventMatcher decides whether an action applies to an event. The set of
// matchers is closed: TypedMatcher and NumberedMatcher.
type EventMatcher interface {
	Matches(ev Event) bool
	matcher()
}

// TypedMatcher matches every event of one kind.
type TypedMatcher struct {
	Kind EventKind
}

// NewTypedMatcher creates a matcher for kind.
func NewTypedMatcher(kind EventKind) *TypedMatcher {
	invariant.Precondition(kind <= AfterRepetition, "unknown event kind %d", kind)
	return &TypedMatcher{Kind: kind}
}

func (m *TypedMatcher) Matches(ev Event) bool { return ev.Kind == m.Kind }
func (*TypedMatcher) matcher()                {}

// NumberedMatcher matches events of one kind whose number satisfies a
// constraint.
type NumberedMatcher struct {
	Kind       EventKind
	Constraint Constraint
	predicate  Predicate
}

// NewNumberedMatcher creates a matcher for numbered events of kind.
func NewNumberedMatcher(kind EventKind, c Constraint) *NumberedMatcher {
	invariant.Precondition(kind.Numbered(), "%s events carry no number", kind)
	invariant.Precondition(len(c.Atoms) > 0, "constraint must have at least one atom")
	return &NumberedMatcher{Kind: kind, Constraint: c, predicate: c.Predicate()}
}

func (m *NumberedMatcher) Matches(ev Event) bool {
	if ev.Kind != m.Kind {
		return false
	}
	first, last := ev.Bounds()
	return m.predicate(ev.Number, first, last)
}

func (*NumberedMatcher) matcher() {}
