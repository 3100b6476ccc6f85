package routine

import "iter"

// EventKind identifies a lifecycle point of an exercise.
type EventKind uint8

const (
	BeforeExercise EventKind = iota
	AfterExercise
	BeforeSet
	AfterSet
	BeforeRepetition
	DuringRepetition
	AfterRepetition
)

func (k EventKind) String() string {
	switch k {
	case BeforeExercise:
		return "before exercise"
	case AfterExercise:
		return "after exercise"
	case BeforeSet:
		return "before set"
	case AfterSet:
		return "after set"
	case BeforeRepetition:
		return "before rep"
	case DuringRepetition:
		return "during rep"
	case AfterRepetition:
		return "after rep"
	default:
		return "unknown"
	}
}

// Numbered reports whether events of this kind carry a set or repetition
// number.
func (k EventKind) Numbered() bool {
	return k != BeforeExercise && k != AfterExercise
}

// Event is one lifecycle point. Exercise refers back to the exercise being
// walked so matchers can resolve "first" and "last".
type Event struct {
	Kind     EventKind
	Number   int
	Exercise *Exercise
}

// Bounds returns the first and last numbers for the event's kind: sets for
// set events, repetitions for repetition events.
func (e Event) Bounds() (first, last int) {
	if e.Exercise == nil {
		return 1, e.Number
	}
	switch e.Kind {
	case BeforeSet, AfterSet:
		return 1, e.Exercise.Sets()
	case BeforeRepetition, DuringRepetition, AfterRepetition:
		return 1, e.Exercise.Repetitions()
	default:
		return 1, 1
	}
}

// Events returns the exercise's lifecycle:
//
//	BeforeExercise
//	  for each set: BeforeSet, (BeforeRepetition, DuringRepetition, AfterRepetition)*, AfterSet
//	AfterExercise
//
// The sequence is finite and may be iterated any number of times.
func (e *Exercise) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if !yield(Event{Kind: BeforeExercise, Exercise: e}) {
			return
		}
		for set := 1; set <= e.sets; set++ {
			if !yield(Event{Kind: BeforeSet, Number: set, Exercise: e}) {
				return
			}
			for rep := 1; rep <= e.reps; rep++ {
				for _, kind := range [...]EventKind{BeforeRepetition, DuringRepetition, AfterRepetition} {
					if !yield(Event{Kind: kind, Number: rep, Exercise: e}) {
						return
					}
				}
			}
			if !yield(Event{Kind: AfterSet, Number: set, Exercise: e}) {
				return
			}
		}
		yield(Event{Kind: AfterExercise, Exercise: e})
	}
}
