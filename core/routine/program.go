// Package routine is the immutable model of parsed workout routines.
//
// A Program holds exercise programs; an ExerciseProgram holds exercises; an
// Exercise binds event matchers to actions. All durations are computed
// eagerly when values are constructed, so reading them is free and never
// fails.
package routine

import (
	"slices"
	"sort"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/types"
)

// MatcherAction binds an action to the events it runs on.
type MatcherAction struct {
	Matcher EventMatcher
	Action  Action
}

// Exercise is a named exercise with a set/repetition structure.
type Exercise struct {
	name     string
	sets     int
	reps     int
	pairs    []MatcherAction
	duration time.Duration
}

// NewExercise creates an exercise. Its duration is the sum of the durations
// of every action that fires while walking the exercise's events.
func NewExercise(name string, sets, reps int, pairs []MatcherAction) *Exercise {
	invariant.NonNegative(sets, "set count")
	invariant.NonNegative(reps, "repetition count")

	pairs = slices.Clone(pairs)
	actions := make([]Action, len(pairs))
	for i, pair := range pairs {
		invariant.NotNil(pair.Matcher, "matcher")
		actions[i] = pair.Action
	}
	claim(actions, "exercise")

	e := &Exercise{name: name, sets: sets, reps: reps, pairs: pairs}
	for ev := range e.Events() {
		for _, pair := range e.pairs {
			if pair.Matcher.Matches(ev) {
				e.duration = types.SaturatingAdd(e.duration, pair.Action.Duration())
			}
		}
	}
	return e
}

func (e *Exercise) Name() string            { return e.name }
func (e *Exercise) Sets() int               { return e.sets }
func (e *Exercise) Repetitions() int        { return e.reps }
func (e *Exercise) Duration() time.Duration { return e.duration }

// Pairs returns the matcher/action pairs in declaration order.
func (e *Exercise) Pairs() []MatcherAction { return slices.Clone(e.pairs) }

// ActionsFor returns the actions that fire on ev, in declaration order.
func (e *Exercise) ActionsFor(ev Event) []Action {
	var actions []Action
	for _, pair := range e.pairs {
		if pair.Matcher.Matches(ev) {
			actions = append(actions, pair.Action)
		}
	}
	return actions
}

// ExerciseProgram is a named, ordered list of exercises.
type ExerciseProgram struct {
	name      string
	exercises []*Exercise
	offsets   []time.Duration
	duration  time.Duration
}

// NewExerciseProgram creates an exercise program.
func NewExerciseProgram(name string, exercises []*Exercise) *ExerciseProgram {
	exercises = slices.Clone(exercises)
	offsets := make([]time.Duration, len(exercises))

	var total time.Duration
	for i, ex := range exercises {
		invariant.NotNil(ex, "exercise")
		offsets[i] = total
		total = types.SaturatingAdd(total, ex.Duration())
	}
	return &ExerciseProgram{name: name, exercises: exercises, offsets: offsets, duration: total}
}

func (p *ExerciseProgram) Name() string            { return p.name }
func (p *ExerciseProgram) Duration() time.Duration { return p.duration }

// Exercises returns the exercises in order.
func (p *ExerciseProgram) Exercises() []*Exercise { return slices.Clone(p.exercises) }

// Offset returns the routine time at which exercise i starts.
func (p *ExerciseProgram) Offset(i int) time.Duration {
	invariant.Precondition(i >= 0 && i < len(p.offsets), "exercise index %d out of range [0, %d)", i, len(p.offsets))
	return p.offsets[i]
}

// Timeline returns the start offset of every exercise, in order.
func (p *ExerciseProgram) Timeline() []time.Duration { return slices.Clone(p.offsets) }

// ExerciseAt returns the index of the exercise running at the given routine
// time, or -1 if the program has no exercises. Zero-length exercises are
// never "running"; times past the end map to the last exercise.
func (p *ExerciseProgram) ExerciseAt(at time.Duration) int {
	if len(p.exercises) == 0 {
		return -1
	}
	// first exercise whose end lies after at
	i := sort.Search(len(p.exercises), func(i int) bool {
		return p.offsets[i]+p.exercises[i].Duration() > at
	})
	if i == len(p.exercises) {
		return len(p.exercises) - 1
	}
	return i
}

// Program is a parsed document: an ordered list of exercise programs.
type Program struct {
	programs []*ExerciseProgram
}

// NewProgram creates a program.
func NewProgram(programs []*ExerciseProgram) *Program {
	for _, p := range programs {
		invariant.NotNil(p, "exercise program")
	}
	return &Program{programs: slices.Clone(programs)}
}

// ExercisePrograms returns the exercise programs in document order.
func (p *Program) ExercisePrograms() []*ExerciseProgram { return slices.Clone(p.programs) }

// Lookup returns the exercise program with the given name.
func (p *Program) Lookup(name string) (*ExerciseProgram, bool) {
	for _, ep := range p.programs {
		if ep.name == name {
			return ep, true
		}
	}
	return nil, false
}

// Names returns the exercise program names in document order.
func (p *Program) Names() []string {
	names := make([]string, len(p.programs))
	for i, ep := range p.programs {
		names[i] = ep.name
	}
	return names
}
