package parser

import (
	"github.com/aledsdavies/cadence/core/routine"
)

// Document grammar:
//
//	document  = { program }
//	program   = "# " name newline { exercise }
//	exercise  = "## " name newline counts { matcher }
//	counts    = "* " int ("set" | "sets") "x" int ("rep" | "reps")
//	matcher   = "* " ("before" | "after") [noun [constraint]] ":" actions
//	          | "* during" ("rep" | "reps") [constraint] ":" actions
//	noun      = "set" | "sets" | "rep" | "reps"
//
// Blank lines may appear between headings, count lines and matcher blocks.

var (
	programHeading  = text("#")
	exerciseHeading = text("##")
	beforeKeyword   = fold("before")
	duringKeyword   = fold("during")
	afterKeyword    = fold("after")
	setsNoun        = choice(fold("sets"), fold("set"))
	repsNoun        = choice(fold("reps"), fold("rep"))
	timesKeyword    = fold("x")
)

// headingName matches the rest of the line as a name, trimmed of trailing
// whitespace. Empty names are rejected.
func headingName(s *state, pos int) (string, int, bool) {
	end := pos
	for end < len(s.src) && s.src[end] != '\n' && s.src[end] != '\r' {
		end++
	}
	last := end
	for last > pos && isHSpace(s.src[last-1]) {
		last--
	}
	if last == pos {
		s.expect(pos, "name")
		return "", pos, false
	}
	return s.slice(pos, last), end, true
}

func heading(marker Parser[string]) Parser[string] {
	return func(s *state, pos int) (string, int, bool) {
		_, next, ok := marker(s, pos)
		if !ok {
			return "", pos, false
		}
		if _, next, ok = hspace1(s, next); !ok {
			return "", pos, false
		}
		name, next, ok := headingName(s, next)
		if !ok {
			return "", pos, false
		}
		if _, next, ok = lineEnd(s, next); !ok {
			return "", pos, false
		}
		return name, next, true
	}
}

type counts struct {
	sets, reps int
}

// countsLine matches "* 3 sets x 10 reps".
func countsLine(s *state, pos int) (counts, int, bool) {
	var c counts
	steps := []Parser[struct{}]{
		discard(bullet), hspace1,
		assign(integer, &c.sets), hspace1, discard(setsNoun), hspace1,
		discard(timesKeyword), hspace1,
		assign(integer, &c.reps), hspace1, discard(repsNoun),
		lineEnd,
	}
	at := pos
	for _, step := range steps {
		_, next, ok := step(s, at)
		if !ok {
			return counts{}, pos, false
		}
		at = next
	}
	return c, at, true
}

func discard[T any](p Parser[T]) Parser[struct{}] {
	return mapTo(p, func(T) struct{} { return struct{}{} })
}

func assign[T any](p Parser[T], dst *T) Parser[struct{}] {
	return mapTo(p, func(v T) struct{} {
		*dst = v
		return struct{}{}
	})
}

// numberedTail matches an optional " <constraint>" after a noun.
func numberedTail(kind routine.EventKind) Parser[routine.EventMatcher] {
	return func(s *state, pos int) (routine.EventMatcher, int, bool) {
		if _, next, ok := hspace1(s, pos); ok {
			if c, afterConstraint, ok := constraint(s, next); ok {
				return routine.NewNumberedMatcher(kind, c), afterConstraint, true
			}
		}
		return routine.NewTypedMatcher(kind), pos, true
	}
}

// nounMatcher matches " set[s] [constraint]" or " rep[s] [constraint]".
func nounMatcher(setKind, repKind routine.EventKind) Parser[routine.EventMatcher] {
	return func(s *state, pos int) (routine.EventMatcher, int, bool) {
		_, next, ok := hspace1(s, pos)
		if !ok {
			return nil, pos, false
		}
		if setKind != repKind {
			if _, afterNoun, ok := setsNoun(s, next); ok {
				return numberedTail(setKind)(s, afterNoun)
			}
		}
		if _, afterNoun, ok := repsNoun(s, next); ok {
			return numberedTail(repKind)(s, afterNoun)
		}
		return nil, pos, false
	}
}

func matcherHead(s *state, pos int) (routine.EventMatcher, int, bool) {
	if _, next, ok := duringKeyword(s, pos); ok {
		m, next, ok := label("'rep'", nounMatcher(routine.DuringRepetition, routine.DuringRepetition))(s, next)
		if !ok {
			return nil, pos, false
		}
		return m, next, true
	}

	prepositions := []struct {
		keyword                    Parser[string]
		exercise, set, repetition routine.EventKind
	}{
		{beforeKeyword, routine.BeforeExercise, routine.BeforeSet, routine.BeforeRepetition},
		{afterKeyword, routine.AfterExercise, routine.AfterSet, routine.AfterRepetition},
	}
	for _, p := range prepositions {
		_, next, ok := p.keyword(s, pos)
		if !ok {
			continue
		}
		if m, afterNoun, ok := nounMatcher(p.set, p.repetition)(s, next); ok {
			return m, afterNoun, true
		}
		return routine.NewTypedMatcher(p.exercise), next, true
	}
	return nil, pos, false
}

// matcherBlock matches "* <matcher>:" and the action list below it. The list
// becomes a sequence.
func matcherBlock(s *state, pos int) (routine.MatcherAction, int, bool) {
	_, next, ok := blankLines(s, pos)
	if _, next, ok = bullet(s, next); !ok {
		return routine.MatcherAction{}, pos, false
	}
	if _, next, ok = hspace1(s, next); !ok {
		return routine.MatcherAction{}, pos, false
	}
	m, next, ok := matcherHead(s, next)
	if !ok {
		return routine.MatcherAction{}, pos, false
	}
	if _, next, ok = colon(s, skipHSpace(s, next)); !ok {
		return routine.MatcherAction{}, pos, false
	}
	if _, next, ok = lineEnd(s, next); !ok {
		return routine.MatcherAction{}, pos, false
	}
	actions, next, ok := actionList(1)(s, next)
	if !ok {
		return routine.MatcherAction{}, pos, false
	}
	return routine.MatcherAction{Matcher: m, Action: routine.NewSequence(actions...)}, next, true
}

func exercise(s *state, pos int) (*routine.Exercise, int, bool) {
	_, next, _ := blankLines(s, pos)
	name, next, ok := heading(exerciseHeading)(s, next)
	if !ok {
		return nil, pos, false
	}
	_, next, _ = blankLines(s, next)
	c, next, ok := countsLine(s, next)
	if !ok {
		return nil, pos, false
	}
	pairs, next, _ := many(matcherBlock)(s, next)
	return routine.NewExercise(name, c.sets, c.reps, pairs), next, true
}

func exerciseProgram(s *state, pos int) (*routine.ExerciseProgram, int, bool) {
	_, next, _ := blankLines(s, pos)
	name, next, ok := heading(programHeading)(s, next)
	if !ok {
		return nil, pos, false
	}
	exercises, next, _ := many(exercise)(s, next)
	return routine.NewExerciseProgram(name, exercises), next, true
}

// document matches the whole input: programs, trailing whitespace, end.
func document(s *state, pos int) (*routine.Program, int, bool) {
	programs, next, _ := many(exerciseProgram)(s, pos)
	_, next, _ = blankLines(s, next)
	// spaces are only allowed at the very end; otherwise the failure belongs
	// at the start of the line
	if end := skipHSpace(s, next); end == len(s.src) {
		next = end
	}
	if _, next, ok := eof(s, next); !ok {
		return nil, next, false
	}
	return routine.NewProgram(programs), next, true
}
