package routine

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/types"
)

// Format renders a program back into markup. Parsing the result yields a
// program with the same structure.
//
// Format:
//
//	# <program>
//
//	## <exercise>
//	* <sets> sets x <reps> reps
//	* <matcher>:
//	  * <action>
func Format(p *Program) string {
	var b strings.Builder
	for i, ep := range p.programs {
		if i > 0 {
			b.WriteString("\n")
		}
		formatExerciseProgram(&b, ep)
	}
	return b.String()
}

func formatExerciseProgram(b *strings.Builder, ep *ExerciseProgram) {
	fmt.Fprintf(b, "# %s\n", ep.name)
	for _, ex := range ep.exercises {
		b.WriteString("\n")
		formatExercise(b, ex)
	}
}

func formatExercise(b *strings.Builder, ex *Exercise) {
	fmt.Fprintf(b, "## %s\n", ex.name)
	fmt.Fprintf(b, "* %d %s x %d %s\n", ex.sets, plural(ex.sets, "set"), ex.reps, plural(ex.reps, "rep"))
	for _, pair := range ex.pairs {
		fmt.Fprintf(b, "* %s:\n", FormatMatcher(pair.Matcher))
		// a matcher block's list is a sequence; anything else is a single action
		if seq, ok := pair.Action.(*Sequence); ok {
			formatActions(b, seq.children, 1)
		} else {
			formatActions(b, []Action{pair.Action}, 1)
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// FormatMatcher renders the head of a matcher block, without the colon.
func FormatMatcher(m EventMatcher) string {
	switch m := m.(type) {
	case *TypedMatcher:
		return matcherHead(m.Kind)
	case *NumberedMatcher:
		return matcherHead(m.Kind) + " " + m.Constraint.String()
	default:
		invariant.Invariant(false, "unknown matcher type: %T", m)
		return ""
	}
}

func matcherHead(kind EventKind) string {
	switch kind {
	case BeforeExercise:
		return "before"
	case AfterExercise:
		return "after"
	default:
		return kind.String()
	}
}

func formatActions(b *strings.Builder, actions []Action, level int) {
	indent := strings.Repeat("  ", level)
	for _, action := range actions {
		b.WriteString(indent)
		b.WriteString("* ")
		switch a := action.(type) {
		case *Sequence:
			b.WriteString("sequence:\n")
			formatActions(b, a.children, level+1)
		case *Parallel:
			b.WriteString("parallel:\n")
			formatActions(b, a.children, level+1)
		case *FireAndForget:
			b.WriteString("don't wait:\n")
			if seq, ok := a.inner.(*Sequence); ok {
				formatActions(b, seq.children, level+1)
			} else {
				formatActions(b, []Action{a.inner}, level+1)
			}
		default:
			b.WriteString(FormatAction(action))
			b.WriteString("\n")
		}
	}
}

// FormatAction renders a leaf action on one line. Block actions render as
// their keyword only.
func FormatAction(action Action) string {
	switch a := action.(type) {
	case *Wait:
		return "wait for " + types.Format(a.delay)
	case *WaitWithPrompt:
		return "wait for " + types.Format(a.length) + " with prompt " + Quote(a.prompt)
	case *Break:
		return "break for " + types.Format(a.length)
	case *Prepare:
		return "prepare for " + types.Format(a.length)
	case *Say:
		return "say " + Quote(a.text)
	case *AudioCue:
		return "play " + Quote(a.resource)
	case *Metronome:
		ticks := make([]string, len(a.ticks))
		for i, tick := range a.ticks {
			ticks[i] = types.Format(tick.PeriodBefore)
			switch tick.Kind {
			case TickBell:
				ticks[i] += "*"
			case TickNone:
				ticks[i] += "-"
			}
		}
		return "metronome at " + strings.Join(ticks, ", ")
	case *Sequence:
		return "sequence:"
	case *Parallel:
		return "parallel:"
	case *FireAndForget:
		return "don't wait:"
	default:
		invariant.Invariant(false, "unknown action type: %T", action)
		return ""
	}
}

// Quote renders s as a double-quoted string literal, escaping the delimiter
// and backslashes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Shape is the structural outline of a program: names, counts and how many
// actions each matcher block lists.
type Shape struct {
	Programs []ProgramShape
}

type ProgramShape struct {
	Name      string
	Exercises []ExerciseShape
}

type ExerciseShape struct {
	Name         string
	Sets         int
	Repetitions  int
	Matchers     []string
	ActionCounts []int
}

// Outline returns the structural shape of p.
func Outline(p *Program) Shape {
	shape := Shape{Programs: make([]ProgramShape, 0, len(p.programs))}
	for _, ep := range p.programs {
		ps := ProgramShape{Name: ep.name, Exercises: make([]ExerciseShape, 0, len(ep.exercises))}
		for _, ex := range ep.exercises {
			es := ExerciseShape{Name: ex.name, Sets: ex.sets, Repetitions: ex.reps}
			for _, pair := range ex.pairs {
				es.Matchers = append(es.Matchers, FormatMatcher(pair.Matcher))
				count := 1
				if seq, ok := pair.Action.(*Sequence); ok {
					count = len(seq.children)
				}
				es.ActionCounts = append(es.ActionCounts, count)
			}
			ps.Exercises = append(ps.Exercises, es)
		}
		shape.Programs = append(shape.Programs, ps)
	}
	return shape
}
