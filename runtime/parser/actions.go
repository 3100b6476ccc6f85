package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/aledsdavies/cadence/core/routine"
)

// Action grammar. Every action sits on its own line:
//
//	<2*level spaces>* <action>
//
// Leaf actions:
//
//	wait for <duration> [with prompt <string>]
//	break for <duration>
//	prepare for <duration>
//	say <string>
//	play <string>
//	metronome at <duration>[*|-] {, <duration>[*|-]}
//
// Block actions end in a colon and own the deeper-indented lines below them:
//
//	sequence:
//	parallel:
//	don't wait:

var (
	waitKeyword       = fold("wait for")
	withPromptKeyword = fold("with prompt")
	breakKeyword      = fold("break for")
	prepareKeyword    = fold("prepare for")
	sayKeyword        = fold("say")
	playKeyword       = fold("play")
	metronomeKeyword  = fold("metronome at")
	sequenceKeyword   = fold("sequence")
	parallelKeyword   = fold("parallel")
	dontWaitKeyword   = choice(fold("don't wait"), mapTo(fold("don’t wait"), func(string) string { return "don't wait" }))
	bullet            = text("*")
	colon             = text(":")
)

// keywordThen matches a keyword, mandatory whitespace and then p.
func keywordThen[T any](keyword Parser[string], p Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		var zero T
		_, next, ok := keyword(s, pos)
		if !ok {
			return zero, pos, false
		}
		if _, next, ok = hspace1(s, next); !ok {
			return zero, pos, false
		}
		v, next, ok := p(s, next)
		if !ok {
			return zero, pos, false
		}
		return v, next, true
	}
}

func waitAction(s *state, pos int) (routine.Action, int, bool) {
	d, next, ok := keywordThen(waitKeyword, duration)(s, pos)
	if !ok {
		return nil, pos, false
	}
	if _, afterSpace, ok := hspace1(s, next); ok {
		if prompt, afterPrompt, ok := keywordThen(withPromptKeyword, stringLiteral)(s, afterSpace); ok {
			return routine.NewWaitWithPrompt(d, prompt), afterPrompt, true
		}
	}
	return routine.NewWait(d), next, true
}

var (
	breakAction = mapTo(keywordThen(breakKeyword, duration), func(d time.Duration) routine.Action {
		return routine.NewBreak(d)
	})
	prepareAction = mapTo(keywordThen(prepareKeyword, duration), func(d time.Duration) routine.Action {
		return routine.NewPrepare(d)
	})
	sayAction = mapTo(keywordThen(sayKeyword, stringLiteral), func(text string) routine.Action {
		return routine.NewSay(text)
	})
)

func playAction(s *state, pos int) (routine.Action, int, bool) {
	resource, next, ok := keywordThen(playKeyword, stringLiteral)(s, pos)
	if !ok {
		return nil, pos, false
	}
	if strings.TrimSpace(resource) == "" {
		s.reject(pos, "audio resource must not be empty")
		return nil, pos, false
	}
	return routine.NewAudioCue(resource), next, true
}

func tick(s *state, pos int) (routine.Tick, int, bool) {
	d, next, ok := duration(s, pos)
	if !ok {
		return routine.Tick{}, pos, false
	}
	t := routine.Tick{PeriodBefore: d, Kind: routine.TickClick}
	if r, ok := s.peek(next); ok {
		switch r {
		case '*':
			t.Kind = routine.TickBell
			next++
		case '-':
			t.Kind = routine.TickNone
			next++
		}
	}
	return t, next, true
}

var metronomeAction = mapTo(keywordThen(metronomeKeyword, sepBy1(tick, comma)), func(ticks []routine.Tick) routine.Action {
	return routine.NewMetronome(ticks...)
})

var leafAction = label("action", choice(
	waitAction,
	breakAction,
	prepareAction,
	sayAction,
	playAction,
	metronomeAction,
))

// blockAction matches a block keyword and the nested list below it.
func blockAction(level int) Parser[routine.Action] {
	keyword := label("action", choice(sequenceKeyword, parallelKeyword, dontWaitKeyword))
	return func(s *state, pos int) (routine.Action, int, bool) {
		kind, next, ok := keyword(s, pos)
		if !ok {
			return nil, pos, false
		}
		if _, next, ok = colon(s, skipHSpace(s, next)); !ok {
			return nil, pos, false
		}
		if _, next, ok = lineEnd(s, next); !ok {
			return nil, pos, false
		}
		children, next, ok := actionList(level+1)(s, next)
		if !ok {
			return nil, pos, false
		}

		switch kind {
		case "sequence":
			return routine.NewSequence(children...), next, true
		case "parallel":
			return routine.NewParallel(children...), next, true
		default:
			return routine.NewFireAndForget(routine.NewSequence(children...)), next, true
		}
	}
}

// actionLine matches one bulleted action at the given nesting level,
// including its line ending and, for blocks, its nested lines.
func actionLine(level int) Parser[routine.Action] {
	indent := text(strings.Repeat("  ", level))
	return func(s *state, pos int) (routine.Action, int, bool) {
		_, next, ok := indent(s, pos)
		if !ok {
			return nil, pos, false
		}
		if _, next, ok = bullet(s, next); !ok {
			return nil, pos, false
		}
		if _, next, ok = hspace1(s, next); !ok {
			return nil, pos, false
		}

		if a, afterLeaf, ok := leafAction(s, next); ok {
			if _, afterLine, ok := lineEnd(s, afterLeaf); ok {
				return a, afterLine, true
			}
		}
		a, afterBlock, ok := blockAction(level)(s, next)
		if !ok {
			return nil, pos, false
		}
		return a, afterBlock, true
	}
}

// actionList matches zero or more action lines at level. A blank line or a
// line at any other indentation ends the list.
func actionList(level int) Parser[[]routine.Action] {
	return func(s *state, pos int) ([]routine.Action, int, bool) {
		if level > s.config.maxDepth {
			s.reject(pos, fmt.Sprintf("actions nested too deeply (limit %d)", s.config.maxDepth))
			return nil, pos, false
		}
		return many(actionLine(level))(s, pos)
	}
}
