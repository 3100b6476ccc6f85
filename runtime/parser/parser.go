// Package parser compiles routine markup into a routine.Program.
//
// The grammar is built from small generic combinators (see Parser). Every
// alternative that fails records what it expected at the position it
// reached; when the document as a whole fails, the furthest such position
// becomes the ParseError. No partial result is ever returned.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aledsdavies/cadence/core/routine"
)

// Parse parses a whole document. The returned error is always a *ParseError.
func Parse(input string, opts ...ParserOpt) (*routine.Program, error) {
	config := newConfig(opts)

	var start time.Time
	if config.telemetry >= TelemetryTiming {
		start = time.Now()
	}

	s := newState(input, config)
	program, _, ok := document(s, 0)
	ok = ok && s.rejected == nil

	if config.telemetry >= TelemetryBasic && config.sink != nil {
		t := ParseTelemetry{Runes: len(s.src), Lines: len(splitLines(input)), Failed: !ok}
		if ok {
			t.Programs = len(program.ExercisePrograms())
			for _, ep := range program.ExercisePrograms() {
				t.Exercises += len(ep.Exercises())
			}
		}
		if config.telemetry >= TelemetryTiming {
			t.ParseTime = time.Since(start)
		}
		*config.sink = t
	}

	if !ok {
		return nil, newParseError(s)
	}
	return program, nil
}

// ParseConstraint parses a standalone constraint expression such as
// "^1..2..last".
func ParseConstraint(input string) (routine.Constraint, error) {
	return parseWhole(input, constraint)
}

// ParseAction parses a single action line body such as "break for 30s".
// Block actions are not accepted since they need nested lines.
func ParseAction(input string) (routine.Action, error) {
	return parseWhole(input, leafAction)
}

// ParseDuration parses a standalone duration literal such as "1m 30s", for
// command line flags and config values. It accepts exactly what documents
// accept; surrounding whitespace is ignored.
func ParseDuration(input string) (time.Duration, error) {
	d, err := parseWhole(strings.TrimSpace(input), duration)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return 0, fmt.Errorf("invalid duration %q: %s", input, perr.Summary())
		}
		return 0, err
	}
	return d, nil
}

func parseWhole[T any](input string, p Parser[T]) (T, error) {
	s := newState(input, newConfig(nil))
	v, next, ok := p(s, 0)
	if ok {
		next = skipHSpace(s, next)
		if _, _, ok = eof(s, next); ok && s.rejected == nil {
			return v, nil
		}
	}
	var zero T
	return zero, newParseError(s)
}
