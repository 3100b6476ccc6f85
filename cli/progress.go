package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/core/types"
	"github.com/aledsdavies/cadence/runtime/executor"
	"github.com/aledsdavies/cadence/runtime/session"
)

// progressDisplay prints one line per exercise, set, pause and seek.
type progressDisplay struct {
	mu       sync.Mutex
	w        io.Writer
	program  *routine.ExerciseProgram
	useColor bool
}

func newProgressDisplay(w io.Writer, program *routine.ExerciseProgram, useColor bool) *progressDisplay {
	return &progressDisplay{w: w, program: program, useColor: useColor}
}

func (d *progressDisplay) update(u session.Update) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := u.State
	switch u.Kind {
	case executor.ChangeExercise:
		if state.Exercise == nil {
			return
		}
		// exercises skipped over while seeking are not announced
		if state.SkipAhead > 0 {
			return
		}
		d.printf("%s %s %s\n",
			Colorize("▶", ColorGreen, d.useColor), state.Exercise.Name(),
			Colorize("at "+types.Format(state.Progress), ColorGray, d.useColor))
	case executor.ChangeSet:
		if state.Exercise == nil || state.Set == 0 || state.SkipAhead > 0 {
			return
		}
		d.printf("  set %d of %d\n", state.Set, state.Exercise.Sets())
	case executor.ChangePaused:
		if state.Paused {
			d.printf("%s paused at %s\n", Colorize("⏸", ColorYellow, d.useColor), types.Format(state.Progress))
		} else {
			d.printf("%s resumed\n", Colorize("▶", ColorGreen, d.useColor))
		}
	case executor.ChangeCancelled:
		d.printf("%s stopping\n", Colorize("■", ColorRed, d.useColor))
	}
}

func (d *progressDisplay) finish(result session.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	color := ColorGreen
	switch result.Outcome {
	case session.OutcomeCancelled:
		color = ColorYellow
	case session.OutcomeFailed:
		color = ColorRed
	}
	d.printf("%s %s of %s\n",
		Colorize(result.Outcome.String(), color, d.useColor),
		types.Format(result.Position), types.Format(d.program.Duration()))
}

func (d *progressDisplay) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.w, format, args...)
}
