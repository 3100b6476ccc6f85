package executor

import (
	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/routine"
)

// ExecuteExercise walks the exercise's lifecycle events and runs every
// matching action in declaration order. The current set and repetition on
// c follow the walk.
func (e *Executor) ExecuteExercise(c *Context, ex *routine.Exercise) error {
	invariant.NotNil(c, "execution context")
	invariant.NotNil(ex, "exercise")

	c.SetExercise(ex)
	e.logger.Debug("exercise", "name", ex.Name(), "sets", ex.Sets(), "reps", ex.Repetitions())

	for ev := range ex.Events() {
		switch ev.Kind {
		case routine.BeforeSet:
			c.SetSet(ev.Number)
		case routine.BeforeRepetition:
			c.SetRepetition(ev.Number)
		}
		if err := e.runInOrder(c, ex.ActionsFor(ev)); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteProgram runs each exercise of p in order. Exercises the
// outstanding skip-ahead fully covers are not run.
func (e *Executor) ExecuteProgram(c *Context, p *routine.ExerciseProgram) error {
	invariant.NotNil(c, "execution context")
	invariant.NotNil(p, "exercise program")

	e.logger.Info("program started", "name", p.Name(), "duration", p.Duration(), "skip", c.SkipAhead())
	for _, ex := range p.Exercises() {
		if c.IsCancelled() {
			return ErrCancelled
		}
		if skipped(c, ex.Duration()) {
			c.SetExercise(ex)
			c.AddProgress(ex.Duration())
			continue
		}
		if err := e.ExecuteExercise(c, ex); err != nil {
			if IsCancelled(err) {
				e.logger.Info("program cancelled", "name", p.Name(), "progress", c.Progress())
			}
			return err
		}
	}
	e.logger.Info("program finished", "name", p.Name(), "progress", c.Progress())
	return nil
}
