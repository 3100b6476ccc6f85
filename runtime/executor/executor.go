// Package executor runs routine actions against an execution Context.
//
// Every action variant is handled by one case of Execute's type switch.
// Leaf actions call out to the Speaker, AudioPlayer and Delayer
// collaborators; composite actions recurse. Skip-ahead is applied before
// each child: a child that fits entirely inside the remaining skip-ahead is
// not run, its duration is recorded as progress instead.
package executor

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/routine"
)

// DefaultChunk is the longest single delay a Wait makes before checking for
// pause and cancellation again.
const DefaultChunk = time.Second

// Config configures the executor
type Config struct {
	Speaker Speaker
	Player  AudioPlayer
	Delayer Delayer
	Logger  *slog.Logger  // nil discards
	Chunk   time.Duration // 0 means DefaultChunk
}

// Executor interprets actions. It is stateless apart from tracking
// background actions, so one Executor may serve many runs.
type Executor struct {
	speaker Speaker
	player  AudioPlayer
	delayer Delayer
	logger  *slog.Logger
	chunk   time.Duration

	background sync.WaitGroup
}

// New creates an executor. Missing collaborators are programming errors and
// panic here rather than during a run.
func New(config Config) *Executor {
	invariant.NotNil(config.Speaker, "speaker")
	invariant.NotNil(config.Player, "audio player")
	invariant.NotNil(config.Delayer, "delayer")
	invariant.NonNegativeDuration(config.Chunk, "delay chunk")

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	chunk := config.Chunk
	if chunk == 0 {
		chunk = DefaultChunk
	}

	return &Executor{
		speaker: config.Speaker,
		player:  config.Player,
		delayer: config.Delayer,
		logger:  logger,
		chunk:   chunk,
	}
}

// Wait blocks until every background action started by a "don't wait"
// block has finished.
func (e *Executor) Wait() {
	e.background.Wait()
}

// Execute runs action against c. It returns ErrCancelled if the run was
// cancelled, or the first collaborator failure.
func (e *Executor) Execute(c *Context, action routine.Action) error {
	invariant.NotNil(c, "execution context")
	invariant.NotNil(action, "action")

	switch a := action.(type) {
	case *routine.Sequence:
		return e.runInOrder(c, a.Children())

	case *routine.Parallel:
		return e.executeParallel(c, a)

	case *routine.Wait:
		return e.executeWait(c, a.Duration())

	case *routine.Say:
		if err := e.checkpoint(c); err != nil {
			return err
		}
		e.logger.Debug("say", "text", a.Text())
		if err := e.speaker.Speak(c.Context(), a.Text()); err != nil {
			return collaboratorError(c, fmt.Sprintf("say %q", a.Text()), err)
		}
		return nil

	case *routine.AudioCue:
		if err := e.checkpoint(c); err != nil {
			return err
		}
		e.logger.Debug("play", "resource", a.Resource())
		if err := e.player.Play(c.Context(), a.Resource()); err != nil {
			return collaboratorError(c, fmt.Sprintf("play %q", a.Resource()), err)
		}
		return nil

	case *routine.Metronome:
		return e.Execute(c, a.Body())

	case *routine.Break:
		return e.Execute(c, a.Body())

	case *routine.Prepare:
		return e.Execute(c, a.Body())

	case *routine.WaitWithPrompt:
		return e.Execute(c, a.Body())

	case *routine.FireAndForget:
		e.startBackground(c, a.Inner())
		return nil

	default:
		invariant.Invariant(false, "unknown action type: %T", action)
		return nil
	}
}

// runInOrder runs actions one after another, skipping any action the
// outstanding skip-ahead fully covers.
func (e *Executor) runInOrder(c *Context, actions []routine.Action) error {
	for _, action := range actions {
		if c.IsCancelled() {
			return ErrCancelled
		}
		if skipped(c, action.Duration()) {
			c.AddProgress(action.Duration())
			continue
		}
		if err := e.Execute(c, action); err != nil {
			return err
		}
	}
	return nil
}

// skipped reports whether a unit of the given duration lies entirely inside
// the outstanding skip-ahead.
func skipped(c *Context, d time.Duration) bool {
	skip := c.SkipAhead()
	return skip > 0 && skip >= d
}

// checkpoint is where leaf actions observe cancellation and pause.
func (e *Executor) checkpoint(c *Context) error {
	if c.IsCancelled() {
		return ErrCancelled
	}
	return c.WaitWhilePaused()
}

func (e *Executor) executeWait(c *Context, delay time.Duration) error {
	remaining := delay
	if skip := c.SkipAhead(); skip > 0 && remaining > 0 {
		consumed := min(skip, remaining)
		remaining -= consumed
		c.AddProgress(consumed)
	}

	for remaining > 0 {
		if err := e.checkpoint(c); err != nil {
			return err
		}
		chunk := min(remaining, e.chunk)
		if err := e.delayer.Delay(c.Context(), chunk); err != nil {
			return collaboratorError(c, "delay", err)
		}
		remaining -= chunk
		c.AddProgress(chunk)
	}
	return nil
}

// startBackground runs inner on a shadow fed by the run's root context, so
// it outlives the branch or parallel that started it.
func (e *Executor) startBackground(c *Context, inner routine.Action) {
	shadow := c.shadow()
	unlink := linkInto(c.root, shadow)

	e.background.Add(1)
	go func() {
		defer e.background.Done()
		defer shadow.Cancel()
		defer unlink()

		if err := e.Execute(shadow, inner); err != nil && !IsCancelled(err) {
			e.logger.Error("background action failed", "action", fmt.Sprintf("%T", inner), "error", err)
		}
	}()
}

func collaboratorError(c *Context, what string, err error) error {
	if c.IsCancelled() || IsCancelled(err) {
		return ErrCancelled
	}
	return fmt.Errorf("%s: %w", what, err)
}
