package executor

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/core/types"
)

// ChangeKind identifies what changed on a Context.
type ChangeKind uint8

const (
	ChangeProgress ChangeKind = iota
	ChangePaused
	ChangeCancelled
	ChangeExercise
	ChangeSet
	ChangeRepetition
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeProgress:
		return "progress"
	case ChangePaused:
		return "paused"
	case ChangeCancelled:
		return "cancelled"
	case ChangeExercise:
		return "exercise"
	case ChangeSet:
		return "set"
	case ChangeRepetition:
		return "repetition"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after the context's state changed. State
// is a snapshot taken right after the change.
type Change struct {
	Kind  ChangeKind
	State Snapshot
}

// Snapshot is a consistent copy of a Context's observable state.
type Snapshot struct {
	Progress         time.Duration
	ExerciseProgress time.Duration
	SkipAhead        time.Duration
	Exercise         *routine.Exercise
	Set              int
	Repetition       int
	Paused           bool
	Cancelled        bool
}

// Context is the shared state of one run: cancellation, pause, progress and
// the skip-ahead still to fast-forward through. Progress only moves through
// AddProgress.
//
// A Context is safe for concurrent use. Parallel branches other than the
// longest run against shadow contexts so their progress stays local.
type Context struct {
	ctx    context.Context
	cancel context.CancelFunc
	root   *Context // the run's context; shadows inherit it

	mu               sync.Mutex
	paused           bool
	pauseChanged     chan struct{} // closed and replaced on every pause toggle
	progress         time.Duration
	exerciseProgress time.Duration
	skipAhead        time.Duration
	exercise         *routine.Exercise
	set              int
	repetition       int
	listeners        map[int]func(Change)
	nextListener     int
}

// NewContext creates the context for one run, seeded with the routine time
// to skip. Cancelling parent cancels the run.
func NewContext(parent context.Context, skipAhead time.Duration) *Context {
	invariant.NotNil(parent, "parent context")
	invariant.NonNegativeDuration(skipAhead, "skip-ahead")

	ctx, cancel := context.WithCancel(parent)
	c := &Context{
		ctx:          ctx,
		cancel:       cancel,
		pauseChanged: make(chan struct{}),
		skipAhead:    skipAhead,
		listeners:    make(map[int]func(Change)),
	}
	c.root = c
	context.AfterFunc(ctx, func() { c.notify(ChangeCancelled) })
	return c
}

// shadow creates an isolated context seeded with c's skip-ahead, pause state
// and current exercise/set/repetition. Nothing is linked yet.
func (c *Context) shadow() *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := NewContext(context.WithoutCancel(c.ctx), c.skipAhead)
	s.root = c.root
	s.paused = c.paused
	s.exercise = c.exercise
	s.set = c.set
	s.repetition = c.repetition
	return s
}

// Context returns the cancellation signal handed to collaborators.
func (c *Context) Context() context.Context { return c.ctx }

// Done is closed once the run is cancelled.
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Cancel cancels the run. It is idempotent.
func (c *Context) Cancel() { c.cancel() }

// IsCancelled reports whether the run was cancelled.
func (c *Context) IsCancelled() bool { return c.ctx.Err() != nil }

// SetPaused pauses or resumes the run. Any WaitWhilePaused call re-checks
// the state immediately.
func (c *Context) SetPaused(paused bool) {
	c.mu.Lock()
	if c.paused == paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused
	close(c.pauseChanged)
	c.pauseChanged = make(chan struct{})
	c.mu.Unlock()

	c.notify(ChangePaused)
}

// IsPaused reports whether the run is paused.
func (c *Context) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// WaitWhilePaused returns immediately when the run is not paused. Otherwise
// it blocks until it is resumed, or returns ErrCancelled if the run is
// cancelled first.
func (c *Context) WaitWhilePaused() error {
	for {
		c.mu.Lock()
		paused, changed := c.paused, c.pauseChanged
		c.mu.Unlock()

		if c.IsCancelled() {
			return ErrCancelled
		}
		if !paused {
			return nil
		}

		select {
		case <-c.ctx.Done():
			return ErrCancelled
		case <-changed:
		}
	}
}

// AddProgress records delta of elapsed routine time. It is the only way
// progress and skip-ahead change: progress grows by delta and the remaining
// skip-ahead shrinks by it, never below zero.
func (c *Context) AddProgress(delta time.Duration) {
	invariant.NonNegativeDuration(delta, "progress delta")
	if delta == 0 {
		return
	}

	c.mu.Lock()
	c.progress = types.SaturatingAdd(c.progress, delta)
	c.exerciseProgress = types.SaturatingAdd(c.exerciseProgress, delta)
	c.skipAhead = types.ClampSub(c.skipAhead, delta)
	c.mu.Unlock()

	c.notify(ChangeProgress)
}

// Progress returns the routine time accounted for so far.
func (c *Context) Progress() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// ExerciseProgress returns the routine time accounted for since the
// current exercise started.
func (c *Context) ExerciseProgress() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exerciseProgress
}

// SkipAhead returns the routine time still to fast-forward through.
func (c *Context) SkipAhead() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipAhead
}

// SetExercise makes ex the current exercise. Exercise progress restarts at
// zero when the exercise changes.
func (c *Context) SetExercise(ex *routine.Exercise) {
	c.mu.Lock()
	if c.exercise == ex {
		c.mu.Unlock()
		return
	}
	c.exercise = ex
	c.exerciseProgress = 0
	c.set = 0
	c.repetition = 0
	c.mu.Unlock()

	c.notify(ChangeExercise)
}

// CurrentExercise returns the exercise being run, or nil before the first.
func (c *Context) CurrentExercise() *routine.Exercise {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exercise
}

// SetSet records the current set number.
func (c *Context) SetSet(n int) {
	c.mu.Lock()
	if c.set == n {
		c.mu.Unlock()
		return
	}
	c.set = n
	c.repetition = 0
	c.mu.Unlock()

	c.notify(ChangeSet)
}

// CurrentSet returns the current set number, or 0 outside a set.
func (c *Context) CurrentSet() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// SetRepetition records the current repetition number.
func (c *Context) SetRepetition(n int) {
	c.mu.Lock()
	if c.repetition == n {
		c.mu.Unlock()
		return
	}
	c.repetition = n
	c.mu.Unlock()

	c.notify(ChangeRepetition)
}

// CurrentRepetition returns the current repetition number, or 0 outside a
// repetition.
func (c *Context) CurrentRepetition() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repetition
}

// Snapshot returns a consistent copy of the observable state.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Context) snapshotLocked() Snapshot {
	return Snapshot{
		Progress:         c.progress,
		ExerciseProgress: c.exerciseProgress,
		SkipAhead:        c.skipAhead,
		Exercise:         c.exercise,
		Set:              c.set,
		Repetition:       c.repetition,
		Paused:           c.paused,
		Cancelled:        c.ctx.Err() != nil,
	}
}

// OnChange registers fn to be called after every state change, on the
// goroutine that made it. fn must not block. The returned function
// unregisters it.
func (c *Context) OnChange(fn func(Change)) (remove func()) {
	invariant.NotNil(fn, "change listener")

	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Context) notify(kind ChangeKind) {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), len(ids))
	for i, id := range ids {
		fns[i] = c.listeners[id]
	}
	change := Change{Kind: kind, State: c.snapshotLocked()}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// link propagates cancellation and pause between a and b in both
// directions until the returned function is called.
func link(a, b *Context) (unlink func()) {
	stopAB := context.AfterFunc(a.ctx, b.Cancel)
	stopBA := context.AfterFunc(b.ctx, a.Cancel)
	removeAB := a.OnChange(forwardPause(b))
	removeBA := b.OnChange(forwardPause(a))

	return func() {
		stopAB()
		stopBA()
		removeAB()
		removeBA()
	}
}

// linkInto propagates cancellation and pause from a into b only.
func linkInto(a, b *Context) (unlink func()) {
	stop := context.AfterFunc(a.ctx, b.Cancel)
	remove := a.OnChange(forwardPause(b))

	return func() {
		stop()
		remove()
	}
}

func forwardPause(to *Context) func(Change) {
	return func(change Change) {
		if change.Kind == ChangePaused {
			to.SetPaused(change.State.Paused)
		}
	}
}
