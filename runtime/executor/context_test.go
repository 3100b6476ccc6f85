package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProgressConsumesSkipAhead(t *testing.T) {
	t.Parallel()

	c := NewContext(context.Background(), 3*time.Second)

	c.AddProgress(2 * time.Second)
	assert.Equal(t, 2*time.Second, c.Progress())
	assert.Equal(t, time.Second, c.SkipAhead())

	c.AddProgress(5 * time.Second)
	assert.Equal(t, 7*time.Second, c.Progress())
	assert.Equal(t, time.Duration(0), c.SkipAhead(), "skip-ahead never drops below zero")

	assert.Panics(t, func() { c.AddProgress(-time.Second) })
}

func TestNewContextRejectsNegativeSkip(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewContext(context.Background(), -time.Second) })
}

func TestExercisePositionResets(t *testing.T) {
	t.Parallel()

	first := routine.NewExercise("first", 1, 1, nil)
	second := routine.NewExercise("second", 1, 1, nil)
	c := NewContext(context.Background(), 0)

	c.SetExercise(first)
	c.SetSet(2)
	c.SetRepetition(3)
	c.AddProgress(4 * time.Second)

	c.SetSet(3)
	assert.Equal(t, 0, c.CurrentRepetition(), "a new set restarts the repetition count")

	c.SetExercise(second)
	got := c.Snapshot()
	assert.Same(t, second, got.Exercise)
	assert.Equal(t, 0, got.Set)
	assert.Equal(t, 0, got.Repetition)
	assert.Equal(t, time.Duration(0), got.ExerciseProgress)
	assert.Equal(t, 4*time.Second, got.Progress)
}

func TestOnChange(t *testing.T) {
	t.Parallel()

	c := NewContext(context.Background(), 0)

	var mu sync.Mutex
	var kinds []ChangeKind
	remove := c.OnChange(func(change Change) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, change.Kind)
	})

	c.SetPaused(true)
	c.SetPaused(true)
	c.AddProgress(0)
	c.AddProgress(time.Second)
	c.SetPaused(false)

	mu.Lock()
	assert.Equal(t, []ChangeKind{ChangePaused, ChangeProgress, ChangePaused}, kinds)
	mu.Unlock()

	c.Cancel()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) == 4 && kinds[3] == ChangeCancelled
	}, time.Second, 5*time.Millisecond)

	remove()
	c.AddProgress(time.Second)
	mu.Lock()
	assert.Len(t, kinds, 4)
	mu.Unlock()
}

func TestChangeCarriesSnapshot(t *testing.T) {
	t.Parallel()

	c := NewContext(context.Background(), 0)
	var got Snapshot
	c.OnChange(func(change Change) { got = change.State })

	c.AddProgress(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, got.Progress)
	assert.False(t, got.Paused)
	assert.False(t, got.Cancelled)
}

func TestWaitWhilePaused(t *testing.T) {
	t.Parallel()

	c := NewContext(context.Background(), 0)
	require.NoError(t, c.WaitWhilePaused())

	c.SetPaused(true)
	done := make(chan error, 1)
	go func() { done <- c.WaitWhilePaused() }()

	select {
	case <-done:
		t.Fatal("WaitWhilePaused returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	c.SetPaused(false)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not observe resume")
	}

	c.SetPaused(true)
	go func() { done <- c.WaitWhilePaused() }()
	c.Cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not observe cancellation")
	}
}

func TestShadowIsIsolated(t *testing.T) {
	t.Parallel()

	ex := routine.NewExercise("plank", 1, 1, nil)
	c := NewContext(context.Background(), 5*time.Second)
	c.SetExercise(ex)
	c.SetSet(1)
	c.SetPaused(true)

	s := c.shadow()
	assert.True(t, s.IsPaused())
	assert.Same(t, ex, s.CurrentExercise())
	assert.Equal(t, 1, s.CurrentSet())

	s.AddProgress(3 * time.Second)
	assert.Equal(t, 2*time.Second, s.SkipAhead())
	assert.Equal(t, time.Duration(0), c.Progress())
	assert.Equal(t, 5*time.Second, c.SkipAhead())

	c.Cancel()
	assert.False(t, s.IsCancelled(), "an unlinked shadow ignores the original's cancellation")
}

func TestLink(t *testing.T) {
	t.Parallel()

	a := NewContext(context.Background(), 0)
	b := NewContext(context.Background(), 0)
	unlink := link(a, b)

	a.SetPaused(true)
	assert.True(t, b.IsPaused())
	b.SetPaused(false)
	assert.False(t, a.IsPaused())

	b.Cancel()
	assert.Eventually(t, a.IsCancelled, time.Second, 5*time.Millisecond)

	unlink()
	c := NewContext(context.Background(), 0)
	d := NewContext(context.Background(), 0)
	unlink = link(c, d)
	unlink()
	c.SetPaused(true)
	assert.False(t, d.IsPaused())
}

func TestLinkIntoIsOneWay(t *testing.T) {
	t.Parallel()

	a := NewContext(context.Background(), 0)
	b := NewContext(context.Background(), 0)
	unlink := linkInto(a, b)
	defer unlink()

	b.SetPaused(true)
	assert.False(t, a.IsPaused())
	b.SetPaused(false)

	a.SetPaused(true)
	assert.True(t, b.IsPaused())

	b.Cancel()
	assert.Never(t, a.IsCancelled, 50*time.Millisecond, 10*time.Millisecond)

	c := NewContext(context.Background(), 0)
	d := NewContext(context.Background(), 0)
	defer linkInto(c, d)()
	c.Cancel()
	assert.Eventually(t, d.IsCancelled, time.Second, 5*time.Millisecond)
}

func TestChangeKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "progress", ChangeProgress.String())
	assert.Equal(t, "cancelled", ChangeCancelled.String())
	assert.Equal(t, "unknown", ChangeKind(99).String())
}
