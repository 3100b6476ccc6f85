package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/runtime/executor/executortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParallelProgressIsNotCompounded verifies that running branches
// concurrently only moves progress by the longest branch.
func TestParallelProgressIsNotCompounded(t *testing.T) {
	t.Parallel()

	rec := executortest.NewRecorder()
	c := NewContext(context.Background(), 0)

	p := routine.NewParallel(waitsOf(1, 2, 3, 4)...)
	require.NoError(t, newTestExecutor(rec).Execute(c, p))

	assert.Equal(t, 4*time.Second, c.Progress())
	assert.Equal(t, 10, rec.Count("delay 1s"), "every branch still waits its full length")
}

// TestParallelSkipAheadDropsCoveredBranches verifies that only branches
// longer than the skip-ahead run at all.
func TestParallelSkipAheadDropsCoveredBranches(t *testing.T) {
	t.Parallel()

	rec := executortest.NewRecorder()
	c := NewContext(context.Background(), 70*time.Second)

	p := routine.NewParallel(waitsOf(60, 10, 71)...)
	require.NoError(t, newTestExecutor(rec).Execute(c, p))

	assert.Equal(t, []string{"delay 1s"}, rec.Calls())
	assert.Equal(t, 71*time.Second, c.Progress())
	assert.Equal(t, time.Duration(0), c.SkipAhead())
}

func TestParallelShadowsShareSkipAhead(t *testing.T) {
	t.Parallel()

	rec := executortest.NewRecorder()
	c := NewContext(context.Background(), 2500*time.Millisecond)

	p := routine.NewParallel(waitsOf(1, 3, 4)...)
	require.NoError(t, newTestExecutor(rec).Execute(c, p))

	// 4s branch: 1s + 0.5s after the skip; 3s branch: 0.5s
	assert.Equal(t, 1, rec.Count("delay 1s"))
	assert.Equal(t, 2, rec.Count("delay 0.5s"))
	assert.Equal(t, 4*time.Second, c.Progress())
}

func TestParallelFullyCoveredRecordsDuration(t *testing.T) {
	t.Parallel()

	rec := executortest.NewRecorder()
	c := NewContext(context.Background(), 10*time.Second)

	p := routine.NewParallel(waitsOf(3, 5)...)
	require.NoError(t, newTestExecutor(rec).Execute(c, p))

	assert.Empty(t, rec.Calls())
	assert.Equal(t, 5*time.Second, c.Progress())
	assert.Equal(t, 5*time.Second, c.SkipAhead())
}

func TestParallelBranchFailure(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("speaker unplugged")
	rec := executortest.NewRecorder()
	rec.OnPlay = func(context.Context, string) error { return errBroken }
	c := NewContext(context.Background(), 0)

	p := routine.NewParallel(
		routine.NewWait(3*time.Second),
		routine.NewSequence(routine.NewAudioCue("gong")),
	)
	err := newTestExecutor(rec).Execute(c, p)

	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, 3, rec.Count("delay"))
}

func TestParallelFollowsPause(t *testing.T) {
	t.Parallel()

	rec := executortest.NewRecorder()
	c := NewContext(context.Background(), 0)
	c.SetPaused(true)

	done := make(chan error, 1)
	go func() {
		done <- newTestExecutor(rec).Execute(c, routine.NewParallel(waitsOf(2, 1)...))
	}()

	assert.Never(t, func() bool { return rec.Count("delay") > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	c.SetPaused(false)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("parallel did not resume")
	}
	assert.Equal(t, 3, rec.Count("delay"))
	assert.Equal(t, 2*time.Second, c.Progress())
}
