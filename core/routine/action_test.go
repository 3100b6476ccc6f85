package routine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceDurationIsSum(t *testing.T) {
	tests := []struct {
		name     string
		children []Action
		want     time.Duration
	}{
		{"empty", nil, 0},
		{"single", []Action{NewWait(3 * time.Second)}, 3 * time.Second},
		{"mixed", []Action{NewWait(time.Second), NewSay("go"), NewWait(2500 * time.Millisecond)}, 3500 * time.Millisecond},
		{"nested", []Action{NewSequence(NewWait(time.Second), NewWait(time.Second)), NewWait(time.Second)}, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSequence(tt.children...).Duration())
		})
	}
}

func TestParallelDurationIsMax(t *testing.T) {
	tests := []struct {
		name     string
		children []Action
		want     time.Duration
	}{
		{"empty", nil, 0},
		{"single", []Action{NewWait(time.Second)}, time.Second},
		{"longest wins", []Action{
			NewWait(1 * time.Second),
			NewWait(4 * time.Second),
			NewWait(2 * time.Second),
			NewWait(3 * time.Second),
		}, 4 * time.Second},
		{"zero duration children", []Action{NewSay("a"), NewAudioCue("b")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewParallel(tt.children...).Duration())
		})
	}
}

func TestFireAndForgetHasNoDuration(t *testing.T) {
	inner := NewWait(3 * time.Second)
	f := NewFireAndForget(inner)

	assert.Equal(t, time.Duration(0), f.Duration())
	assert.Same(t, inner, f.Inner())
}

func TestBreakExpansion(t *testing.T) {
	t.Run("five seconds gets a ready prompt", func(t *testing.T) {
		b := NewBreak(5 * time.Second)
		require.Equal(t, 5*time.Second, b.Duration())

		children := b.Body().Children()
		require.Len(t, children, 4)
		assert.Equal(t, BreakPrompt, children[0].(*Say).Text())
		assert.Equal(t, 3*time.Second, children[1].Duration())
		assert.Equal(t, ReadyPrompt, children[2].(*Say).Text())
		assert.Equal(t, 2*time.Second, children[3].Duration())
	})

	t.Run("one second has no ready prompt", func(t *testing.T) {
		b := NewBreak(time.Second)
		children := b.Body().Children()
		require.Len(t, children, 2)
		assert.Equal(t, BreakPrompt, children[0].(*Say).Text())
		assert.Equal(t, time.Second, children[1].Duration())
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		children := NewPrepare(ReadyThreshold).Body().Children()
		require.Len(t, children, 4)
		assert.Equal(t, PreparePrompt, children[0].(*Say).Text())
		assert.Equal(t, time.Duration(0), children[1].Duration())
	})
}

func TestWaitWithPromptUsesCustomPrompt(t *testing.T) {
	w := NewWaitWithPrompt(10*time.Second, "hold the plank")
	assert.Equal(t, 10*time.Second, w.Duration())
	assert.Equal(t, "hold the plank", w.Prompt())
	assert.Equal(t, "hold the plank", w.Body().Children()[0].(*Say).Text())
}

func TestMetronomeExpansion(t *testing.T) {
	m := NewMetronome(
		Tick{PeriodBefore: 500 * time.Millisecond, Kind: TickClick},
		Tick{PeriodBefore: 500 * time.Millisecond, Kind: TickBell},
		Tick{PeriodBefore: time.Second, Kind: TickNone},
	)
	assert.Equal(t, 2*time.Second, m.Duration())

	children := m.Body().Children()
	require.Len(t, children, 5)
	assert.Equal(t, SoundClick, children[1].(*AudioCue).Resource())
	assert.Equal(t, SoundBell, children[3].(*AudioCue).Resource())
	assert.IsType(t, &Wait{}, children[4])
}

func TestConstructionRejectsInvalidInput(t *testing.T) {
	assert.Panics(t, func() { NewWait(-time.Second) })
	assert.Panics(t, func() { NewBreak(-time.Second) })
	assert.Panics(t, func() { NewAudioCue("") })
	assert.Panics(t, func() { NewMetronome(Tick{PeriodBefore: -1}) })
	assert.Panics(t, func() { NewSequence(nil) })
}

func TestChildrenAreOwnedExclusively(t *testing.T) {
	shared := NewWait(time.Second)
	NewSequence(shared)

	assert.Panics(t, func() { NewParallel(shared) })
	assert.Panics(t, func() { NewFireAndForget(shared) })

	twice := NewSay("x")
	assert.Panics(t, func() { NewSequence(twice, twice) })
}

func TestChildrenReturnsCopy(t *testing.T) {
	seq := NewSequence(NewWait(time.Second), NewWait(time.Second))
	children := seq.Children()
	children[0] = nil

	assert.NotNil(t, seq.Children()[0])
}
