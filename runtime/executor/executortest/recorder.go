// Package executortest provides fake collaborators for tests that run
// routines without audio, speech or wall-clock delays.
package executortest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aledsdavies/cadence/core/types"
)

// Recorder implements executor.Speaker, executor.AudioPlayer and
// executor.Delayer. Every call returns immediately and is recorded as
// "say <text>", "play <resource>" or "delay <duration>".
//
// Hooks run before a call is recorded; an error from a hook fails the call
// without recording it. Set hooks before the run starts.
type Recorder struct {
	OnSpeak func(ctx context.Context, text string) error
	OnPlay  func(ctx context.Context, resource string) error
	OnDelay func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	calls []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.OnSpeak != nil {
		if err := r.OnSpeak(ctx, text); err != nil {
			return err
		}
	}
	r.record("say " + text)
	return nil
}

func (r *Recorder) Play(ctx context.Context, resource string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.OnPlay != nil {
		if err := r.OnPlay(ctx, resource); err != nil {
			return err
		}
	}
	r.record("play " + resource)
	return nil
}

func (r *Recorder) Delay(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.OnDelay != nil {
		if err := r.OnDelay(ctx, d); err != nil {
			return err
		}
	}
	r.record("delay " + types.Format(d))
	return nil
}

func (r *Recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, call := range r.Calls() {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
