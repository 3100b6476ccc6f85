package executor

import (
	"context"
	"errors"
	"time"
)

// ErrCancelled is returned when a run stops because it was cancelled. It is
// a normal stop condition, not a failure.
var ErrCancelled = errors.New("run cancelled")

// IsCancelled reports whether err means the run was cancelled, including
// context.Canceled surfaced by a collaborator.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Speaker speaks text aloud. Speak returns once speaking finished or ctx is
// cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// AudioPlayer plays an audio resource identified by name or path.
type AudioPlayer interface {
	Play(ctx context.Context, resource string) error
}

// Delayer waits for d of wall-clock time, or until ctx is cancelled.
type Delayer interface {
	Delay(ctx context.Context, d time.Duration) error
}
