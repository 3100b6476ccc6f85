// Package media provides the speaker, audio player and delayer a routine
// run uses outside of tests.
package media

import (
	"context"
	"time"

	"github.com/aledsdavies/cadence/runtime/executor"
)

// Clock waits in real time.
type Clock struct{}

func (Clock) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Instant returns from every delay immediately. Dry runs use it to walk a
// routine without waiting.
type Instant struct{}

func (Instant) Delay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

var (
	_ executor.Delayer = Clock{}
	_ executor.Delayer = Instant{}
)
