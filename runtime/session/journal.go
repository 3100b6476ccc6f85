package session

import (
	"context"
	"sync"
	"time"

	"github.com/aledsdavies/cadence/runtime/history"
)

// Journal failures never fail the run; they are logged.

func (s *Session) begin(ctx context.Context, from time.Duration) {
	if s.journal == nil {
		return
	}
	err := s.journal.Begin(ctx, history.Run{
		ID:          s.id,
		Program:     s.program.Name(),
		Fingerprint: s.fingerprint,
		StartedAt:   time.Now(),
		Status:      history.StatusRunning,
		Position:    from,
		Duration:    s.program.Duration(),
	})
	if err != nil {
		s.logger.Warn("history unavailable", "error", err)
	}
}

// startCheckpoints records the position every checkpoint interval until the
// returned function is called. The returned function waits for an
// in-flight checkpoint to finish.
func (s *Session) startCheckpoints(ctx context.Context) (stop func()) {
	if s.journal == nil {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.checkpoint)
		defer ticker.Stop()

		last := time.Duration(-1)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				pos := s.Position()
				if pos == last {
					continue
				}
				last = pos
				if err := s.journal.Checkpoint(ctx, s.id, pos); err != nil {
					s.logger.Warn("checkpoint failed", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

func (s *Session) finish(ctx context.Context, result Result) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Finish(ctx, s.id, result.Outcome.status(), result.Position); err != nil {
		s.logger.Warn("history unavailable", "error", err)
	}
}
