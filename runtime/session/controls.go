package session

import (
	"time"

	"github.com/aledsdavies/cadence/core/types"
)

// Pause pauses the run. Waits stop at their next chunk boundary.
func (s *Session) Pause() { s.setPaused(true) }

// Resume resumes a paused run.
func (s *Session) Resume() { s.setPaused(false) }

// TogglePause flips the pause state and returns the new one.
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	paused := !s.paused
	s.mu.Unlock()

	s.setPaused(paused)
	return paused
}

// IsPaused reports whether the run is paused.
func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) setPaused(paused bool) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.paused = paused
	c := s.current
	s.mu.Unlock()

	if c != nil {
		c.SetPaused(paused)
	}
	s.logger.Debug("pause", "paused", paused)
}

// Cancel stops the run. Run returns with OutcomeCancelled. Cancelling before
// Run makes it return immediately.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.finished || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	c := s.current
	s.mu.Unlock()

	if c != nil {
		c.Cancel()
	}
}

// SkipTo restarts the run at routine time at, clamped to the program. It
// returns the position the run restarts from.
func (s *Session) SkipTo(at time.Duration) time.Duration {
	target := min(max(at, 0), s.program.Duration())

	s.mu.Lock()
	if s.finished || s.cancelled {
		s.mu.Unlock()
		return s.Position()
	}
	if !s.started {
		s.start, s.seeded = target, true
		s.mu.Unlock()
		return target
	}
	s.pending = &target
	c := s.current
	s.mu.Unlock()

	s.logger.Info("seek", "to", types.Format(target))
	if c != nil {
		c.Cancel()
	}
	return target
}

// SkipForward restarts the run at the start of the next exercise, or at the
// end of the program from the last one.
func (s *Session) SkipForward() time.Duration {
	i := s.program.ExerciseAt(s.Position())
	if i < 0 || i+1 >= len(s.program.Timeline()) {
		return s.SkipTo(s.program.Duration())
	}
	return s.SkipTo(s.program.Offset(i + 1))
}

// SkipBackward restarts the current exercise. Within the restart threshold
// of the exercise's start it goes to the previous exercise instead.
func (s *Session) SkipBackward() time.Duration {
	pos := s.Position()
	i := s.program.ExerciseAt(pos)
	if i < 0 {
		return s.SkipTo(0)
	}

	start := s.program.Offset(i)
	if pos-start < s.threshold && start > 0 {
		start = s.program.Offset(s.program.ExerciseAt(start - 1))
	}
	return s.SkipTo(start)
}
