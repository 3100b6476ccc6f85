// Package session drives one run of an exercise program: it owns the
// execution context, restarts the run when the user seeks, and reports how
// the run ended.
//
// Seeking never rewinds a context. SkipTo, SkipForward and SkipBackward
// cancel the current attempt and start a fresh one seeded with the target
// position as its skip-ahead.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/runtime/executor"
	"github.com/aledsdavies/cadence/runtime/history"
	"github.com/google/uuid"
)

const (
	// DefaultRestartThreshold is how far into an exercise SkipBackward
	// restarts it instead of going to the previous exercise.
	DefaultRestartThreshold = 3 * time.Second

	// DefaultCheckpointInterval is how often a journaled run records its
	// position.
	DefaultCheckpointInterval = 5 * time.Second
)

// Outcome is how a run ended.
type Outcome uint8

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (o Outcome) status() history.Status {
	switch o {
	case OutcomeCompleted:
		return history.StatusCompleted
	case OutcomeCancelled:
		return history.StatusCancelled
	default:
		return history.StatusFailed
	}
}

// Journal records runs. *history.Store implements it.
type Journal interface {
	Begin(ctx context.Context, run history.Run) error
	Checkpoint(ctx context.Context, runID string, position time.Duration) error
	Finish(ctx context.Context, runID string, status history.Status, position time.Duration) error
}

// Config configures a session.
type Config struct {
	Executor           *executor.Executor
	Logger             *slog.Logger  // nil discards
	Journal            Journal       // nil disables history
	RestartThreshold   time.Duration // 0 means DefaultRestartThreshold
	CheckpointInterval time.Duration // 0 means DefaultCheckpointInterval
}

// Update is delivered to listeners whenever the running context changes.
type Update struct {
	RunID string
	Kind  executor.ChangeKind
	State executor.Snapshot
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Outcome  Outcome
	Position time.Duration
	Restarts int
}

// Session runs one exercise program once.
type Session struct {
	id          string
	program     *routine.ExerciseProgram
	fingerprint string
	exec        *executor.Executor
	logger      *slog.Logger
	journal     Journal
	threshold   time.Duration
	checkpoint  time.Duration

	mu        sync.Mutex
	started   bool
	finished  bool
	cancelled bool
	paused    bool
	seeded    bool           // start was set by a seek before Run
	start     time.Duration
	pending   *time.Duration    // seek target not yet picked up by an attempt
	current   *executor.Context // context of the running attempt
	listeners []func(Update)
}

// New creates a session for program. It fails only if the program cannot
// be fingerprinted.
func New(program *routine.ExerciseProgram, config Config) (*Session, error) {
	invariant.NotNil(program, "exercise program")
	invariant.NotNil(config.Executor, "executor")
	invariant.NonNegativeDuration(config.RestartThreshold, "restart threshold")
	invariant.NonNegativeDuration(config.CheckpointInterval, "checkpoint interval")

	fingerprint, err := routine.Fingerprint(program)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %q: %w", program.Name(), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	threshold := config.RestartThreshold
	if threshold == 0 {
		threshold = DefaultRestartThreshold
	}
	checkpoint := config.CheckpointInterval
	if checkpoint == 0 {
		checkpoint = DefaultCheckpointInterval
	}

	id := uuid.NewString()
	return &Session{
		id:          id,
		program:     program,
		fingerprint: fingerprint,
		exec:        config.Executor,
		logger:      logger.With("run", id, "program", program.Name()),
		journal:     config.Journal,
		threshold:   threshold,
		checkpoint:  checkpoint,
	}, nil
}

// ID returns the run ID.
func (s *Session) ID() string { return s.id }

// Program returns the program this session runs.
func (s *Session) Program() *routine.ExerciseProgram { return s.program }

// Fingerprint returns the program fingerprint the run is journaled under.
func (s *Session) Fingerprint() string { return s.fingerprint }

// OnUpdate registers fn to receive updates. It must be called before Run;
// fn runs on executor goroutines and must not block.
func (s *Session) OnUpdate(fn func(Update)) {
	invariant.NotNil(fn, "update listener")

	s.mu.Lock()
	defer s.mu.Unlock()
	invariant.Precondition(!s.started, "OnUpdate called after Run")
	s.listeners = append(s.listeners, fn)
}

// Run executes the program starting at routine time from and blocks until
// it completes, is cancelled, or fails. A seek made before Run overrides
// from. Cancelling ctx cancels the run. A failed run returns the failure
// alongside its Result.
func (s *Session) Run(ctx context.Context, from time.Duration) (Result, error) {
	invariant.NotNil(ctx, "context")
	invariant.NonNegativeDuration(from, "start position")

	s.mu.Lock()
	invariant.Precondition(!s.started, "session %s already ran", s.id)
	s.started = true
	if !s.seeded {
		s.start = min(from, s.program.Duration())
	}
	position := s.start
	s.mu.Unlock()

	journalCtx := context.WithoutCancel(ctx)
	s.begin(journalCtx, position)
	stopCheckpoints := s.startCheckpoints(journalCtx)

	result := Result{RunID: s.id}
	var runErr error
	for {
		c := s.newAttempt(ctx, position)
		s.logger.Info("attempt started", "from", c.SkipAhead(), "attempt", result.Restarts+1)

		runErr = s.exec.ExecuteProgram(c, s.program)
		if runErr == nil {
			s.exec.Wait()
		}

		s.mu.Lock()
		pending, cancelled := s.pending, s.cancelled
		s.pending = nil
		s.mu.Unlock()

		if executor.IsCancelled(runErr) && pending != nil && !cancelled && ctx.Err() == nil {
			c.Cancel()
			position = *pending
			result.Restarts++
			continue
		}

		result.Position = c.Progress()
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
		c.Cancel()
		break
	}

	stopCheckpoints()

	switch {
	case runErr == nil:
		result.Outcome = OutcomeCompleted
	case executor.IsCancelled(runErr):
		result.Outcome = OutcomeCancelled
		runErr = nil
	default:
		result.Outcome = OutcomeFailed
	}

	s.finish(journalCtx, result)
	s.logger.Info("run finished", "outcome", result.Outcome.String(), "position", result.Position, "restarts", result.Restarts)
	return result, runErr
}

func (s *Session) newAttempt(parent context.Context, from time.Duration) *executor.Context {
	s.mu.Lock()
	if s.pending != nil {
		from, s.pending = *s.pending, nil
	}
	c := executor.NewContext(parent, from)
	c.SetPaused(s.paused)
	s.current = c
	cancelled := s.cancelled
	listeners := s.listeners
	s.mu.Unlock()

	if cancelled {
		c.Cancel()
	}
	if len(listeners) > 0 {
		c.OnChange(func(change executor.Change) {
			// seeks and end-of-run cleanup cancel attempts too
			if change.Kind == executor.ChangeCancelled && !s.isCancelled() && parent.Err() == nil {
				return
			}
			update := Update{RunID: s.id, Kind: change.Kind, State: change.State}
			for _, fn := range listeners {
				fn(update)
			}
		})
	}
	return c
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Position returns the routine time the run has reached, or the position
// it will start from before Run.
func (s *Session) Position() time.Duration {
	s.mu.Lock()
	c, start := s.current, s.start
	s.mu.Unlock()

	if c == nil {
		return start
	}
	return c.Progress()
}

// Snapshot returns the state of the latest attempt, or false before Run
// started one.
func (s *Session) Snapshot() (executor.Snapshot, bool) {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()

	if c == nil {
		return executor.Snapshot{}, false
	}
	return c.Snapshot(), true
}
