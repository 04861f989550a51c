package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultSchedule is the wait before each attempt of a crawl: the first
// attempt starts at once, the following ones back off further each time.
var DefaultSchedule = []time.Duration{
	0,
	100 * time.Second,
	400 * time.Second,
	800 * time.Second,
}

// AttemptObserver receives supervisor events. It is used for metrics.
type AttemptObserver interface {
	// AttemptStarted is called before work runs for attempt (0-based).
	AttemptStarted(attempt int)

	// AttemptFailed is called when attempt returned an error.
	AttemptFailed(attempt int, err error)
}

type nopAttemptObserver struct{}

func (nopAttemptObserver) AttemptStarted(int)       {}
func (nopAttemptObserver) AttemptFailed(int, error) {}

// Supervisor retries a unit of work with an escalating wait between attempts.
//
// Schedule[i] is waited before attempt i, so the schedule length is the
// number of attempts. An empty schedule means a single attempt without
// waiting.
//
// Design decision: Failures that reach the supervisor are systemic: the
// session was detected, the browser died or a store write failed. Retrying a
// single profile would hit the same wall, so the whole pass is re-run after a
// cool-down and the durable store makes the re-run resume where it stopped.
type Supervisor struct {
	// Schedule holds the wait before every attempt.
	Schedule []time.Duration

	// logger is used for attempt logging.
	logger *slog.Logger

	// observer receives attempt events.
	observer AttemptObserver

	// sleep waits between attempts; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithSchedule replaces DefaultSchedule.
func WithSchedule(schedule []time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.Schedule = schedule
	}
}

// WithSupervisorLogger sets the logger of the supervisor.
func WithSupervisorLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithAttemptObserver sets the receiver of attempt events.
func WithAttemptObserver(o AttemptObserver) SupervisorOption {
	return func(s *Supervisor) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewSupervisor creates a Supervisor using DefaultSchedule.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		Schedule: DefaultSchedule,
		observer: nopAttemptObserver{},
		sleep:    sleepCtx,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Attempts returns how many times work runs at most.
func (s *Supervisor) Attempts() int {
	return max(len(s.Schedule), 1)
}

// Run calls work until it succeeds, the schedule is used up or ctx is done.
//
// A cancelled context stops the supervisor at once and its error is
// returned as is. When every attempt failed the returned error wraps both
// ErrRetryExhausted and the error of the last attempt.
func (s *Supervisor) Run(ctx context.Context, work func(ctx context.Context, attempt int) error) error {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := s.observer
	if observer == nil {
		observer = nopAttemptObserver{}
	}
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := range s.Attempts() {
		var wait time.Duration
		if attempt < len(s.Schedule) {
			wait = s.Schedule[attempt]
		}

		if wait > 0 {
			logger.Info("waiting before next attempt",
				"attempt", attempt+1,
				"wait", wait,
			)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		observer.AttemptStarted(attempt)
		err := work(ctx, attempt)
		if err == nil {
			if attempt > 0 {
				logger.Info("attempt succeeded", "attempt", attempt+1)
			}
			return nil
		}

		// Work that stopped because of cancellation is not a failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		observer.AttemptFailed(attempt, err)
		logger.Warn("attempt failed",
			"attempt", attempt+1,
			"of", s.Attempts(),
			"error", err,
		)
		lastErr = err
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, s.Attempts(), lastErr)
}

// ParseSchedule parses a comma separated list of durations such as
// "0s,100s,400s,800s".
func ParseSchedule(s string) ([]time.Duration, error) {
	schedule := make([]time.Duration, 0)
	for _, part := range splitList(s) {
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("failed to parse retry schedule: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("failed to parse retry schedule: negative wait %s", part)
		}
		schedule = append(schedule, d)
	}
	if len(schedule) == 0 {
		return nil, errors.New("failed to parse retry schedule: no attempts")
	}
	return schedule, nil
}

func splitList(s string) []string {
	parts := make([]string, 0)
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
