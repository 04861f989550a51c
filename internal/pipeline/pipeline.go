package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/egocrawl/internal/crawler"
)

// Session is a fetcher that holds resources, such as a browser, until it is
// closed. *browser.Session implements it.
type Session interface {
	crawler.Fetcher
	io.Closer
}

// SessionFactory opens a fresh session for every attempt.
type SessionFactory func(ctx context.Context) (Session, error)

// Job is a whole crawl: a Pass run under a Supervisor with a new session per
// attempt.
type Job struct {
	// pass is re-run on every attempt.
	pass *Pass

	// sessions opens the session of an attempt.
	sessions SessionFactory

	// supervisor decides when to retry.
	supervisor *Supervisor

	// logger is used for job-level logging.
	logger *slog.Logger
}

// JobOption configures a Job.
type JobOption func(*Job)

// WithLogger sets a custom logger for the job.
func WithLogger(logger *slog.Logger) JobOption {
	return func(j *Job) {
		j.logger = logger
	}
}

// WithSupervisor replaces the default supervisor.
func WithSupervisor(s *Supervisor) JobOption {
	return func(j *Job) {
		if s != nil {
			j.supervisor = s
		}
	}
}

// NewJob creates a Job. Without WithSupervisor the job retries on
// DefaultSchedule.
func NewJob(pass *Pass, sessions SessionFactory, opts ...JobOption) *Job {
	j := &Job{
		pass:     pass,
		sessions: sessions,
	}

	for _, opt := range opts {
		opt(j)
	}

	if j.logger == nil {
		j.logger = slog.Default()
	}
	if j.supervisor == nil {
		j.supervisor = NewSupervisor(WithSupervisorLogger(j.logger))
	}

	return j
}

// Run executes the pass until one attempt completes it.
//
// It returns the result of the last attempt. The error wraps
// ErrRetryExhausted when every attempt failed, or is the context error when
// the job was cancelled.
func (j *Job) Run(ctx context.Context) (*PassResult, error) {
	var last *PassResult

	err := j.supervisor.Run(ctx, func(ctx context.Context, attempt int) error {
		j.logger.Info("opening session", "attempt", attempt+1)

		session, err := j.sessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
		defer func() {
			if cerr := session.Close(); cerr != nil {
				j.logger.Warn("failed to close session", "error", cerr)
			}
		}()

		res, err := j.pass.Run(ctx, session)
		if res != nil {
			last = res
		}
		return err
	})

	return last, err
}
