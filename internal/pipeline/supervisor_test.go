package pipeline

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// recordingSleeper records the waits instead of sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestSupervisor(schedule []time.Duration) (*Supervisor, *recordingSleeper) {
	rec := &recordingSleeper{}
	s := NewSupervisor(WithSchedule(schedule))
	s.sleep = rec.sleep
	return s, rec
}

// countingObserver counts attempt events.
type countingObserver struct {
	mu      sync.Mutex
	started []int
	failed  []int
}

func (c *countingObserver) AttemptStarted(attempt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, attempt)
}

func (c *countingObserver) AttemptFailed(attempt int, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, attempt)
}

func TestNewSupervisor(t *testing.T) {
	t.Parallel()

	s := NewSupervisor()
	if !slices.Equal(s.Schedule, DefaultSchedule) {
		t.Errorf("expected default schedule, got %v", s.Schedule)
	}
	if s.Attempts() != 4 {
		t.Errorf("expected 4 attempts, got %d", s.Attempts())
	}
	if s.logger == nil {
		t.Error("expected default logger")
	}

	empty := NewSupervisor(WithSchedule(nil))
	if empty.Attempts() != 1 {
		t.Errorf("expected 1 attempt for an empty schedule, got %d", empty.Attempts())
	}
}

func TestSupervisorRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("session detected")

	t.Run("first attempt succeeds without waiting", func(t *testing.T) {
		t.Parallel()

		s, rec := newTestSupervisor(DefaultSchedule)
		calls := 0
		err := s.Run(context.Background(), func(_ context.Context, _ int) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
		if len(rec.waits) != 0 {
			t.Errorf("expected no waits, got %v", rec.waits)
		}
	})

	t.Run("succeeds on third attempt", func(t *testing.T) {
		t.Parallel()

		s, rec := newTestSupervisor(DefaultSchedule)
		var attempts []int
		err := s.Run(context.Background(), func(_ context.Context, attempt int) error {
			attempts = append(attempts, attempt)
			if attempt < 2 {
				return boom
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(attempts, []int{0, 1, 2}) {
			t.Errorf("unexpected attempts %v", attempts)
		}
		want := []time.Duration{100 * time.Second, 400 * time.Second}
		if !slices.Equal(rec.waits, want) {
			t.Errorf("expected waits %v, got %v", want, rec.waits)
		}
	})

	t.Run("exhausts the schedule", func(t *testing.T) {
		t.Parallel()

		s, rec := newTestSupervisor(DefaultSchedule)
		obs := &countingObserver{}
		s.observer = obs

		calls := 0
		err := s.Run(context.Background(), func(_ context.Context, _ int) error {
			calls++
			return boom
		})
		if !errors.Is(err, ErrRetryExhausted) {
			t.Errorf("expected ErrRetryExhausted, got %v", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("expected last error to be wrapped, got %v", err)
		}
		if calls != 4 {
			t.Errorf("expected 4 calls, got %d", calls)
		}
		want := []time.Duration{100 * time.Second, 400 * time.Second, 800 * time.Second}
		if !slices.Equal(rec.waits, want) {
			t.Errorf("expected waits %v, got %v", want, rec.waits)
		}
		if !slices.Equal(obs.started, []int{0, 1, 2, 3}) || !slices.Equal(obs.failed, []int{0, 1, 2, 3}) {
			t.Errorf("unexpected observer events started=%v failed=%v", obs.started, obs.failed)
		}
	})

	t.Run("cancelled context stops at once", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestSupervisor(DefaultSchedule)
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		err := s.Run(ctx, func(_ context.Context, _ int) error {
			calls++
			cancel()
			return boom
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrRetryExhausted) {
			t.Error("cancellation must not count as exhaustion")
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("cancelled during wait", func(t *testing.T) {
		t.Parallel()

		s := NewSupervisor(WithSchedule([]time.Duration{0, time.Hour}))
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx, func(_ context.Context, _ int) error {
				return boom
			})
		}()
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("supervisor did not stop after cancellation")
		}
	})

	t.Run("already cancelled runs nothing", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestSupervisor(DefaultSchedule)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := s.Run(ctx, func(_ context.Context, _ int) error {
			called = true
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if called {
			t.Error("work must not run with a cancelled context")
		}
	})
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []time.Duration
		wantErr bool
	}{
		{
			name:  "default",
			input: "0s,100s,400s,800s",
			want:  DefaultSchedule,
		},
		{
			name:  "spaces and minutes",
			input: " 0s , 1m30s ",
			want:  []time.Duration{0, 90 * time.Second},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "invalid", input: "0s,soon", wantErr: true},
		{name: "negative", input: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSchedule(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
