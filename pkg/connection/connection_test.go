package connection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wot-td/wot-go/pkg/log"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{})

		// 250ms, 500ms, 1s, 2s, 4s, 8s, then capped at 10s
		expected := []time.Duration{
			250 * time.Millisecond,
			500 * time.Millisecond,
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			10 * time.Second,
			10 * time.Second,
		}

		for i, exp := range expected {
			if got := b.Next(); got != exp {
				t.Errorf("Attempt %d: delay = %v, want %v", i, got, exp)
			}
		}
	})

	t.Run("Jitter", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			b := NewBackoff()
			d := b.Next()
			if d < InitialBackoff || d > InitialBackoff+InitialBackoff/4 {
				t.Fatalf("Sample %d: %v out of range [250ms, 312.5ms]", i, d)
			}
		}
	})

	t.Run("NoJitter", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: 10 * time.Millisecond, Max: 30 * time.Millisecond, Multiplier: 3})
		got := []time.Duration{b.Next(), b.Next(), b.Next()}
		want := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 30 * time.Millisecond}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Next %d = %v, want %v", i, got[i], want[i])
			}
		}
	})
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func fastBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond})
}

func TestRetry(t *testing.T) {
	errRefused := errors.New("connection refused")

	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		logger := &captureLogger{}
		calls := 0
		err := Retry(context.Background(), RetryConfig{
			Attempts: 5,
			Backoff:  fastBackoff(),
			Logger:   logger,
			Target:   "10.0.0.5:5683",
		}, func(context.Context) error {
			calls++
			if calls < 3 {
				return errRefused
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
		if len(logger.events) != 2 {
			t.Fatalf("logged %d events, want 2", len(logger.events))
		}
		e := logger.events[0]
		if e.Category != log.CategoryError || e.RemoteAddr != "10.0.0.5:5683" || e.Error == nil {
			t.Errorf("unexpected event %+v", e)
		}
		if e.Error.Context != "connection refused" {
			t.Errorf("Context = %q", e.Error.Context)
		}
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryConfig{Attempts: 3, Backoff: fastBackoff()}, func(context.Context) error {
			calls++
			return errRefused
		})
		if !errors.Is(err, errRefused) {
			t.Fatalf("err = %v, want wrapped errRefused", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("SingleAttemptByDefault", func(t *testing.T) {
		calls := 0
		_ = Retry(context.Background(), RetryConfig{}, func(context.Context) error {
			calls++
			return errRefused
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("Permanent", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryConfig{Attempts: 5, Backoff: fastBackoff()}, func(context.Context) error {
			calls++
			return Permanent(errRefused)
		})
		if err != errRefused {
			t.Fatalf("err = %v, want errRefused unwrapped", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Hour})
		done := make(chan error, 1)
		go func() {
			done <- Retry(ctx, RetryConfig{Attempts: 2, Backoff: b}, func(context.Context) error {
				return errRefused
			})
		}()
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Retry did not return after cancel")
		}
	})

	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
