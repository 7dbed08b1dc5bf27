package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wot-td/wot-go/pkg/log"
)

// permanentError stops Retry.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int

	// Backoff produces the delays between tries. Nil uses NewBackoff.
	Backoff *Backoff

	// Logger receives a state event for every failed try. Optional.
	Logger log.Logger

	// Target names what is being retried in log events.
	Target string
}

// Retry calls fn until it succeeds, returns a Permanent error, the
// attempts are used up, or ctx is done. The last error is returned.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := cfg.Backoff
	if b == nil {
		b = NewBackoff()
	}

	var err error
	for i := 1; ; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if i >= attempts {
			return fmt.Errorf("giving up after %d attempts: %w", i, err)
		}

		delay := b.Next()
		if cfg.Logger != nil {
			cfg.Logger.Log(log.Event{
				Timestamp:  time.Now(),
				Direction:  log.DirectionOut,
				Layer:      log.LayerTransport,
				Category:   log.CategoryError,
				RemoteAddr: cfg.Target,
				Error: &log.ErrorEventData{
					Layer:   log.LayerTransport,
					Message: fmt.Sprintf("attempt %d failed, retrying in %s", i, delay.Round(time.Millisecond)),
					Context: err.Error(),
				},
			})
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-t.C:
		}
	}
}
