package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryInvoker wraps an Invoker and retries commands that fail because the
// channel is unavailable (surface not yet attached). Unavailability is
// transient by contract: commands are retried with exponential backoff
// rather than dropped or raised, until the attempt budget runs out.
type RetryInvoker struct {
	next     Invoker
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewRetryInvoker wraps next. attempts <= 0 defaults to 5, backoff <= 0 to
// 50ms (doubled each retry).
func NewRetryInvoker(next Invoker, attempts int, backoff time.Duration, logger *slog.Logger) *RetryInvoker {
	if attempts <= 0 {
		attempts = 5
	}
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryInvoker{next: next, attempts: attempts, backoff: backoff, logger: logger}
}

// Invoke implements Invoker.
func (ri *RetryInvoker) Invoke(ctx context.Context, cmd Command) error {
	var lastErr error
	for attempt := 0; attempt < ri.attempts; attempt++ {
		err := ri.next.Invoke(ctx, cmd)
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrNotReady) {
			return err
		}
		if ctx.Err() != nil {
			return lastErr
		}

		if attempt < ri.attempts-1 {
			wait := ri.backoff * (1 << uint(attempt))
			ri.logger.Warn("bridge: invoke retrying",
				"command", cmd.Name,
				"attempt", attempt+1,
				"backoff_ms", wait.Milliseconds())
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("bridge: invoke %s: retries exhausted: %w", cmd.Name, lastErr)
}
