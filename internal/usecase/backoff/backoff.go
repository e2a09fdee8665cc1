package backoff

import (
	"context"
	"errors"
	"time"

	"github.com/channelone/dealreg-conflict-service/internal/domain"
)

// Retry runs fn up to attempts times, sleeping a linearly growing delay
// between tries. Only transient ErrRepositoryUnavailable failures are
// retried; every other error returns immediately.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRepositoryUnavailable) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * delay):
		}
	}
	return err
}
