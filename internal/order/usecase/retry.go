package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "foodhub/internal/errors"
	"foodhub/internal/infrastructure/mysql"
)

var retryBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// withDeadlockRetry runs fn until it succeeds, fails with a non-deadlock
// error, or maxAttempts deadlocks have been seen.
func withDeadlockRetry(ctx context.Context, maxAttempts int, logger *zap.Logger, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !mysql.IsDeadlock(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		logger.Warn("deadlock detected, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

// backoff returns the base delay for the attempt with +-20% jitter.
func backoff(attempt int) time.Duration {
	idx := attempt
	if idx >= len(retryBackoffs) {
		idx = len(retryBackoffs) - 1
	}
	base := retryBackoffs[idx]
	return time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
}
