package retrypolicy

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openedu/school_ledger_app/internal/apperrors"
)

// Postgres SQLSTATE codes treated as transient lock conflicts.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateLockNotAvailable     = "55P03"
)

// Policy bounds the automatic retry of transient lock conflicts. With the
// defaults an operation is attempted up to 3 times, sleeping 100ms then
// 200ms between attempts (2^n * base).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default matches the observed posting behavior: up to 3 attempts, backoff
// growing as 2^n x 100ms.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
}

// IsTransient reports whether err is a retryable lock conflict: either the
// ErrTransientConflict sentinel or a Postgres deadlock/serialization
// failure. Business validation failures are never transient.
func IsTransient(err error) bool {
	if errors.Is(err, apperrors.ErrTransientConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable:
			return true
		}
	}
	return false
}

// Do runs fn, retrying only transient conflicts up to the policy's attempt
// budget. Any other error aborts immediately. When attempts are exhausted
// the last error is wrapped with ErrTransientConflict so callers can
// classify it without inspecting driver codes.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0 // Deterministic 2^n schedule
	bo.MaxInterval = p.BaseDelay << uint(maxAttempts)
	bo.MaxElapsedTime = 0

	var lastErr error
	operation := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if IsTransient(err) {
			return err // Retryable
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx),
	)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	if IsTransient(lastErr) && !errors.Is(lastErr, apperrors.ErrTransientConflict) {
		return errors.Join(apperrors.ErrTransientConflict, lastErr)
	}
	return lastErr
}
