package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDeadlinePassed       = errors.New("enrollment deadline passed")
	ErrCapacityExceeded     = errors.New("class is full")
	ErrAlreadyEnrolled      = errors.New("student already enrolled")
	ErrNotEnrolled          = errors.New("student not enrolled in this class")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSessionAlreadyActive = errors.New("an ongoing session already exists for this class")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrOverlappingPeriod    = errors.New("payment period overlaps an existing payment")
	ErrExternalProvider     = errors.New("external provider failure")
	ErrConcurrencyConflict  = errors.New("concurrent update conflict")
	ErrClassDisabled        = errors.New("class is disabled")
	ErrInvalidInput         = errors.New("invalid input")
)

const maxTxAttempts = 3

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// withTxRetry re-runs fn on serialization failures up to maxTxAttempts before
// surfacing ErrConcurrencyConflict. Validation errors pass through untouched.
func withTxRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
}
