package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

func newFastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(maxRetries, zerolog.Nop())
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	codes := []string{pgErrDeadlock, pgErrSerializationFailure, pgErrUniqueViolation}

	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			r := newFastRetrier(2)

			attempts := 0
			err := r.Retry(context.Background(), func() error {
				attempts++
				if attempts < 2 {
					return &pgconn.PgError{Code: code}
				}
				return nil
			})

			if err != nil {
				t.Fatalf("expected success after retry, got %v", err)
			}
			if attempts != 2 {
				t.Fatalf("expected 2 attempts, got %d", attempts)
			}
		})
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := newFastRetrier(0)
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return domain.ErrInsufficientFunds
	})

	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if errors.Is(err, domain.ErrStorageConflict) {
		t.Fatalf("permanent error must not be reported as a storage conflict")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierExhaustionIsStorageConflict(t *testing.T) {
	r := newFastRetrier(3)
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	if !errors.Is(err, domain.ErrStorageConflict) {
		t.Fatalf("expected storage conflict, got %v", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrDeadlock {
		t.Fatalf("expected the deadlock to stay in the chain, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &pgconn.PgError{Code: pgErrDeadlock}, true},
		{"serialization", &pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{"unique violation", &pgconn.PgError{Code: pgErrUniqueViolation}, true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"generic", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Fatalf("isRetryableError() = %v, want %v", got, tt.want)
			}
		})
	}
}
