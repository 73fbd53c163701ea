package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	NumberExists(ctx context.Context, tx Transaction, number string) (bool, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// FindByOwnerForUpdate returns domain.ErrAccountNotFound when the user has
	// no account of that category and currency.
	FindByOwnerForUpdate(ctx context.Context, tx Transaction, userID string, category domain.AccountCategory, currency string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

// BalanceRepository defines data access for per-wallet balances.
type BalanceRepository interface {
	// GetOrCreateForUpdate inserts a zero balance at key if none exists and
	// returns the row locked for the rest of tx.
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, key domain.BalanceKey, newID string, now time.Time) (*domain.Balance, error)
	// GetForUpdate returns domain.ErrBalanceRecordMissing when no row exists at key.
	GetForUpdate(ctx context.Context, tx Transaction, key domain.BalanceKey) (*domain.Balance, error)
	Get(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error)
	Update(ctx context.Context, tx Transaction, balance *domain.Balance) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Balance, error)
	SumAvailable(ctx context.Context, accountID, currency string) (decimal.Decimal, error)
}

// TransactionRepository defines data access for transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
}

// ExchangeRateRepository defines data access for canonical exchange rates.
type ExchangeRateRepository interface {
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
	// GetActive returns domain.ErrRateNotFound when no active row exists for
	// the exact (from, to) direction.
	GetActive(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.ExchangeRate, error)
	SetActive(ctx context.Context, from, to string, active bool, updatedAt time.Time) error
}

// RateCache caches active direct rates by exact direction.
type RateCache interface {
	Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, from, to string, rate decimal.Decimal) error
	Invalidate(ctx context.Context, from, to string) error
}

// RateProvider resolves the rate to apply between two currencies.
type RateProvider interface {
	GetBidirectional(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator generates human readable identifiers.
type ReferenceGenerator interface {
	AccountNumber(category domain.AccountCategory) string
	TransactionReference() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose operation failed.
	Delete(ctx context.Context, key string) error
}

// MetricsRecorder receives ledger measurements.
type MetricsRecorder interface {
	ObserveOperation(operation, status string, duration time.Duration)
	RateFallback(from, to string)
	ReconciliationMismatches(count int)
}
