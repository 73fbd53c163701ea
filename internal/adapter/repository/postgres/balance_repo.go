package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres/generated"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepositoryWithDB(pool)
}

func newBalanceRepositoryWithDB(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// GetOrCreateForUpdate inserts a zero row at key when missing and locks it.
// Concurrent creators race on the unique key; the loser's insert is a no-op
// and both read the same row.
func (r *BalanceRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, key domain.BalanceKey, newID string, now time.Time) (*domain.Balance, error) {
	queries := queriesFor(tx)

	if err := queries.InsertBalanceIfMissing(ctx, generated.InsertBalanceIfMissingParams{
		ID:         newID,
		AccountID:  key.AccountID,
		WalletType: string(key.Wallet),
		Currency:   key.Currency,
		Kind:       string(key.Kind),
		CreatedAt:  timeToPgTimestamptz(now),
	}); err != nil {
		return nil, err
	}

	return r.getForUpdate(ctx, queries, key)
}

// GetForUpdate locks the balance at key.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, key domain.BalanceKey) (*domain.Balance, error) {
	return r.getForUpdate(ctx, queriesFor(tx), key)
}

func (r *BalanceRepository) getForUpdate(ctx context.Context, queries *generated.Queries, key domain.BalanceKey) (*domain.Balance, error) {
	row, err := queries.GetBalanceForUpdate(ctx, generated.GetBalanceForUpdateParams{
		AccountID:  key.AccountID,
		WalletType: string(key.Wallet),
		Currency:   key.Currency,
		Kind:       string(key.Kind),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBalanceRecordMissing, key)
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// Get reads the balance at key without locking.
func (r *BalanceRepository) Get(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	row, err := r.queries.GetBalance(ctx, generated.GetBalanceParams{
		AccountID:  key.AccountID,
		WalletType: string(key.Wallet),
		Currency:   key.Currency,
		Kind:       string(key.Kind),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBalanceRecordMissing, key)
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// Update writes the amount of a locked balance.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	n, err := queriesFor(tx).UpdateBalanceAmount(ctx, generated.UpdateBalanceAmountParams{
		ID:        balance.ID,
		Amount:    decimalToNumeric(balance.Amount),
		UpdatedAt: timeToPgTimestamptz(balance.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrBalanceRecordMissing, balance.Key())
	}

	return nil
}

// ListByAccount lists every balance row of an account.
func (r *BalanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	rows, err := r.queries.ListBalancesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}

	return balances, nil
}

// SumAvailable totals the available balances of an account in currency
// across all wallets.
func (r *BalanceRepository) SumAvailable(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	total, err := r.queries.SumAvailableBalance(ctx, generated.SumAvailableBalanceParams{
		AccountID: accountID,
		Currency:  currency,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		ID:         row.ID,
		AccountID:  row.AccountID,
		WalletType: domain.WalletType(row.WalletType),
		Currency:   row.Currency,
		Kind:       domain.BalanceKind(row.Kind),
		Amount:     numericToDecimal(row.Amount),
		Version:    row.Version,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
