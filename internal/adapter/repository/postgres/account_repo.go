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

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepositoryWithDB(pool)
}

func newAccountRepositoryWithDB(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return queriesFor(tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Number:    account.Number,
		UserID:    account.UserID,
		Category:  string(account.Category),
		Currency:  account.Currency,
		Balance:   decimalToNumeric(account.Balance),
		Active:    account.Active,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// NumberExists reports whether an account number is taken.
func (r *AccountRepository) NumberExists(ctx context.Context, tx usecase.Transaction, number string) (bool, error) {
	return queriesFor(tx).AccountNumberExists(ctx, number)
}

// GetByIDsForUpdate retrieves multiple accounts by IDs with FOR UPDATE locks.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := queriesFor(tx).GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// FindByOwnerForUpdate locks the user's account of a category and currency.
func (r *AccountRepository) FindByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, userID string, category domain.AccountCategory, currency string) (*domain.Account, error) {
	row, err := queriesFor(tx).FindAccountByOwnerForUpdate(ctx, generated.FindAccountByOwnerForUpdateParams{
		UserID:   userID,
		Category: string(category),
		Currency: currency,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// ListByUser lists the accounts of a user, oldest first.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset = domain.NormalizePagination(limit, offset)

	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// UpdateBalance updates the cached aggregate balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

// SetActive soft-enables or soft-disables an account.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	n, err := r.queries.SetAccountActive(ctx, generated.SetAccountActiveParams{
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		Number:    row.Number,
		UserID:    row.UserID,
		Category:  domain.AccountCategory(row.Category),
		Currency:  row.Currency,
		Balance:   numericToDecimal(row.Balance),
		Active:    row.Active,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
