package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres/generated"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepositoryWithDB(pool)
}

func newTransactionRepositoryWithDB(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	return queriesFor(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              record.ID,
		Reference:       record.Reference,
		Type:            string(record.Type),
		FromAccountID:   record.FromAccountID,
		ToAccountID:     record.ToAccountID,
		FromCurrency:    record.FromCurrency,
		ToCurrency:      record.ToCurrency,
		Amount:          decimalToNumeric(record.Amount),
		ExchangeRate:    decimalToNumeric(record.ExchangeRate),
		ConvertedAmount: decimalToNumeric(record.ConvertedAmount),
		RateSource:      string(record.RateSource),
		Status:          string(record.Status),
		Description:     record.Description,
		ActorID:         record.ActorID,
		CreatedAt:       timeToPgTimestamptz(record.CreatedAt),
	})
}

// GetByReference retrieves a transaction by its reference.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// List lists transactions newest first.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	limit, offset := domain.NormalizePagination(filter.Limit, filter.Offset)

	params := generated.ListTransactionsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if filter.AccountID != "" {
		params.AccountID = &filter.AccountID
	}
	if filter.Type != "" {
		t := string(filter.Type)
		params.Type = &t
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToTransaction(row))
	}

	return records, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		Reference:       row.Reference,
		Type:            domain.TransactionType(row.Type),
		FromAccountID:   row.FromAccountID,
		ToAccountID:     row.ToAccountID,
		FromCurrency:    row.FromCurrency,
		ToCurrency:      row.ToCurrency,
		Amount:          numericToDecimal(row.Amount),
		ExchangeRate:    numericToDecimal(row.ExchangeRate),
		ConvertedAmount: numericToDecimal(row.ConvertedAmount),
		RateSource:      domain.RateSource(row.RateSource),
		Status:          domain.TransactionStatus(row.Status),
		Description:     row.Description,
		ActorID:         row.ActorID,
		CreatedAt:       row.CreatedAt.Time,
	}
}
