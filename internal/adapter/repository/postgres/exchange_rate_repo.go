package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres/generated"
)

// ExchangeRateRepository implements usecase.ExchangeRateRepository.
type ExchangeRateRepository struct {
	queries *generated.Queries
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(pool *pgxpool.Pool) *ExchangeRateRepository {
	return newExchangeRateRepositoryWithDB(pool)
}

func newExchangeRateRepositoryWithDB(db generated.DBTX) *ExchangeRateRepository {
	return &ExchangeRateRepository{queries: generated.New(db)}
}

// Upsert inserts or replaces the rate of a canonical pair. The stored ID and
// CreatedAt are written back to rate.
func (r *ExchangeRateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	if !rate.IsCanonical() {
		return fmt.Errorf("%w: %s/%s is not in canonical order", domain.ErrInvalidRate, rate.FromCurrency, rate.ToCurrency)
	}

	row, err := r.queries.UpsertExchangeRate(ctx, generated.UpsertExchangeRateParams{
		ID:           rate.ID,
		FromCurrency: rate.FromCurrency,
		ToCurrency:   rate.ToCurrency,
		Rate:         decimalToNumeric(rate.Rate),
		Active:       rate.Active,
		CreatedAt:    timeToPgTimestamptz(rate.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(rate.UpdatedAt),
	})
	if err != nil {
		return err
	}

	rate.ID = row.ID
	rate.CreatedAt = row.CreatedAt.Time

	return nil
}

// GetActive returns the active row for the exact direction from -> to.
func (r *ExchangeRateRepository) GetActive(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	row, err := r.queries.GetActiveExchangeRate(ctx, generated.GetActiveExchangeRateParams{
		FromCurrency: from,
		ToCurrency:   to,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	return rowToExchangeRate(row), nil
}

// List lists stored rates ordered by pair.
func (r *ExchangeRateRepository) List(ctx context.Context, activeOnly bool) ([]*domain.ExchangeRate, error) {
	rows, err := r.queries.ListExchangeRates(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	rates := make([]*domain.ExchangeRate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, rowToExchangeRate(row))
	}

	return rates, nil
}

// SetActive toggles a stored canonical pair.
func (r *ExchangeRateRepository) SetActive(ctx context.Context, from, to string, active bool, updatedAt time.Time) error {
	n, err := r.queries.SetExchangeRateActive(ctx, generated.SetExchangeRateActiveParams{
		FromCurrency: from,
		ToCurrency:   to,
		Active:       active,
		UpdatedAt:    timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrRateNotFound, from, to)
	}

	return nil
}

func rowToExchangeRate(row generated.ExchangeRate) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ID:           row.ID,
		FromCurrency: row.FromCurrency,
		ToCurrency:   row.ToCurrency,
		Rate:         numericToDecimal(row.Rate),
		Active:       row.Active,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
