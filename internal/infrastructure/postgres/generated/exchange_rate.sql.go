package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getActiveExchangeRate = `-- name: GetActiveExchangeRate :one
SELECT id, from_currency, to_currency, rate, active, created_at, updated_at FROM exchange_rates
WHERE from_currency = $1 AND to_currency = $2 AND active
`

type GetActiveExchangeRateParams struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
}

func (q *Queries) GetActiveExchangeRate(ctx context.Context, arg GetActiveExchangeRateParams) (ExchangeRate, error) {
	row := q.db.QueryRow(ctx, getActiveExchangeRate, arg.FromCurrency, arg.ToCurrency)
	var i ExchangeRate
	err := row.Scan(
		&i.ID,
		&i.FromCurrency,
		&i.ToCurrency,
		&i.Rate,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listExchangeRates = `-- name: ListExchangeRates :many
SELECT id, from_currency, to_currency, rate, active, created_at, updated_at FROM exchange_rates
WHERE active OR NOT $1::boolean
ORDER BY from_currency, to_currency
`

func (q *Queries) ListExchangeRates(ctx context.Context, activeOnly bool) ([]ExchangeRate, error) {
	rows, err := q.db.Query(ctx, listExchangeRates, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExchangeRate{}
	for rows.Next() {
		var i ExchangeRate
		if err := rows.Scan(
			&i.ID,
			&i.FromCurrency,
			&i.ToCurrency,
			&i.Rate,
			&i.Active,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setExchangeRateActive = `-- name: SetExchangeRateActive :execrows
UPDATE exchange_rates SET active = $3, updated_at = $4
WHERE from_currency = $1 AND to_currency = $2
`

type SetExchangeRateActiveParams struct {
	FromCurrency string             `json:"from_currency"`
	ToCurrency   string             `json:"to_currency"`
	Active       bool               `json:"active"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetExchangeRateActive(ctx context.Context, arg SetExchangeRateActiveParams) (int64, error) {
	result, err := q.db.Exec(ctx, setExchangeRateActive,
		arg.FromCurrency,
		arg.ToCurrency,
		arg.Active,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const upsertExchangeRate = `-- name: UpsertExchangeRate :one
INSERT INTO exchange_rates (id, from_currency, to_currency, rate, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (from_currency, to_currency)
DO UPDATE SET rate = EXCLUDED.rate, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at
RETURNING id, from_currency, to_currency, rate, active, created_at, updated_at
`

type UpsertExchangeRateParams struct {
	ID           string             `json:"id"`
	FromCurrency string             `json:"from_currency"`
	ToCurrency   string             `json:"to_currency"`
	Rate         pgtype.Numeric     `json:"rate"`
	Active       bool               `json:"active"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertExchangeRate(ctx context.Context, arg UpsertExchangeRateParams) (ExchangeRate, error) {
	row := q.db.QueryRow(ctx, upsertExchangeRate,
		arg.ID,
		arg.FromCurrency,
		arg.ToCurrency,
		arg.Rate,
		arg.Active,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i ExchangeRate
	err := row.Scan(
		&i.ID,
		&i.FromCurrency,
		&i.ToCurrency,
		&i.Rate,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
