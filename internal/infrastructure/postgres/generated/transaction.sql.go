package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (
    id, reference, type, from_account_id, to_account_id, from_currency, to_currency,
    amount, exchange_rate, converted_amount, rate_source, status, description, actor_id, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

type CreateTransactionParams struct {
	ID              string             `json:"id"`
	Reference       string             `json:"reference"`
	Type            string             `json:"type"`
	FromAccountID   *string            `json:"from_account_id"`
	ToAccountID     *string            `json:"to_account_id"`
	FromCurrency    string             `json:"from_currency"`
	ToCurrency      string             `json:"to_currency"`
	Amount          pgtype.Numeric     `json:"amount"`
	ExchangeRate    pgtype.Numeric     `json:"exchange_rate"`
	ConvertedAmount pgtype.Numeric     `json:"converted_amount"`
	RateSource      string             `json:"rate_source"`
	Status          string             `json:"status"`
	Description     string             `json:"description"`
	ActorID         string             `json:"actor_id"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.Reference,
		arg.Type,
		arg.FromAccountID,
		arg.ToAccountID,
		arg.FromCurrency,
		arg.ToCurrency,
		arg.Amount,
		arg.ExchangeRate,
		arg.ConvertedAmount,
		arg.RateSource,
		arg.Status,
		arg.Description,
		arg.ActorID,
		arg.CreatedAt,
	)
	return err
}

const getTransactionByReference = `-- name: GetTransactionByReference :one
SELECT id, reference, type, from_account_id, to_account_id, from_currency, to_currency, amount, exchange_rate, converted_amount, rate_source, status, description, actor_id, created_at FROM transactions
WHERE reference = $1
`

func (q *Queries) GetTransactionByReference(ctx context.Context, reference string) (Transaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByReference, reference)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Type,
		&i.FromAccountID,
		&i.ToAccountID,
		&i.FromCurrency,
		&i.ToCurrency,
		&i.Amount,
		&i.ExchangeRate,
		&i.ConvertedAmount,
		&i.RateSource,
		&i.Status,
		&i.Description,
		&i.ActorID,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, reference, type, from_account_id, to_account_id, from_currency, to_currency, amount, exchange_rate, converted_amount, rate_source, status, description, actor_id, created_at FROM transactions
WHERE ($1::text IS NULL OR from_account_id = $1 OR to_account_id = $1)
  AND ($2::text IS NULL OR type = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`

type ListTransactionsParams struct {
	AccountID *string `json:"account_id"`
	Type      *string `json:"type"`
	Limit     int32   `json:"limit"`
	Offset    int32   `json:"offset"`
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactions,
		arg.AccountID,
		arg.Type,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Reference,
			&i.Type,
			&i.FromAccountID,
			&i.ToAccountID,
			&i.FromCurrency,
			&i.ToCurrency,
			&i.Amount,
			&i.ExchangeRate,
			&i.ConvertedAmount,
			&i.RateSource,
			&i.Status,
			&i.Description,
			&i.ActorID,
			&i.CreatedAt,
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
