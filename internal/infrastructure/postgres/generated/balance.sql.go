package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getBalance = `-- name: GetBalance :one
SELECT id, account_id, wallet_type, currency, kind, amount, version, created_at, updated_at FROM balances
WHERE account_id = $1 AND wallet_type = $2 AND currency = $3 AND kind = $4
`

type GetBalanceParams struct {
	AccountID  string `json:"account_id"`
	WalletType string `json:"wallet_type"`
	Currency   string `json:"currency"`
	Kind       string `json:"kind"`
}

func (q *Queries) GetBalance(ctx context.Context, arg GetBalanceParams) (Balance, error) {
	row := q.db.QueryRow(ctx, getBalance,
		arg.AccountID,
		arg.WalletType,
		arg.Currency,
		arg.Kind,
	)
	var i Balance
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.WalletType,
		&i.Currency,
		&i.Kind,
		&i.Amount,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getBalanceForUpdate = `-- name: GetBalanceForUpdate :one
SELECT id, account_id, wallet_type, currency, kind, amount, version, created_at, updated_at FROM balances
WHERE account_id = $1 AND wallet_type = $2 AND currency = $3 AND kind = $4
FOR UPDATE
`

type GetBalanceForUpdateParams struct {
	AccountID  string `json:"account_id"`
	WalletType string `json:"wallet_type"`
	Currency   string `json:"currency"`
	Kind       string `json:"kind"`
}

func (q *Queries) GetBalanceForUpdate(ctx context.Context, arg GetBalanceForUpdateParams) (Balance, error) {
	row := q.db.QueryRow(ctx, getBalanceForUpdate,
		arg.AccountID,
		arg.WalletType,
		arg.Currency,
		arg.Kind,
	)
	var i Balance
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.WalletType,
		&i.Currency,
		&i.Kind,
		&i.Amount,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertBalanceIfMissing = `-- name: InsertBalanceIfMissing :exec
INSERT INTO balances (id, account_id, wallet_type, currency, kind, amount, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $6)
ON CONFLICT (account_id, wallet_type, currency, kind) DO NOTHING
`

type InsertBalanceIfMissingParams struct {
	ID         string             `json:"id"`
	AccountID  string             `json:"account_id"`
	WalletType string             `json:"wallet_type"`
	Currency   string             `json:"currency"`
	Kind       string             `json:"kind"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) InsertBalanceIfMissing(ctx context.Context, arg InsertBalanceIfMissingParams) error {
	_, err := q.db.Exec(ctx, insertBalanceIfMissing,
		arg.ID,
		arg.AccountID,
		arg.WalletType,
		arg.Currency,
		arg.Kind,
		arg.CreatedAt,
	)
	return err
}

const listBalancesByAccount = `-- name: ListBalancesByAccount :many
SELECT id, account_id, wallet_type, currency, kind, amount, version, created_at, updated_at FROM balances
WHERE account_id = $1
ORDER BY wallet_type, currency, kind
`

func (q *Queries) ListBalancesByAccount(ctx context.Context, accountID string) ([]Balance, error) {
	rows, err := q.db.Query(ctx, listBalancesByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Balance{}
	for rows.Next() {
		var i Balance
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.WalletType,
			&i.Currency,
			&i.Kind,
			&i.Amount,
			&i.Version,
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

const sumAvailableBalance = `-- name: SumAvailableBalance :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC AS total FROM balances
WHERE account_id = $1 AND currency = $2 AND kind = 'available'
`

type SumAvailableBalanceParams struct {
	AccountID string `json:"account_id"`
	Currency  string `json:"currency"`
}

func (q *Queries) SumAvailableBalance(ctx context.Context, arg SumAvailableBalanceParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumAvailableBalance, arg.AccountID, arg.Currency)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const updateBalanceAmount = `-- name: UpdateBalanceAmount :execrows
UPDATE balances
SET amount = $2, version = version + 1, updated_at = $3
WHERE id = $1
`

type UpdateBalanceAmountParams struct {
	ID        string             `json:"id"`
	Amount    pgtype.Numeric     `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateBalanceAmount(ctx context.Context, arg UpdateBalanceAmountParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateBalanceAmount, arg.ID, arg.Amount, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
