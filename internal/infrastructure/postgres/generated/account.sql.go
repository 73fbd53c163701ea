package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountNumberExists = `-- name: AccountNumberExists :one
SELECT EXISTS (SELECT 1 FROM accounts WHERE number = $1)
`

func (q *Queries) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	row := q.db.QueryRow(ctx, accountNumberExists, number)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, number, user_id, category, currency, balance, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateAccountParams struct {
	ID        string             `json:"id"`
	Number    string             `json:"number"`
	UserID    string             `json:"user_id"`
	Category  string             `json:"category"`
	Currency  string             `json:"currency"`
	Balance   pgtype.Numeric     `json:"balance"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.Number,
		arg.UserID,
		arg.Category,
		arg.Currency,
		arg.Balance,
		arg.Active,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const findAccountByOwnerForUpdate = `-- name: FindAccountByOwnerForUpdate :one
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts
WHERE user_id = $1 AND category = $2 AND currency = $3
FOR UPDATE
`

type FindAccountByOwnerForUpdateParams struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	Currency string `json:"currency"`
}

func (q *Queries) FindAccountByOwnerForUpdate(ctx context.Context, arg FindAccountByOwnerForUpdateParams) (Account, error) {
	row := q.db.QueryRow(ctx, findAccountByOwnerForUpdate, arg.UserID, arg.Category, arg.Currency)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.UserID,
		&i.Category,
		&i.Currency,
		&i.Balance,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.UserID,
		&i.Category,
		&i.Currency,
		&i.Balance,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByNumber = `-- name: GetAccountByNumber :one
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts WHERE number = $1
`

func (q *Queries) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByNumber, number)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.UserID,
		&i.Category,
		&i.Currency,
		&i.Balance,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountsByIDsForUpdate = `-- name: GetAccountsByIDsForUpdate :many
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts WHERE id = ANY($1::text[]) ORDER BY id FOR UPDATE
`

func (q *Queries) GetAccountsByIDsForUpdate(ctx context.Context, dollar_1 []string) ([]Account, error) {
	rows, err := q.db.Query(ctx, getAccountsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.UserID,
			&i.Category,
			&i.Currency,
			&i.Balance,
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

const listAccounts = `-- name: ListAccounts :many
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts ORDER BY created_at, id LIMIT $1 OFFSET $2
`

type ListAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.UserID,
			&i.Category,
			&i.Currency,
			&i.Balance,
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

const listAccountsByUser = `-- name: ListAccountsByUser :many
SELECT id, number, user_id, category, currency, balance, active, created_at, updated_at FROM accounts WHERE user_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.UserID,
			&i.Category,
			&i.Currency,
			&i.Balance,
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

const setAccountActive = `-- name: SetAccountActive :execrows
UPDATE accounts SET active = $2, updated_at = $3 WHERE id = $1
`

type SetAccountActiveParams struct {
	ID        string             `json:"id"`
	Active    bool               `json:"active"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetAccountActive(ctx context.Context, arg SetAccountActiveParams) (int64, error) {
	result, err := q.db.Exec(ctx, setAccountActive, arg.ID, arg.Active, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateAccountBalance = `-- name: UpdateAccountBalance :execrows
UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1
`

type UpdateAccountBalanceParams struct {
	ID        string             `json:"id"`
	Balance   pgtype.Numeric     `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, arg UpdateAccountBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccountBalance, arg.ID, arg.Balance, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
