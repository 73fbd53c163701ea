package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
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

type Balance struct {
	ID         string             `json:"id"`
	AccountID  string             `json:"account_id"`
	WalletType string             `json:"wallet_type"`
	Currency   string             `json:"currency"`
	Kind       string             `json:"kind"`
	Amount     pgtype.Numeric     `json:"amount"`
	Version    int64              `json:"version"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

type ExchangeRate struct {
	ID           string             `json:"id"`
	FromCurrency string             `json:"from_currency"`
	ToCurrency   string             `json:"to_currency"`
	Rate         pgtype.Numeric     `json:"rate"`
	Active       bool               `json:"active"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type Transaction struct {
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
