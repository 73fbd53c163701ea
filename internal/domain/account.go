package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory separates fiat and crypto holdings of a user.
type AccountCategory string

const (
	CategoryFiat   AccountCategory = "fiat"
	CategoryCrypto AccountCategory = "crypto"
)

var accountNumberPrefixes = map[AccountCategory]string{
	CategoryFiat:   "FT",
	CategoryCrypto: "CR",
}

// IsValid reports whether c is a known category.
func (c AccountCategory) IsValid() bool {
	_, ok := accountNumberPrefixes[c]
	return ok
}

// NumberPrefix returns the account number prefix for the category.
func (c AccountCategory) NumberPrefix() string {
	return accountNumberPrefixes[c]
}

// ParseAccountCategory parses a category name.
func ParseAccountCategory(s string) (AccountCategory, error) {
	c := AccountCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Account is a user-owned container for one currency category.
//
// Balance is a cached projection: the sum of the account's available
// wallet balances in its primary currency. Wallet balances are the
// source of truth.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Number    string
	UserID    string
	Category  AccountCategory
	Currency  string
	Balance   decimal.Decimal
	Active    bool
}

// EnsureActive returns ErrAccountInactive for soft-disabled accounts.
func (a *Account) EnsureActive() error {
	if !a.Active {
		return fmt.Errorf("%w: %s", ErrAccountInactive, a.Number)
	}
	return nil
}

// PrimaryWallet returns the wallet the engine debits and credits by default.
func (a *Account) PrimaryWallet() (WalletType, error) {
	return PrimaryWalletType(a.Category)
}

// PrimaryBalanceKey returns the key of the available balance in the primary
// wallet for currency.
func (a *Account) PrimaryBalanceKey(currency string) (BalanceKey, error) {
	wallet, err := a.PrimaryWallet()
	if err != nil {
		return BalanceKey{}, err
	}

	return BalanceKey{
		AccountID: a.ID,
		Wallet:    wallet,
		Currency:  currency,
		Kind:      BalanceKindAvailable,
	}, nil
}

// Mirrors reports whether a change to balance must be reflected in the
// aggregate Balance.
func (a *Account) Mirrors(balance *Balance) bool {
	return balance.AccountID == a.ID &&
		balance.Currency == a.Currency &&
		balance.Kind == BalanceKindAvailable
}

// ApplyMirror returns the aggregate balance after delta.
func (a *Account) ApplyMirror(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// User is the identity collaborator an account set is created for.
type User struct {
	CreatedAt time.Time
	ID        string
	Email     string
	Name      string
}
