package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WalletType is a sub-ledger classification distinguishing pools of the same currency.
type WalletType string

const (
	WalletSpot    WalletType = "spot"
	WalletFunding WalletType = "funding"
	WalletEarning WalletType = "earning"
	WalletFiat    WalletType = "fiat"
)

var validWalletTypes = map[WalletType]bool{
	WalletSpot:    true,
	WalletFunding: true,
	WalletEarning: true,
	WalletFiat:    true,
}

// primaryWallets maps each account category to its default wallet.
var primaryWallets = map[AccountCategory]WalletType{
	CategoryFiat:   WalletFiat,
	CategoryCrypto: WalletSpot,
}

// IsValid reports whether w is a known wallet type.
func (w WalletType) IsValid() bool {
	return validWalletTypes[w]
}

// ParseWalletType parses a wallet type name. An empty string yields an
// empty WalletType and no error so callers can fall back to the primary wallet.
func ParseWalletType(s string) (WalletType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}

	w := WalletType(s)
	if !w.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletType, s)
	}

	return w, nil
}

// PrimaryWalletType resolves the default wallet for a category.
func PrimaryWalletType(c AccountCategory) (WalletType, error) {
	w, ok := primaryWallets[c]
	if !ok {
		return "", fmt.Errorf("%w: %q has no wallet mapping", ErrInvalidCategory, c)
	}
	return w, nil
}

// BalanceKind distinguishes availability states of the same funds.
type BalanceKind string

const (
	BalanceKindAvailable    BalanceKind = "available"
	BalanceKindWithdrawable BalanceKind = "withdrawable"
	BalanceKindLocked       BalanceKind = "locked"
)

// IsValid reports whether k is a known balance kind.
func (k BalanceKind) IsValid() bool {
	switch k {
	case BalanceKindAvailable, BalanceKindWithdrawable, BalanceKindLocked:
		return true
	}
	return false
}

// BalanceKey is the composite identity of a Balance.
type BalanceKey struct {
	AccountID string
	Wallet    WalletType
	Currency  string
	Kind      BalanceKind
}

// Validate checks every component of the key.
func (k BalanceKey) Validate() error {
	if k.AccountID == "" {
		return ErrAccountNotFound
	}
	if !k.Wallet.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWalletType, k.Wallet)
	}
	if !k.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBalanceKind, k.Kind)
	}
	return ValidateCurrency(k.Currency)
}

func (k BalanceKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.AccountID, k.Wallet, k.Currency, k.Kind)
}

// Balance is the quantity held at one (account, wallet, currency, kind).
type Balance struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	AccountID  string
	WalletType WalletType
	Currency   string
	Kind       BalanceKind
	Amount     decimal.Decimal
	Version    int64
}

// Key returns the composite key of b.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{
		AccountID: b.AccountID,
		Wallet:    b.WalletType,
		Currency:  b.Currency,
		Kind:      b.Kind,
	}
}

// Credit adds amount to the balance.
func (b *Balance) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	b.Amount = b.Amount.Add(amount)
	b.Version++

	return nil
}

// Debit subtracts amount, refusing to go below zero.
func (b *Balance) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if b.Amount.LessThan(amount) {
		return fmt.Errorf("%w: %s %s %s available, %s requested",
			ErrInsufficientFunds, b.Amount, b.Currency, b.WalletType, amount)
	}

	b.Amount = b.Amount.Sub(amount)
	b.Version++

	return nil
}
