package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAccountCategory(t *testing.T) {
	tests := []struct {
		input       string
		want        AccountCategory
		expectError bool
	}{
		{input: "fiat", want: CategoryFiat},
		{input: " Crypto ", want: CategoryCrypto},
		{input: "stock", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAccountCategory(tt.input)

			if tt.expectError {
				if !errors.Is(err, ErrInvalidCategory) {
					t.Fatalf("expected ErrInvalidCategory, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAccount_PrimaryWallet(t *testing.T) {
	fiat := &Account{ID: "a", Category: CategoryFiat}
	crypto := &Account{ID: "b", Category: CategoryCrypto}
	unknown := &Account{ID: "c", Category: "stock"}

	if w, err := fiat.PrimaryWallet(); err != nil || w != WalletFiat {
		t.Fatalf("expected fiat wallet, got %s (%v)", w, err)
	}

	if w, err := crypto.PrimaryWallet(); err != nil || w != WalletSpot {
		t.Fatalf("expected spot wallet, got %s (%v)", w, err)
	}

	if _, err := unknown.PrimaryWallet(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestAccount_PrimaryBalanceKey(t *testing.T) {
	acc := &Account{ID: "acc-1", Category: CategoryCrypto, Currency: "USDT"}

	key, err := acc.PrimaryBalanceKey("USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := BalanceKey{AccountID: "acc-1", Wallet: WalletSpot, Currency: "USDT", Kind: BalanceKindAvailable}
	if key != want {
		t.Fatalf("expected %+v, got %+v", want, key)
	}
}

func TestAccount_Mirrors(t *testing.T) {
	acc := &Account{ID: "acc-1", Category: CategoryFiat, Currency: "USD"}

	tests := []struct {
		name    string
		balance *Balance
		want    bool
	}{
		{
			name:    "primary currency available",
			balance: &Balance{AccountID: "acc-1", WalletType: WalletFiat, Currency: "USD", Kind: BalanceKindAvailable},
			want:    true,
		},
		{
			name:    "other wallet same currency",
			balance: &Balance{AccountID: "acc-1", WalletType: WalletFunding, Currency: "USD", Kind: BalanceKindAvailable},
			want:    true,
		},
		{
			name:    "other currency",
			balance: &Balance{AccountID: "acc-1", WalletType: WalletFiat, Currency: "EUR", Kind: BalanceKindAvailable},
			want:    false,
		},
		{
			name:    "locked kind",
			balance: &Balance{AccountID: "acc-1", WalletType: WalletFiat, Currency: "USD", Kind: BalanceKindLocked},
			want:    false,
		},
		{
			name:    "other account",
			balance: &Balance{AccountID: "acc-2", WalletType: WalletFiat, Currency: "USD", Kind: BalanceKindAvailable},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acc.Mirrors(tt.balance); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccount_EnsureActive(t *testing.T) {
	if err := (&Account{Active: true}).EnsureActive(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (&Account{Number: "FT1"}).EnsureActive(); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestAccount_ApplyMirror(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}

	got := acc.ApplyMirror(decimal.NewFromInt(-30))
	if !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected balance 70, got %s", got)
	}
}
