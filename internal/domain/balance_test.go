package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBalance_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError error
		want        decimal.Decimal
	}{
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(40),
			want:        decimal.NewFromInt(60),
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			want:        decimal.Zero,
		},
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: ErrInsufficientFunds,
			want:        decimal.NewFromInt(100),
		},
		{
			name:        "zero debit",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.Zero,
			expectError: ErrInvalidAmount,
			want:        decimal.NewFromInt(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Balance{Amount: tt.balance, Currency: "USD", WalletType: WalletFiat}

			err := b.Debit(tt.debitAmount)

			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
			if tt.expectError == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !b.Amount.Equal(tt.want) {
				t.Fatalf("expected balance %s, got %s", tt.want, b.Amount)
			}
		})
	}
}

func TestBalance_Credit(t *testing.T) {
	b := &Balance{Amount: decimal.NewFromInt(10)}

	if err := b.Credit(decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("expected 10.5, got %s", b.Amount)
	}
	if b.Version != 1 {
		t.Fatalf("expected version 1, got %d", b.Version)
	}

	if err := b.Credit(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestParseWalletType(t *testing.T) {
	if w, err := ParseWalletType(""); err != nil || w != "" {
		t.Fatalf("expected empty wallet without error, got %q (%v)", w, err)
	}

	if w, err := ParseWalletType("Funding"); err != nil || w != WalletFunding {
		t.Fatalf("expected funding, got %q (%v)", w, err)
	}

	if _, err := ParseWalletType("margin"); !errors.Is(err, ErrInvalidWalletType) {
		t.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}
}

func TestBalanceKey_Validate(t *testing.T) {
	valid := BalanceKey{AccountID: "acc", Wallet: WalletSpot, Currency: "USDT", Kind: BalanceKindAvailable}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := valid
	bad.Wallet = "margin"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidWalletType) {
		t.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}

	bad = valid
	bad.Kind = "frozen"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidBalanceKind) {
		t.Fatalf("expected ErrInvalidBalanceKind, got %v", err)
	}

	bad = valid
	bad.Currency = "usdt"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}
