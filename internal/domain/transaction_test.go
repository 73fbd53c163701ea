package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Validate(t *testing.T) {
	accountID := "account-1"

	valid := func() *Transaction {
		return &Transaction{
			Type:            TransactionTransfer,
			FromAccountID:   &accountID,
			Amount:          decimal.NewFromInt(100),
			ExchangeRate:    decimal.NewFromInt(1),
			ConvertedAmount: decimal.NewFromInt(100),
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Transaction)
		expectError error
	}{
		{
			name:   "valid transaction",
			mutate: func(*Transaction) {},
		},
		{
			name:        "unknown type",
			mutate:      func(tx *Transaction) { tx.Type = "refund" },
			expectError: ErrInvalidTransaction,
		},
		{
			name:        "zero amount",
			mutate:      func(tx *Transaction) { tx.Amount = decimal.Zero },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "zero converted amount",
			mutate:      func(tx *Transaction) { tx.ConvertedAmount = decimal.Zero },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "non-positive rate",
			mutate:      func(tx *Transaction) { tx.ExchangeRate = decimal.Zero },
			expectError: ErrInvalidRate,
		},
		{
			name:        "no accounts",
			mutate:      func(tx *Transaction) { tx.FromAccountID = nil },
			expectError: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(tx)

			err := tx.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}
