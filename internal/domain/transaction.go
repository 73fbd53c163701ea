package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger operation.
type TransactionType string

const (
	TransactionTransfer    TransactionType = "transfer"
	TransactionAdminCredit TransactionType = "admin_credit"
	TransactionAdminDebit  TransactionType = "admin_debit"
	TransactionConversion  TransactionType = "conversion"
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
)

// IsValid reports whether t is a known type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTransfer, TransactionAdminCredit, TransactionAdminDebit,
		TransactionConversion, TransactionDeposit, TransactionWithdrawal:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is the immutable audit record of one committed ledger operation.
type Transaction struct {
	CreatedAt       time.Time
	FromAccountID   *string
	ToAccountID     *string
	ID              string
	Reference       string
	Type            TransactionType
	FromCurrency    string
	ToCurrency      string
	Description     string
	ActorID         string
	Status          TransactionStatus
	RateSource      RateSource
	Amount          decimal.Decimal
	ExchangeRate    decimal.Decimal
	ConvertedAmount decimal.Decimal
}

// Validate checks the record before it is written.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) || t.ConvertedAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	if t.FromAccountID == nil && t.ToAccountID == nil {
		return fmt.Errorf("%w: no account referenced", ErrInvalidTransaction)
	}

	return nil
}

// TransactionFilter narrows read-only transaction listings.
type TransactionFilter struct {
	AccountID string
	Type      TransactionType
	Limit     int
	Offset    int
}
