package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidCategory    = errors.New("invalid account category")
	ErrReferenceExhausted = errors.New("could not generate a unique reference")

	// Balance errors
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBalanceRecordMissing = errors.New("balance record missing")
	ErrInvalidWalletType    = errors.New("invalid wallet type")
	ErrInvalidBalanceKind   = errors.New("invalid balance kind")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction record")
	ErrDuplicateRequest    = errors.New("request with this idempotency key is already in progress")

	// Exchange rate errors
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrInvalidRate     = errors.New("exchange rate must be positive")
	ErrSameCurrency    = errors.New("source and target currency are the same")

	// Storage errors
	ErrStorageConflict = errors.New("storage conflict, retry the operation")
)
