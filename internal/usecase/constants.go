package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// MaxAccountNumberAttempts bounds account number collision retries.
	MaxAccountNumberAttempts = 5

	// DefaultFiatCurrency and DefaultCryptoCurrency seed the accounts every user receives.
	DefaultFiatCurrency   = "USD"
	DefaultCryptoCurrency = "USDT"

	idempotencyProcessing = "processing"
)

// Operation names used for metrics and logs.
const (
	OpTransfer    = "transfer"
	OpAddFunds    = "add_funds"
	OpRemoveFunds = "remove_funds"
	OpConvert     = "convert"
)
