package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fractional digits kept for amounts and balances.
	MoneyScale = 8
	// RateScale is the number of fractional digits kept for exchange rates.
	RateScale = 8
)

// MaxAmount caps a single ledger operation.
var MaxAmount = decimal.RequireFromString("1000000000000")

// ParseAmount parses raw admin input into a validated amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}

	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// ValidateAmount checks that amount is positive, bounded and representable at MoneyScale.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}

	if !amount.Equal(amount.Round(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, MoneyScale)
	}

	return nil
}

// RoundMoney rounds d to MoneyScale.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundRate rounds d to RateScale.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// Convert applies rate to amount and rounds the result to MoneyScale.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}
