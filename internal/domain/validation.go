package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrDescriptionTooLong = errors.New("description exceeds limit")
	ErrInvalidIDFormat    = errors.New("invalid ID format")
)

// Validation constants
const (
	MaxDescriptionLength = 500
	MaxReferenceLength   = 64

	DefaultPageSize = 50
	MaxPageSize     = 1000
	// MaxPageOffset keeps offsets representable as a Postgres integer.
	MaxPageOffset = math.MaxInt32
)

// Currency codes cover ISO 4217 fiat codes and crypto tickers (USDT, BTC, ...).
var currencyRegex = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates an already normalized currency code.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateDescription validates a free-text description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters max", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateID validates an identifier or reference supplied by a caller.
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > MaxReferenceLength {
		return fmt.Errorf("%w: %q", ErrInvalidIDFormat, id)
	}

	return nil
}

// NormalizePagination clamps limit to [1, MaxPageSize], defaulting to
// DefaultPageSize, and offset to [0, MaxPageOffset].
func NormalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}
	if offset > MaxPageOffset {
		offset = MaxPageOffset
	}

	return limit, offset
}
