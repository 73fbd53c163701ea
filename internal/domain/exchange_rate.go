package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate expresses units of ToCurrency per unit of FromCurrency.
// Stored rates are canonical: FromCurrency < ToCurrency.
type ExchangeRate struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	Active       bool
}

// NewExchangeRate normalizes and canonicalizes a rate. Equal currencies yield
// an identity rate (1, active) that is never persisted.
func NewExchangeRate(from, to string, rate decimal.Decimal, active bool) (*ExchangeRate, error) {
	from = NormalizeCurrency(from)
	to = NormalizeCurrency(to)

	if err := ValidateCurrency(from); err != nil {
		return nil, err
	}
	if err := ValidateCurrency(to); err != nil {
		return nil, err
	}

	if from == to {
		return &ExchangeRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         decimal.NewFromInt(1),
			Active:       true,
		}, nil
	}

	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidRate
	}

	r := &ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		Active:       active,
	}
	r.Canonicalize()

	if r.Rate.IsZero() {
		return nil, fmt.Errorf("%w: %s rounds to zero at %d decimals", ErrInvalidRate, rate, RateScale)
	}

	return r, nil
}

// IsIdentity reports whether r is a same-currency rate.
func (r *ExchangeRate) IsIdentity() bool {
	return r.FromCurrency == r.ToCurrency
}

// IsCanonical reports whether the pair is stored in lexicographic order.
func (r *ExchangeRate) IsCanonical() bool {
	return r.FromCurrency < r.ToCurrency
}

// Canonicalize swaps the pair and inverts the rate when From > To.
func (r *ExchangeRate) Canonicalize() {
	if r.FromCurrency > r.ToCurrency {
		r.FromCurrency, r.ToCurrency = r.ToCurrency, r.FromCurrency
		r.Rate = InvertRate(r.Rate)
		return
	}
	r.Rate = RoundRate(r.Rate)
}

// InvertRate returns 1/rate at RateScale.
func InvertRate(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).DivRound(rate, RateScale)
}

// CanonicalPair orders two currency codes lexicographically.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// RateSource records where an applied exchange rate came from.
type RateSource string

const (
	RateSourceIdentity RateSource = "identity"
	RateSourceDatabase RateSource = "database"
	RateSourceFallback RateSource = "fallback"
)

// FallbackRateTable holds static USD-denominated rates: units of currency per 1 USD.
type FallbackRateTable map[string]decimal.Decimal

const fallbackBase = "USD"

// ParseFallbackRates builds a table from "CODE" -> "rate" pairs.
func ParseFallbackRates(raw map[string]string) (FallbackRateTable, error) {
	table := make(FallbackRateTable, len(raw))
	for code, value := range raw {
		code = NormalizeCurrency(code)
		if err := ValidateCurrency(code); err != nil {
			return nil, err
		}

		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: fallback rate for %s: %q", ErrInvalidRate, code, value)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: fallback rate for %s", ErrInvalidRate, code)
		}

		table[code] = rate
	}
	return table, nil
}

// Lookup derives the from->to rate through USD.
func (t FallbackRateTable) Lookup(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	fromPerUSD, ok := t.perUSD(from)
	if !ok {
		return decimal.Zero, false
	}
	toPerUSD, ok := t.perUSD(to)
	if !ok {
		return decimal.Zero, false
	}

	rate := toPerUSD.DivRound(fromPerUSD, RateScale)
	if rate.IsZero() {
		return decimal.Zero, false
	}
	return rate, true
}

func (t FallbackRateTable) perUSD(code string) (decimal.Decimal, bool) {
	if code == fallbackBase {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t[code]
	return rate, ok
}
