package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// RateUseCase is the exchange rate store. Writes are canonicalized inline;
// the ledger only reads.
type RateUseCase struct {
	rateRepo ExchangeRateRepository
	cache    RateCache
	idGen    IDGenerator
	logger   zerolog.Logger
}

// NewRateUseCase creates a new RateUseCase. cache may be nil.
func NewRateUseCase(rateRepo ExchangeRateRepository, cache RateCache, idGen IDGenerator, logger zerolog.Logger) *RateUseCase {
	return &RateUseCase{
		rateRepo: rateRepo,
		cache:    cache,
		idGen:    idGen,
		logger:   logger.With().Str("component", "rates").Logger(),
	}
}

// UpsertRateInput represents input for saving a rate.
type UpsertRateInput struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	Active       bool
}

// Upsert saves a rate in canonical order. A same-currency pair is returned as
// the identity rate without touching storage.
func (uc *RateUseCase) Upsert(ctx context.Context, input UpsertRateInput) (*domain.ExchangeRate, error) {
	rate, err := domain.NewExchangeRate(input.FromCurrency, input.ToCurrency, input.Rate, input.Active)
	if err != nil {
		return nil, err
	}

	if rate.IsIdentity() {
		return rate, nil
	}

	now := time.Now().UTC()
	rate.ID = uc.idGen.Generate()
	rate.CreatedAt = now
	rate.UpdatedAt = now

	if err := uc.rateRepo.Upsert(ctx, rate); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, rate.FromCurrency, rate.ToCurrency)

	uc.logger.Info().
		Str("from", rate.FromCurrency).
		Str("to", rate.ToCurrency).
		Str("rate", rate.Rate.String()).
		Bool("active", rate.Active).
		Msg("exchange rate saved")

	return rate, nil
}

// GetDirect looks up the active rate for the exact direction from -> to.
func (uc *RateUseCase) GetDirect(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)

	if from == to {
		return decimal.NewFromInt(1), true, nil
	}

	if uc.cache != nil {
		rate, ok, err := uc.cache.Get(ctx, from, to)
		if err != nil {
			uc.logger.Warn().Err(err).Str("from", from).Str("to", to).Msg("rate cache read failed")
		} else if ok {
			return rate, true, nil
		}
	}

	stored, err := uc.rateRepo.GetActive(ctx, from, to)
	if errors.Is(err, domain.ErrRateNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	if uc.cache != nil {
		uc.fill(ctx, from, to, stored)
	}

	return stored.Rate, true, nil
}

// fill caches stored, then re-reads the row. A writer that committed between
// the first read and the cache write has already run its invalidation, so a
// changed or missing row means the entry just written is stale.
func (uc *RateUseCase) fill(ctx context.Context, from, to string, stored *domain.ExchangeRate) {
	if err := uc.cache.Set(ctx, from, to, stored.Rate); err != nil {
		uc.logger.Warn().Err(err).Str("from", from).Str("to", to).Msg("rate cache write failed")
		return
	}

	current, err := uc.rateRepo.GetActive(ctx, from, to)
	if err == nil && current.Rate.Equal(stored.Rate) && current.UpdatedAt.Equal(stored.UpdatedAt) {
		return
	}

	if err := uc.cache.Invalidate(ctx, from, to); err != nil {
		uc.logger.Warn().Err(err).Str("from", from).Str("to", to).Msg("rate cache invalidation failed")
		return
	}
	uc.logger.Debug().Str("from", from).Str("to", to).Msg("rate changed during cache fill")
}

// GetBidirectional returns 1 for equal codes, else the direct rate, else the
// inverse of the reverse rate.
func (uc *RateUseCase) GetBidirectional(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)

	if from == to {
		return decimal.NewFromInt(1), true, nil
	}

	rate, ok, err := uc.GetDirect(ctx, from, to)
	if err != nil || ok {
		return rate, ok, err
	}

	inverse, ok, err := uc.GetDirect(ctx, to, from)
	if err != nil || !ok {
		return decimal.Zero, false, err
	}

	return domain.InvertRate(inverse), true, nil
}

// List returns stored rates.
func (uc *RateUseCase) List(ctx context.Context, activeOnly bool) ([]*domain.ExchangeRate, error) {
	return uc.rateRepo.List(ctx, activeOnly)
}

// Deactivate disables the stored row for the unordered pair.
func (uc *RateUseCase) Deactivate(ctx context.Context, from, to string) error {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)

	if err := domain.ValidateCurrency(from); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(to); err != nil {
		return err
	}
	if from == to {
		return domain.ErrSameCurrency
	}

	from, to = domain.CanonicalPair(from, to)
	if err := uc.rateRepo.SetActive(ctx, from, to, false, time.Now().UTC()); err != nil {
		return err
	}

	uc.invalidate(ctx, from, to)

	return nil
}

func (uc *RateUseCase) invalidate(ctx context.Context, from, to string) {
	if uc.cache == nil {
		return
	}

	// Both directions: GetDirect caches by the exact requested direction.
	for _, pair := range [][2]string{{from, to}, {to, from}} {
		if err := uc.cache.Invalidate(ctx, pair[0], pair[1]); err != nil {
			uc.logger.Warn().Err(err).Str("from", pair[0]).Str("to", pair[1]).Msg("rate cache invalidation failed")
		}
	}
}
