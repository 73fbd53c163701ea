package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// ReconciliationUseCase checks the cached account balances against the
// wallet balances they are derived from.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	metrics     MetricsRecorder
	logger      zerolog.Logger

	mu   sync.RWMutex
	last *ReconciliationReport
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		metrics:     metrics,
		logger:      logger.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	AccountNumber     string
	Currency          string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares an account's aggregate balance with the sum of
// its available wallet balances in the primary currency.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	calculated, err := uc.balanceRepo.SumAvailable(ctx, account.ID, account.Currency)
	if err != nil {
		return nil, err
	}

	diff := account.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         account.ID,
		AccountNumber:     account.Number,
		Currency:          account.Currency,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system page by page.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	limit := domain.MaxPageSize

	var results []*ReconciliationResult
	for offset := 0; ; offset += limit {
		accounts, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < limit {
			break
		}
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReconciliationReport reconciles every account and reports the
// discrepancies.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
			continue
		}

		report.Discrepancies = append(report.Discrepancies, result)
		uc.logger.Error().
			Str("account", result.AccountNumber).
			Str("recorded", result.RecordedBalance.String()).
			Str("calculated", result.CalculatedBalance.String()).
			Msg("account balance out of sync with wallet balances")
	}

	uc.metrics.ReconciliationMismatches(len(report.Discrepancies))

	uc.mu.Lock()
	uc.last = report
	uc.mu.Unlock()

	return report, nil
}

// LastReport returns the most recent report, or nil before the first run.
func (uc *ReconciliationUseCase) LastReport() *ReconciliationReport {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.last
}

// Run generates a report immediately and then every interval until ctx is
// done. Failed runs are logged and retried on the next tick.
func (uc *ReconciliationUseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := uc.GenerateReconciliationReport(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			uc.logger.Error().Err(err).Msg("reconciliation run failed")
		} else {
			uc.logger.Info().
				Int("accounts", report.TotalAccounts).
				Int("discrepancies", len(report.Discrepancies)).
				Msg("reconciliation run completed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
