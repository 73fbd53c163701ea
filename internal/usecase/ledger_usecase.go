package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// AccountProvisioner creates accounts inside a running transaction.
type AccountProvisioner interface {
	CreateAccountTx(ctx context.Context, tx Transaction, input CreateAccountInput) (*domain.Account, error)
}

// LedgerUseCase is the ledger engine. Every mutating operation runs as one
// database transaction: balance changes and the transaction record are
// committed together or not at all.
type LedgerUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	balanceRepo    BalanceRepository
	txRepo         TransactionRepository
	rates          RateProvider
	provisioner    AccountProvisioner
	fallback       domain.FallbackRateTable
	idGen          IDGenerator
	refGen         ReferenceGenerator
	retrier        Retrier
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	metrics        MetricsRecorder
	logger         zerolog.Logger
}

// LedgerDependencies groups the collaborators of LedgerUseCase.
// Retrier, Idempotency, Metrics and FallbackRates are optional.
type LedgerDependencies struct {
	TxManager      TransactionManager
	AccountRepo    AccountRepository
	BalanceRepo    BalanceRepository
	TxRepo         TransactionRepository
	Rates          RateProvider
	Provisioner    AccountProvisioner
	FallbackRates  domain.FallbackRateTable
	IDGen          IDGenerator
	RefGen         ReferenceGenerator
	Retrier        Retrier
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        MetricsRecorder
	Logger         zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(deps LedgerDependencies) *LedgerUseCase {
	retrier := deps.Retrier
	if retrier == nil {
		retrier = onceRetrier{}
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}

	return &LedgerUseCase{
		txManager:      deps.TxManager,
		accountRepo:    deps.AccountRepo,
		balanceRepo:    deps.BalanceRepo,
		txRepo:         deps.TxRepo,
		rates:          deps.Rates,
		provisioner:    deps.Provisioner,
		fallback:       deps.FallbackRates,
		idGen:          deps.IDGen,
		refGen:         deps.RefGen,
		retrier:        retrier,
		idempotency:    deps.Idempotency,
		idempotencyTTL: ttl,
		metrics:        metrics,
		logger:         deps.Logger.With().Str("component", "ledger").Logger(),
	}
}

// TransferInput represents input for moving value between two accounts.
type TransferInput struct {
	FromAccountID  string
	ToAccountID    string
	Amount         decimal.Decimal
	ActorID        string
	Description    string
	IdempotencyKey string
}

// Transfer debits the source account and credits the destination, converting
// through the rate store when the account currencies differ.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	return uc.execute(ctx, OpTransfer, input.IdempotencyKey, func(ctx context.Context, tx Transaction, now time.Time) (*domain.Transaction, error) {
		accounts, err := uc.lockAccounts(ctx, tx, input.FromAccountID, input.ToAccountID)
		if err != nil {
			return nil, err
		}

		from := accounts[input.FromAccountID]
		to := accounts[input.ToAccountID]

		if err := from.EnsureActive(); err != nil {
			return nil, err
		}
		if err := to.EnsureActive(); err != nil {
			return nil, err
		}

		if err := uc.debit(ctx, tx, from, from.Currency, "", input.Amount, now); err != nil {
			return nil, err
		}

		rate, source, err := uc.resolveRate(ctx, from.Currency, to.Currency)
		if err != nil {
			return nil, err
		}

		converted := input.Amount
		if source != domain.RateSourceIdentity {
			converted = domain.Convert(input.Amount, rate)
		}
		if !converted.IsPositive() {
			return nil, fmt.Errorf("%w: %s %s converts to zero %s", domain.ErrInvalidAmount, input.Amount, from.Currency, to.Currency)
		}

		if err := uc.credit(ctx, tx, to, to.Currency, "", converted, now); err != nil {
			return nil, err
		}

		return &domain.Transaction{
			Type:            domain.TransactionTransfer,
			FromAccountID:   &from.ID,
			ToAccountID:     &to.ID,
			FromCurrency:    from.Currency,
			ToCurrency:      to.Currency,
			Amount:          input.Amount,
			ExchangeRate:    rate,
			ConvertedAmount: converted,
			RateSource:      source,
			Description:     input.Description,
			ActorID:         input.ActorID,
		}, nil
	})
}

// AdjustFundsInput represents an admin credit or debit. Currency defaults to
// the account currency and WalletType to the primary wallet of the account
// category.
type AdjustFundsInput struct {
	AccountID      string
	Amount         decimal.Decimal
	Currency       string
	WalletType     domain.WalletType
	Description    string
	ActorID        string
	IdempotencyKey string
}

// AddFunds credits an account and records an admin_credit transaction.
func (uc *LedgerUseCase) AddFunds(ctx context.Context, input AdjustFundsInput) (*domain.Transaction, error) {
	if err := uc.validateAdjustment(&input); err != nil {
		return nil, err
	}

	return uc.execute(ctx, OpAddFunds, input.IdempotencyKey, func(ctx context.Context, tx Transaction, now time.Time) (*domain.Transaction, error) {
		account, err := uc.lockAccount(ctx, tx, input.AccountID)
		if err != nil {
			return nil, err
		}

		currency := input.Currency
		if currency == "" {
			currency = account.Currency
		}

		if err := uc.credit(ctx, tx, account, currency, input.WalletType, input.Amount, now); err != nil {
			return nil, err
		}

		return &domain.Transaction{
			Type:            domain.TransactionAdminCredit,
			ToAccountID:     &account.ID,
			FromCurrency:    currency,
			ToCurrency:      currency,
			Amount:          input.Amount,
			ExchangeRate:    decimal.NewFromInt(1),
			ConvertedAmount: input.Amount,
			RateSource:      domain.RateSourceIdentity,
			Description:     input.Description,
			ActorID:         input.ActorID,
		}, nil
	})
}

// RemoveFunds debits an account and records an admin_debit transaction.
func (uc *LedgerUseCase) RemoveFunds(ctx context.Context, input AdjustFundsInput) (*domain.Transaction, error) {
	if err := uc.validateAdjustment(&input); err != nil {
		return nil, err
	}

	return uc.execute(ctx, OpRemoveFunds, input.IdempotencyKey, func(ctx context.Context, tx Transaction, now time.Time) (*domain.Transaction, error) {
		account, err := uc.lockAccount(ctx, tx, input.AccountID)
		if err != nil {
			return nil, err
		}

		currency := input.Currency
		if currency == "" {
			currency = account.Currency
		}

		if err := uc.debit(ctx, tx, account, currency, input.WalletType, input.Amount, now); err != nil {
			return nil, err
		}

		return &domain.Transaction{
			Type:            domain.TransactionAdminDebit,
			FromAccountID:   &account.ID,
			FromCurrency:    currency,
			ToCurrency:      currency,
			Amount:          input.Amount,
			ExchangeRate:    decimal.NewFromInt(1),
			ConvertedAmount: input.Amount,
			RateSource:      domain.RateSourceIdentity,
			Description:     input.Description,
			ActorID:         input.ActorID,
		}, nil
	})
}

func (uc *LedgerUseCase) validateAdjustment(input *AdjustFundsInput) error {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return err
	}

	if input.Currency != "" {
		input.Currency = domain.NormalizeCurrency(input.Currency)
		if err := domain.ValidateCurrency(input.Currency); err != nil {
			return err
		}
	}

	if input.WalletType != "" && !input.WalletType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidWalletType, input.WalletType)
	}

	return nil
}

// ConvertInput represents a currency conversion out of an account. When
// ToAccountID is empty the owner's account of the same category in
// ToCurrency is used, and created if missing.
type ConvertInput struct {
	FromAccountID  string
	ToAccountID    string
	ToCurrency     string
	Amount         decimal.Decimal
	ActorID        string
	Description    string
	IdempotencyKey string
}

// Convert exchanges value from an account's currency into ToCurrency.
func (uc *LedgerUseCase) Convert(ctx context.Context, input ConvertInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	toCurrency := domain.NormalizeCurrency(input.ToCurrency)
	if err := domain.ValidateCurrency(toCurrency); err != nil {
		return nil, err
	}

	return uc.execute(ctx, OpConvert, input.IdempotencyKey, func(ctx context.Context, tx Transaction, now time.Time) (*domain.Transaction, error) {
		ids := []string{input.FromAccountID}
		if input.ToAccountID != "" {
			ids = append(ids, input.ToAccountID)
		}

		accounts, err := uc.lockAccounts(ctx, tx, ids...)
		if err != nil {
			return nil, err
		}

		from := accounts[input.FromAccountID]
		if err := from.EnsureActive(); err != nil {
			return nil, err
		}

		if from.Currency == toCurrency {
			return nil, fmt.Errorf("%w: %s", domain.ErrSameCurrency, toCurrency)
		}

		if err := uc.debit(ctx, tx, from, from.Currency, "", input.Amount, now); err != nil {
			return nil, err
		}

		rate, source, err := uc.resolveRate(ctx, from.Currency, toCurrency)
		if err != nil {
			return nil, err
		}

		converted := domain.Convert(input.Amount, rate)
		if !converted.IsPositive() {
			return nil, fmt.Errorf("%w: %s %s converts to zero %s", domain.ErrInvalidAmount, input.Amount, from.Currency, toCurrency)
		}

		var to *domain.Account
		if input.ToAccountID != "" {
			to = accounts[input.ToAccountID]
		} else {
			to, err = uc.findOrCreateTarget(ctx, tx, from, toCurrency)
			if err != nil {
				return nil, err
			}
		}

		if err := to.EnsureActive(); err != nil {
			return nil, err
		}

		if err := uc.credit(ctx, tx, to, toCurrency, "", converted, now); err != nil {
			return nil, err
		}

		return &domain.Transaction{
			Type:            domain.TransactionConversion,
			FromAccountID:   &from.ID,
			ToAccountID:     &to.ID,
			FromCurrency:    from.Currency,
			ToCurrency:      toCurrency,
			Amount:          input.Amount,
			ExchangeRate:    rate,
			ConvertedAmount: converted,
			RateSource:      source,
			Description:     input.Description,
			ActorID:         input.ActorID,
		}, nil
	})
}

func (uc *LedgerUseCase) findOrCreateTarget(ctx context.Context, tx Transaction, from *domain.Account, currency string) (*domain.Account, error) {
	to, err := uc.accountRepo.FindByOwnerForUpdate(ctx, tx, from.UserID, from.Category, currency)
	if err == nil {
		return to, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if uc.provisioner == nil {
		return nil, fmt.Errorf("%w: no %s %s account for user %s", domain.ErrAccountNotFound, from.Category, currency, from.UserID)
	}

	return uc.provisioner.CreateAccountTx(ctx, tx, CreateAccountInput{
		UserID:   from.UserID,
		Category: from.Category,
		Currency: currency,
	})
}

// Quote is a conversion preview.
type Quote struct {
	FromCurrency    string
	ToCurrency      string
	Amount          decimal.Decimal
	Rate            decimal.Decimal
	ConvertedAmount decimal.Decimal
	Source          domain.RateSource
}

// Quote prices a conversion without touching balances.
func (uc *LedgerUseCase) Quote(ctx context.Context, from, to string, amount decimal.Decimal) (*Quote, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)
	for _, code := range []string{from, to} {
		if err := domain.ValidateCurrency(code); err != nil {
			return nil, err
		}
	}

	rate, source, err := uc.resolveRate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &Quote{
		FromCurrency:    from,
		ToCurrency:      to,
		Amount:          amount,
		Rate:            rate,
		ConvertedAmount: domain.Convert(amount, rate),
		Source:          source,
	}, nil
}

// GetTransaction retrieves a transaction by reference.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, reference string) (*domain.Transaction, error) {
	if err := domain.ValidateID(reference); err != nil {
		return nil, err
	}
	return uc.txRepo.GetByReference(ctx, reference)
}

// ListTransactions lists transaction records, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	filter.Limit, filter.Offset = domain.NormalizePagination(filter.Limit, filter.Offset)

	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidTransaction, filter.Type)
	}

	return uc.txRepo.List(ctx, filter)
}

type ledgerOperation func(ctx context.Context, tx Transaction, now time.Time) (*domain.Transaction, error)

// execute claims the idempotency key, runs op in a retried transaction and
// records the outcome.
func (uc *LedgerUseCase) execute(ctx context.Context, name, idempotencyKey string, op ledgerOperation) (*domain.Transaction, error) {
	start := time.Now()

	key := ""
	if idempotencyKey != "" && uc.idempotency != nil {
		key = "ledger:" + name + ":" + idempotencyKey

		replayed, err := uc.claim(ctx, key)
		if err != nil {
			uc.metrics.ObserveOperation(name, "failed", time.Since(start))
			return nil, err
		}
		if replayed != nil {
			uc.metrics.ObserveOperation(name, "replayed", time.Since(start))
			return replayed, nil
		}
	}

	var record *domain.Transaction
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		record, err = uc.runInTx(ctx, op)
		return err
	})
	if err != nil {
		if key != "" {
			if delErr := uc.idempotency.Delete(ctx, key); delErr != nil {
				uc.logger.Warn().Err(delErr).Str("key", key).Msg("failed to release idempotency key")
			}
		}

		uc.metrics.ObserveOperation(name, "failed", time.Since(start))
		uc.logger.Warn().Err(err).Str("operation", name).Msg("ledger operation rejected")

		return nil, err
	}

	if key != "" {
		if err := uc.idempotency.Update(ctx, key, []byte(record.Reference), uc.idempotencyTTL); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to store idempotency result")
		}
	}

	uc.metrics.ObserveOperation(name, "completed", time.Since(start))
	uc.logger.Info().
		Str("reference", record.Reference).
		Str("type", string(record.Type)).
		Str("amount", record.Amount.String()).
		Str("from_currency", record.FromCurrency).
		Str("to_currency", record.ToCurrency).
		Str("converted_amount", record.ConvertedAmount.String()).
		Str("rate_source", string(record.RateSource)).
		Msg("ledger operation committed")

	return record, nil
}

// claim returns the recorded transaction when key already completed.
func (uc *LedgerUseCase) claim(ctx context.Context, key string) (*domain.Transaction, error) {
	exists, existing, err := uc.idempotency.CheckAndSet(ctx, key, []byte(idempotencyProcessing), uc.idempotencyTTL)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	if string(existing) == idempotencyProcessing {
		return nil, domain.ErrDuplicateRequest
	}

	return uc.txRepo.GetByReference(ctx, string(existing))
}

func (uc *LedgerUseCase) runInTx(ctx context.Context, op ledgerOperation) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	record, err := op(txCtx, tx, now)
	if err != nil {
		return nil, err
	}

	record.ID = uc.idGen.Generate()
	record.Reference = uc.refGen.TransactionReference()
	record.Status = domain.StatusCompleted
	record.CreatedAt = now

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Create(txCtx, tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return record, nil
}

// lockAccounts locks the given accounts in sorted ID order.
func (uc *LedgerUseCase) lockAccounts(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Account, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, unique)
	if err != nil {
		return nil, err
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	for _, id := range unique {
		if m[id] == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
	}

	return m, nil
}

func (uc *LedgerUseCase) lockAccount(ctx context.Context, tx Transaction, id string) (*domain.Account, error) {
	accounts, err := uc.lockAccounts(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	account := accounts[id]
	if err := account.EnsureActive(); err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *LedgerUseCase) balanceKey(account *domain.Account, currency string, wallet domain.WalletType) (domain.BalanceKey, error) {
	if wallet == "" {
		return account.PrimaryBalanceKey(currency)
	}

	key := domain.BalanceKey{
		AccountID: account.ID,
		Wallet:    wallet,
		Currency:  currency,
		Kind:      domain.BalanceKindAvailable,
	}

	return key, key.Validate()
}

// credit adds amount to the balance at (account, wallet, currency, available),
// creating the row on first use.
func (uc *LedgerUseCase) credit(ctx context.Context, tx Transaction, account *domain.Account, currency string, wallet domain.WalletType, amount decimal.Decimal, now time.Time) error {
	key, err := uc.balanceKey(account, currency, wallet)
	if err != nil {
		return err
	}

	balance, err := uc.balanceRepo.GetOrCreateForUpdate(ctx, tx, key, uc.idGen.Generate(), now)
	if err != nil {
		return err
	}

	if err := balance.Credit(amount); err != nil {
		return err
	}

	balance.UpdatedAt = now
	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return err
	}

	return uc.mirror(ctx, tx, account, balance, amount, now)
}

// debit subtracts amount from the balance at (account, wallet, currency,
// available). A missing row holds nothing.
func (uc *LedgerUseCase) debit(ctx context.Context, tx Transaction, account *domain.Account, currency string, wallet domain.WalletType, amount decimal.Decimal, now time.Time) error {
	key, err := uc.balanceKey(account, currency, wallet)
	if err != nil {
		return err
	}

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx, key)
	if errors.Is(err, domain.ErrBalanceRecordMissing) {
		return fmt.Errorf("%w: no %s balance in %s wallet of %s", domain.ErrInsufficientFunds, key.Currency, key.Wallet, account.Number)
	}
	if err != nil {
		return err
	}

	if err := balance.Debit(amount); err != nil {
		return err
	}

	balance.UpdatedAt = now
	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return err
	}

	return uc.mirror(ctx, tx, account, balance, amount.Neg(), now)
}

// mirror keeps the cached aggregate balance in step with the wallet balances
// of the account's primary currency.
func (uc *LedgerUseCase) mirror(ctx context.Context, tx Transaction, account *domain.Account, balance *domain.Balance, delta decimal.Decimal, now time.Time) error {
	if !account.Mirrors(balance) {
		return nil
	}

	next := account.ApplyMirror(delta)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, next, now); err != nil {
		return err
	}

	account.Balance = next
	account.UpdatedAt = now

	return nil
}

// resolveRate returns the rate for from -> to. Database rates win; the static
// fallback table is consulted only when the store has nothing.
func (uc *LedgerUseCase) resolveRate(ctx context.Context, from, to string) (decimal.Decimal, domain.RateSource, error) {
	if from == to {
		return decimal.NewFromInt(1), domain.RateSourceIdentity, nil
	}

	rate, ok, err := uc.rates.GetBidirectional(ctx, from, to)
	if err != nil {
		return decimal.Zero, "", err
	}
	if ok {
		return rate, domain.RateSourceDatabase, nil
	}

	if rate, ok := uc.fallback.Lookup(from, to); ok {
		uc.metrics.RateFallback(from, to)
		uc.logger.Warn().
			Str("from", from).
			Str("to", to).
			Str("rate", rate.String()).
			Msg("no stored exchange rate, using static fallback rate")

		return rate, domain.RateSourceFallback, nil
	}

	return decimal.Zero, "", fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, from, to)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, time.Duration) {}
func (noopMetrics) RateFallback(string, string)                    {}
func (noopMetrics) ReconciliationMismatches(int)                   {}
