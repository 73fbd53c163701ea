package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase/mocks"
)

type ledgerFixture struct {
	accounts  *mocks.MockAccountRepository
	balances  *mocks.MockBalanceRepository
	records   *mocks.MockTransactionRepository
	rateRepo  *mocks.MockExchangeRateRepository
	txManager *mocks.MockTransactionManager
	retrier   *mocks.MockRetrier
	idem      *mocks.MockIdempotencyStore
	metrics   *mocks.MockMetrics

	rates      *usecase.RateUseCase
	accountsUC *usecase.AccountUseCase
	ledger     *usecase.LedgerUseCase
}

func newLedgerFixture(t *testing.T, fallback domain.FallbackRateTable) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		accounts: mocks.NewMockAccountRepository(),
		balances: mocks.NewMockBalanceRepository(),
		records:  mocks.NewMockTransactionRepository(),
		rateRepo: mocks.NewMockExchangeRateRepository(),
		retrier:  mocks.NewMockRetrier(),
		idem:     mocks.NewMockIdempotencyStore(),
		metrics:  mocks.NewMockMetrics(),
	}
	f.txManager = mocks.NewMockTransactionManager(f.accounts, f.balances, f.records)

	idGen := mocks.NewMockIDGenerator()
	refGen := mocks.NewMockReferenceGenerator()
	logger := zerolog.Nop()

	f.rates = usecase.NewRateUseCase(f.rateRepo, mocks.NewMockRateCache(), idGen, logger)

	f.accountsUC = usecase.NewAccountUseCase(usecase.AccountDependencies{
		TxManager:   f.txManager,
		AccountRepo: f.accounts,
		BalanceRepo: f.balances,
		IDGen:       idGen,
		RefGen:      refGen,
		Logger:      logger,
	})

	f.ledger = usecase.NewLedgerUseCase(usecase.LedgerDependencies{
		TxManager:     f.txManager,
		AccountRepo:   f.accounts,
		BalanceRepo:   f.balances,
		TxRepo:        f.records,
		Rates:         f.rates,
		Provisioner:   f.accountsUC,
		FallbackRates: fallback,
		IDGen:         idGen,
		RefGen:        refGen,
		Retrier:       f.retrier,
		Idempotency:   f.idem,
		Metrics:       f.metrics,
		Logger:        logger,
	})

	return f
}

// openAccount creates an account and credits it through the ledger when
// funded is non-empty.
func (f *ledgerFixture) openAccount(t *testing.T, userID string, category domain.AccountCategory, currency, funded string) *domain.Account {
	t.Helper()

	ctx := context.Background()

	account, err := f.accountsUC.CreateAccount(ctx, usecase.CreateAccountInput{
		UserID:   userID,
		Category: category,
		Currency: currency,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if funded != "" {
		if _, err := f.ledger.AddFunds(ctx, usecase.AdjustFundsInput{
			AccountID: account.ID,
			Amount:    decimal.RequireFromString(funded),
			ActorID:   "admin",
		}); err != nil {
			t.Fatalf("fund account: %v", err)
		}
	}

	return account
}

func (f *ledgerFixture) setRate(t *testing.T, from, to, rate string) {
	t.Helper()

	if _, err := f.rates.Upsert(context.Background(), usecase.UpsertRateInput{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.RequireFromString(rate),
		Active:       true,
	}); err != nil {
		t.Fatalf("set rate: %v", err)
	}
}

func (f *ledgerFixture) account(t *testing.T, id string) *domain.Account {
	t.Helper()

	account, err := f.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return account
}

// primaryBalance returns the available balance in the primary wallet, zero
// when the row does not exist.
func (f *ledgerFixture) primaryBalance(t *testing.T, account *domain.Account, currency string) decimal.Decimal {
	t.Helper()

	key, err := account.PrimaryBalanceKey(currency)
	if err != nil {
		t.Fatalf("balance key: %v", err)
	}

	balance, err := f.balances.Get(context.Background(), key)
	if err != nil {
		return decimal.Zero
	}
	return balance.Amount
}
