package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_TransferAcrossCurrencies(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100.00")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "EUR", "")
	f.setRate(t, "USD", "EUR", "0.92")

	before := f.records.Count()

	record, err := f.ledger.Transfer(ctx, usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("40.00"),
		ActorID:       "user-a",
	})
	require.NoError(t, err)

	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("60")), "A aggregate balance")
	assert.True(t, f.account(t, b.ID).Balance.Equal(dec("36.80")), "B aggregate balance")
	assert.True(t, f.primaryBalance(t, a, "USD").Equal(dec("60")))
	assert.True(t, f.primaryBalance(t, b, "EUR").Equal(dec("36.80")))

	assert.Equal(t, before+1, f.records.Count())
	assert.Equal(t, domain.TransactionTransfer, record.Type)
	assert.Equal(t, domain.StatusCompleted, record.Status)
	assert.Equal(t, "USD", record.FromCurrency)
	assert.Equal(t, "EUR", record.ToCurrency)
	assert.True(t, record.Amount.Equal(dec("40")))
	assert.True(t, record.ExchangeRate.Equal(dec("0.92")), "rate %s", record.ExchangeRate)
	assert.True(t, record.ConvertedAmount.Equal(dec("36.80")))
	assert.Equal(t, domain.RateSourceDatabase, record.RateSource)
	require.NotNil(t, record.FromAccountID)
	require.NotNil(t, record.ToAccountID)
	assert.Equal(t, a.ID, *record.FromAccountID)
	assert.Equal(t, b.ID, *record.ToAccountID)

	stored, err := f.ledger.GetTransaction(ctx, record.Reference)
	require.NoError(t, err)
	assert.Equal(t, record.ID, stored.ID)
}

func TestLedger_TransferSameCurrencyConservesValue(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "250.5")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "10")

	record, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("50.25"),
	})
	require.NoError(t, err)

	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("200.25")))
	assert.True(t, f.account(t, b.ID).Balance.Equal(dec("60.25")))
	assert.True(t, record.ExchangeRate.Equal(dec("1")))
	assert.Equal(t, domain.RateSourceIdentity, record.RateSource)
}

func TestLedger_TransferInsufficientFundsChangesNothing(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "30")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "5")

	records := f.records.Count()
	balances := f.balances.Count()

	_, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("30.00000001"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, records, f.records.Count())
	assert.Equal(t, balances, f.balances.Count())
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("30")))
	assert.True(t, f.account(t, b.ID).Balance.Equal(dec("5")))
	assert.True(t, f.primaryBalance(t, a, "USD").Equal(dec("30")))
	assert.Equal(t, 1, f.metrics.Operations[usecase.OpTransfer+":failed"])
}

func TestLedger_TransferWithoutRateRollsBackDebit(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "JPY", "")

	_, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	assert.True(t, f.primaryBalance(t, a, "USD").Equal(dec("100")))
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("100")))
}

func TestLedger_TransferValidation(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "")
	disabled := f.openAccount(t, "user-c", domain.CategoryFiat, "USD", "")
	require.NoError(t, f.accountsUC.SetActive(context.Background(), disabled.ID, false))

	tests := []struct {
		name  string
		input usecase.TransferInput
		want  error
	}{
		{
			name:  "zero amount",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: decimal.Zero},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "negative amount",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("-1")},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "too many decimals",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("0.000000001")},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "same account",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: a.ID, Amount: dec("1")},
			want:  domain.ErrSameAccount,
		},
		{
			name:  "unknown account",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: "missing", Amount: dec("1")},
			want:  domain.ErrAccountNotFound,
		},
		{
			name:  "inactive destination",
			input: usecase.TransferInput{FromAccountID: a.ID, ToAccountID: disabled.ID, Amount: dec("1")},
			want:  domain.ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Transfer(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("100")))
}

func TestLedger_AddFundsToCryptoAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	c := f.openAccount(t, "user-c", domain.CategoryCrypto, "USDT", "")

	record, err := f.ledger.AddFunds(ctx, usecase.AdjustFundsInput{
		AccountID:   c.ID,
		Amount:      dec("100"),
		Currency:    "usdt",
		Description: "welcome bonus",
		ActorID:     "admin-1",
	})
	require.NoError(t, err)

	balance, err := f.balances.Get(ctx, domain.BalanceKey{
		AccountID: c.ID,
		Wallet:    domain.WalletSpot,
		Currency:  "USDT",
		Kind:      domain.BalanceKindAvailable,
	})
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(dec("100")))

	assert.Equal(t, 1, f.records.Count())
	assert.Equal(t, domain.TransactionAdminCredit, record.Type)
	assert.Equal(t, "USDT", record.ToCurrency)
	assert.True(t, record.Amount.Equal(dec("100")))
	require.NotNil(t, record.ToAccountID)
	assert.Equal(t, c.ID, *record.ToAccountID)
	assert.Nil(t, record.FromAccountID)
	assert.Equal(t, "admin-1", record.ActorID)

	assert.True(t, f.account(t, c.ID).Balance.Equal(dec("100")), "primary currency credit is mirrored")
}

func TestLedger_AddFundsOtherCurrencyIsNotMirrored(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	c := f.openAccount(t, "user-c", domain.CategoryCrypto, "USDT", "")

	_, err := f.ledger.AddFunds(ctx, usecase.AdjustFundsInput{
		AccountID:  c.ID,
		Amount:     dec("0.5"),
		Currency:   "BTC",
		WalletType: domain.WalletFunding,
	})
	require.NoError(t, err)

	balance, err := f.balances.Get(ctx, domain.BalanceKey{
		AccountID: c.ID,
		Wallet:    domain.WalletFunding,
		Currency:  "BTC",
		Kind:      domain.BalanceKindAvailable,
	})
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(dec("0.5")))
	assert.True(t, f.account(t, c.ID).Balance.IsZero())
}

func TestLedger_AddFundsRejectsUnknownWallet(t *testing.T) {
	f := newLedgerFixture(t, nil)

	c := f.openAccount(t, "user-c", domain.CategoryCrypto, "USDT", "")

	_, err := f.ledger.AddFunds(context.Background(), usecase.AdjustFundsInput{
		AccountID:  c.ID,
		Amount:     dec("1"),
		WalletType: "margin",
	})
	require.ErrorIs(t, err, domain.ErrInvalidWalletType)
	assert.Equal(t, 0, f.records.Count())
}

func TestLedger_RemoveFunds(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "80")

	t.Run("insufficient", func(t *testing.T) {
		_, err := f.ledger.RemoveFunds(ctx, usecase.AdjustFundsInput{AccountID: a.ID, Amount: dec("80.01")})
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.True(t, f.account(t, a.ID).Balance.Equal(dec("80")))
	})

	t.Run("missing wallet balance", func(t *testing.T) {
		_, err := f.ledger.RemoveFunds(ctx, usecase.AdjustFundsInput{
			AccountID:  a.ID,
			Amount:     dec("1"),
			WalletType: domain.WalletEarning,
		})
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("success", func(t *testing.T) {
		record, err := f.ledger.RemoveFunds(ctx, usecase.AdjustFundsInput{
			AccountID:   a.ID,
			Amount:      dec("30"),
			Description: "chargeback",
			ActorID:     "admin",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.TransactionAdminDebit, record.Type)
		require.NotNil(t, record.FromAccountID)
		assert.Equal(t, a.ID, *record.FromAccountID)
		assert.Nil(t, record.ToAccountID)
		assert.Equal(t, "USD", record.FromCurrency)
		assert.True(t, f.account(t, a.ID).Balance.Equal(dec("50")))
		assert.True(t, f.primaryBalance(t, a, "USD").Equal(dec("50")))
	})
}

func TestLedger_ConvertCreatesTargetAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	f.setRate(t, "EUR", "USD", "1.25")

	record, err := f.ledger.Convert(ctx, usecase.ConvertInput{
		FromAccountID: a.ID,
		ToCurrency:    "eur",
		Amount:        dec("50"),
		ActorID:       "user-a",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionConversion, record.Type)
	assert.True(t, record.ExchangeRate.Equal(dec("0.8")), "rate %s", record.ExchangeRate)
	assert.True(t, record.ConvertedAmount.Equal(dec("40")))

	target, err := f.accounts.FindByOwnerForUpdate(ctx, nil, "user-a", domain.CategoryFiat, "EUR")
	require.NoError(t, err)
	require.NotNil(t, record.ToAccountID)
	assert.Equal(t, target.ID, *record.ToAccountID)
	assert.True(t, target.Balance.Equal(dec("40")))
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("50")))

	// A second conversion reuses the account created by the first.
	_, err = f.ledger.Convert(ctx, usecase.ConvertInput{FromAccountID: a.ID, ToCurrency: "EUR", Amount: dec("10")})
	require.NoError(t, err)

	accounts, err := f.accountsUC.ListUserAccounts(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.True(t, f.account(t, target.ID).Balance.Equal(dec("48")))
}

func TestLedger_ConvertIntoExplicitAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)

	from := f.openAccount(t, "user-a", domain.CategoryCrypto, "USDT", "1000")
	to := f.openAccount(t, "user-a", domain.CategoryCrypto, "BTC", "")
	f.setRate(t, "BTC", "USDT", "50000")

	record, err := f.ledger.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		ToCurrency:    "BTC",
		Amount:        dec("500"),
	})
	require.NoError(t, err)

	assert.True(t, record.ExchangeRate.Equal(dec("0.00002")))
	assert.True(t, record.ConvertedAmount.Equal(dec("0.01")))
	assert.True(t, f.primaryBalance(t, to, "BTC").Equal(dec("0.01")))
	assert.True(t, f.account(t, from.ID).Balance.Equal(dec("500")))
}

func TestLedger_ConvertWithoutRateLeavesNoTrace(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")

	accounts := f.accounts.Count()
	balances := f.balances.Count()
	records := f.records.Count()

	_, err := f.ledger.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: a.ID,
		ToCurrency:    "CHF",
		Amount:        dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	assert.Equal(t, accounts, f.accounts.Count())
	assert.Equal(t, balances, f.balances.Count())
	assert.Equal(t, records, f.records.Count())
	assert.True(t, f.primaryBalance(t, a, "USD").Equal(dec("100")))
}

func TestLedger_ConvertRejectsSameCurrency(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")

	_, err := f.ledger.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: a.ID,
		ToCurrency:    "USD",
		Amount:        dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrSameCurrency)
}

func TestLedger_ConvertInsufficientFundsBeforeRate(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "5")

	_, err := f.ledger.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: a.ID,
		ToCurrency:    "CHF",
		Amount:        dec("10"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestLedger_FallbackRateIsUsedOnlyWithoutStoredRate(t *testing.T) {
	fallback, err := domain.ParseFallbackRates(map[string]string{"EUR": "0.9", "GBP": "0.8"})
	require.NoError(t, err)

	f := newLedgerFixture(t, fallback)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "EUR", "")

	record, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RateSourceFallback, record.RateSource)
	assert.True(t, record.ConvertedAmount.Equal(dec("9")))
	assert.Equal(t, 1, f.metrics.Fallbacks)

	f.setRate(t, "USD", "EUR", "0.92")

	record, err = f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RateSourceDatabase, record.RateSource)
	assert.True(t, record.ConvertedAmount.Equal(dec("9.2")))
	assert.Equal(t, 1, f.metrics.Fallbacks)
}

func TestLedger_Quote(t *testing.T) {
	f := newLedgerFixture(t, nil)
	f.setRate(t, "USD", "EUR", "0.92")

	quote, err := f.ledger.Quote(context.Background(), "usd", "eur", dec("40"))
	require.NoError(t, err)

	assert.Equal(t, "USD", quote.FromCurrency)
	assert.Equal(t, "EUR", quote.ToCurrency)
	assert.True(t, quote.ConvertedAmount.Equal(dec("36.8")))
	assert.Equal(t, domain.RateSourceDatabase, quote.Source)
	assert.Equal(t, 0, f.records.Count())

	_, err = f.ledger.Quote(context.Background(), "USD", "XYZ", dec("1"))
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestLedger_IdempotentReplay(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "")

	input := usecase.TransferInput{
		FromAccountID:  a.ID,
		ToAccountID:    b.ID,
		Amount:         dec("10"),
		IdempotencyKey: "req-1",
	}

	first, err := f.ledger.Transfer(ctx, input)
	require.NoError(t, err)

	second, err := f.ledger.Transfer(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, first.Reference, second.Reference)
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("90")))
	assert.Equal(t, 1, f.metrics.Operations[usecase.OpTransfer+":replayed"])
}

func TestLedger_IdempotencyInProgress(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")

	_, _, err := f.idem.CheckAndSet(ctx, "ledger:"+usecase.OpRemoveFunds+":req-2", []byte("processing"), 0)
	require.NoError(t, err)

	_, err = f.ledger.RemoveFunds(ctx, usecase.AdjustFundsInput{
		AccountID:      a.ID,
		Amount:         dec("1"),
		IdempotencyKey: "req-2",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestLedger_IdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "5")

	input := usecase.AdjustFundsInput{AccountID: a.ID, Amount: dec("10"), IdempotencyKey: "req-3"}

	_, err := f.ledger.RemoveFunds(ctx, input)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, ok := f.idem.Value("ledger:" + usecase.OpRemoveFunds + ":req-3")
	assert.False(t, ok)

	_, err = f.ledger.AddFunds(ctx, usecase.AdjustFundsInput{AccountID: a.ID, Amount: dec("5")})
	require.NoError(t, err)

	_, err = f.ledger.RemoveFunds(ctx, input)
	require.NoError(t, err)
	assert.True(t, f.account(t, a.ID).Balance.IsZero())
}

var errTransientConflict = errors.New("transient conflict")

func TestLedger_RetriesConflictsFromScratch(t *testing.T) {
	f := newLedgerFixture(t, nil)
	f.retrier.MaxAttempts = 3
	f.retrier.Retryable = func(err error) bool { return errors.Is(err, errTransientConflict) }

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "EUR", "")

	calls := 0
	f.rateRepo.GetActiveFunc = func(_ context.Context, from, to string) (*domain.ExchangeRate, error) {
		calls++
		if calls == 1 {
			return nil, errTransientConflict
		}
		if from == "USD" && to == "EUR" {
			return &domain.ExchangeRate{FromCurrency: "USD", ToCurrency: "EUR", Rate: dec("0.5"), Active: true}, nil
		}
		return nil, domain.ErrRateNotFound
	}

	attempts := f.retrier.Attempts()

	_, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("40"),
	})
	require.NoError(t, err)

	assert.Equal(t, attempts+2, f.retrier.Attempts())
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("60")), "first attempt's debit is rolled back")
	assert.True(t, f.account(t, b.ID).Balance.Equal(dec("20")))
}

func TestLedger_RetryExhaustionSurfacesStorageConflict(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "EUR", "")

	f.retrier.MaxAttempts = 3
	f.retrier.Retryable = func(err error) bool { return errors.Is(err, errTransientConflict) }
	f.rateRepo.GetActiveFunc = func(context.Context, string, string) (*domain.ExchangeRate, error) {
		return nil, errTransientConflict
	}

	_, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        dec("40"),
	})
	require.ErrorIs(t, err, domain.ErrStorageConflict)
	assert.True(t, f.account(t, a.ID).Balance.Equal(dec("100")))
}

func TestLedger_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	f := newLedgerFixture(t, nil)

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "")

	const workers = 15

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Transfer(context.Background(), usecase.TransferInput{
				FromAccountID: a.ID,
				ToAccountID:   b.ID,
				Amount:        dec("10"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, rejected)
	assert.True(t, f.account(t, a.ID).Balance.IsZero())
	assert.True(t, f.account(t, b.ID).Balance.Equal(dec("100")))
	assert.False(t, f.primaryBalance(t, a, "USD").IsNegative())
}

func TestLedger_ListTransactions(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	a := f.openAccount(t, "user-a", domain.CategoryFiat, "USD", "100")
	b := f.openAccount(t, "user-b", domain.CategoryFiat, "USD", "")

	_, err := f.ledger.Transfer(ctx, usecase.TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("1")})
	require.NoError(t, err)

	all, err := f.ledger.ListTransactions(ctx, domain.TransactionFilter{AccountID: a.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.TransactionTransfer, all[0].Type, "newest first")

	credits, err := f.ledger.ListTransactions(ctx, domain.TransactionFilter{Type: domain.TransactionAdminCredit})
	require.NoError(t, err)
	assert.Len(t, credits, 1)

	_, err = f.ledger.ListTransactions(ctx, domain.TransactionFilter{Type: "refund"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)

	_, err = f.ledger.GetTransaction(ctx, "TXN-missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
