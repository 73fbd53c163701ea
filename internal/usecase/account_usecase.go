package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	idGen       IDGenerator
	refGen      ReferenceGenerator
	retrier     Retrier
	defaults    DefaultCurrencies
	logger      zerolog.Logger
}

// DefaultCurrencies configures the accounts created for every new user.
type DefaultCurrencies struct {
	Fiat   string
	Crypto string
}

// AccountDependencies groups the collaborators of AccountUseCase.
type AccountDependencies struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	BalanceRepo BalanceRepository
	IDGen       IDGenerator
	RefGen      ReferenceGenerator
	Retrier     Retrier
	Defaults    DefaultCurrencies
	Logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(deps AccountDependencies) *AccountUseCase {
	defaults := deps.Defaults
	if defaults.Fiat == "" {
		defaults.Fiat = DefaultFiatCurrency
	}
	if defaults.Crypto == "" {
		defaults.Crypto = DefaultCryptoCurrency
	}

	retrier := deps.Retrier
	if retrier == nil {
		retrier = onceRetrier{}
	}

	return &AccountUseCase{
		txManager:   deps.TxManager,
		accountRepo: deps.AccountRepo,
		balanceRepo: deps.BalanceRepo,
		idGen:       deps.IDGen,
		refGen:      deps.RefGen,
		retrier:     retrier,
		defaults: DefaultCurrencies{
			Fiat:   domain.NormalizeCurrency(defaults.Fiat),
			Crypto: domain.NormalizeCurrency(defaults.Crypto),
		},
		logger: deps.Logger.With().Str("component", "accounts").Logger(),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	UserID   string
	Category domain.AccountCategory
	Currency string
}

// CreateAccount creates a new account in its own transaction.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	var account *domain.Account

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		account, err = uc.CreateAccountTx(ctx, tx, input)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// CreateAccountTx creates an account inside an existing transaction.
func (uc *AccountUseCase) CreateAccountTx(ctx context.Context, tx Transaction, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateID(input.UserID); err != nil {
		return nil, err
	}

	if !input.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, input.Category)
	}

	currency := domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	number, err := uc.uniqueAccountNumber(ctx, tx, input.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Number:    number,
		UserID:    input.UserID,
		Category:  input.Category,
		Currency:  currency,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account", account.Number).
		Str("user", account.UserID).
		Str("category", string(account.Category)).
		Str("currency", account.Currency).
		Msg("account created")

	return account, nil
}

func (uc *AccountUseCase) uniqueAccountNumber(ctx context.Context, tx Transaction, category domain.AccountCategory) (string, error) {
	for range MaxAccountNumberAttempts {
		number := uc.refGen.AccountNumber(category)

		exists, err := uc.accountRepo.NumberExists(ctx, tx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}

	return "", fmt.Errorf("%w: account number for %s", domain.ErrReferenceExhausted, category)
}

// OnUserCreated provisions the default accounts of a newly created user.
func (uc *AccountUseCase) OnUserCreated(ctx context.Context, user domain.User) ([]*domain.Account, error) {
	return uc.CreateDefaultAccounts(ctx, user.ID)
}

// CreateDefaultAccounts ensures the user owns one fiat and one crypto account.
// Categories the user already holds are left untouched, so repeated calls
// return the existing set.
func (uc *AccountUseCase) CreateDefaultAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	if err := domain.ValidateID(userID); err != nil {
		return nil, err
	}

	var accounts []*domain.Account

	err := uc.retrier.Retry(ctx, func() error {
		existing, err := uc.accountRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		byCategory := make(map[domain.AccountCategory]*domain.Account, 2)
		for _, acc := range existing {
			if _, ok := byCategory[acc.Category]; !ok {
				byCategory[acc.Category] = acc
			}
		}

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		accounts = accounts[:0]
		for _, def := range []CreateAccountInput{
			{UserID: userID, Category: domain.CategoryFiat, Currency: uc.defaults.Fiat},
			{UserID: userID, Category: domain.CategoryCrypto, Currency: uc.defaults.Crypto},
		} {
			if acc, ok := byCategory[def.Category]; ok {
				accounts = append(accounts, acc)
				continue
			}

			acc, err := uc.CreateAccountTx(ctx, tx, def)
			if err != nil {
				return err
			}
			accounts = append(accounts, acc)
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByNumber retrieves an account by its account number.
func (uc *AccountUseCase) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, number)
}

// ListUserAccounts lists every account owned by a user.
func (uc *AccountUseCase) ListUserAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByUser(ctx, userID)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// ListBalances lists the wallet balances of an account.
func (uc *AccountUseCase) ListBalances(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return uc.balanceRepo.ListByAccount(ctx, accountID)
}

// GetBalance reads a single balance. A missing row is reported as
// domain.ErrBalanceRecordMissing.
func (uc *AccountUseCase) GetBalance(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	key.Currency = domain.NormalizeCurrency(key.Currency)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return uc.balanceRepo.Get(ctx, key)
}

// SetActive soft-enables or soft-disables an account.
func (uc *AccountUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if err := uc.accountRepo.SetActive(ctx, id, active, time.Now().UTC()); err != nil {
		return err
	}

	uc.logger.Info().Str("account_id", id).Bool("active", active).Msg("account status changed")

	return nil
}

// onceRetrier runs an operation a single time.
type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
