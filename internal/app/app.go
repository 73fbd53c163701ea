// Package app wires the ledger use cases to their storage. Both executables
// build the same graph through it.
package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	postgresRepo "github.com/sangmo-land/BBinance-sub001/internal/adapter/repository/postgres"
	redisRepo "github.com/sangmo-land/BBinance-sub001/internal/adapter/repository/redis"
	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/config"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

// Repositories are the storage collaborators of the use cases. RateCache,
// Idempotency and Retrier may be nil.
type Repositories struct {
	TxManager    usecase.TransactionManager
	Accounts     usecase.AccountRepository
	Balances     usecase.BalanceRepository
	Transactions usecase.TransactionRepository
	Rates        usecase.ExchangeRateRepository
	RateCache    usecase.RateCache
	Idempotency  usecase.IdempotencyStore
	Retrier      usecase.Retrier
	IDGen        usecase.IDGenerator
	RefGen       usecase.ReferenceGenerator
}

// Settings carry the configurable ledger policy.
type Settings struct {
	Defaults       usecase.DefaultCurrencies
	FallbackRates  domain.FallbackRateTable
	IdempotencyTTL time.Duration
}

// Container holds the wired use cases.
type Container struct {
	Accounts       *usecase.AccountUseCase
	Rates          *usecase.RateUseCase
	Ledger         *usecase.LedgerUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

// New wires the use cases over repos.
func New(repos Repositories, settings Settings, metrics usecase.MetricsRecorder, logger zerolog.Logger) *Container {
	accounts := usecase.NewAccountUseCase(usecase.AccountDependencies{
		TxManager:   repos.TxManager,
		AccountRepo: repos.Accounts,
		BalanceRepo: repos.Balances,
		IDGen:       repos.IDGen,
		RefGen:      repos.RefGen,
		Retrier:     repos.Retrier,
		Defaults:    settings.Defaults,
		Logger:      logger,
	})

	rates := usecase.NewRateUseCase(repos.Rates, repos.RateCache, repos.IDGen, logger)

	ledger := usecase.NewLedgerUseCase(usecase.LedgerDependencies{
		TxManager:      repos.TxManager,
		AccountRepo:    repos.Accounts,
		BalanceRepo:    repos.Balances,
		TxRepo:         repos.Transactions,
		Rates:          rates,
		Provisioner:    accounts,
		FallbackRates:  settings.FallbackRates,
		IDGen:          repos.IDGen,
		RefGen:         repos.RefGen,
		Retrier:        repos.Retrier,
		Idempotency:    repos.Idempotency,
		IdempotencyTTL: settings.IdempotencyTTL,
		Metrics:        metrics,
		Logger:         logger,
	})

	return &Container{
		Accounts:       accounts,
		Rates:          rates,
		Ledger:         ledger,
		Reconciliation: usecase.NewReconciliationUseCase(repos.Accounts, repos.Balances, metrics, logger),
	}
}

// NewPostgres wires the use cases over Postgres and, when redisClient is not
// nil, the Redis rate cache and idempotency store.
func NewPostgres(cfg *config.Config, pool *pgxpool.Pool, redisClient *goredis.Client, metrics usecase.MetricsRecorder, logger zerolog.Logger) (*Container, error) {
	fallback, err := cfg.FallbackRateTable()
	if err != nil {
		return nil, err
	}

	repos := Repositories{
		TxManager:    postgresRepo.NewTxManager(pool),
		Accounts:     postgresRepo.NewAccountRepository(pool),
		Balances:     postgresRepo.NewBalanceRepository(pool),
		Transactions: postgresRepo.NewTransactionRepository(pool),
		Rates:        postgresRepo.NewExchangeRateRepository(pool),
		Retrier:      postgresRepo.NewRetrier(cfg.RetryMaxAttempts, logger),
		IDGen:        postgresRepo.NewULIDGenerator(),
		RefGen:       postgresRepo.NewReferenceGenerator(),
	}
	if redisClient != nil {
		repos.RateCache = redisRepo.NewRateCache(redisClient, cfg.RateCacheTTL)
		repos.Idempotency = redisRepo.NewIdempotencyStore(redisClient)
	}

	settings := Settings{
		Defaults: usecase.DefaultCurrencies{
			Fiat:   cfg.DefaultFiatCurrency,
			Crypto: cfg.DefaultCryptoCurrency,
		},
		FallbackRates:  fallback,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}

	if len(fallback) > 0 {
		logger.Warn().Int("currencies", len(fallback)).Msg("static fallback rates enabled")
	}

	return New(repos, settings, metrics, logger), nil
}
