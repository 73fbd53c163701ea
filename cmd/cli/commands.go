package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sangmo-land/BBinance-sub001/internal/app"
	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/logger"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

func (c *cli) migrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	run := func(fn func(databaseURL, migrationsPath string, log zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.cfg()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.MigrationsPath
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "ledgerctl"})
			return fn(cfg.DatabaseURL, path, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrationsDown),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(databaseURL, migrationsPath string, _ zerolog.Logger) error {
				version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "version: %d dirty: %v\n", version, dirty)
				return nil
			}),
		},
	)

	return cmd
}

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User provisioning",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <user-id>",
		Short: "Create the default fiat and crypto accounts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				accounts, err := container.Accounts.CreateDefaultAccounts(ctx, args[0])
				if err != nil {
					return err
				}
				c.renderAccounts(accounts)
				return nil
			})
		},
	})

	return cmd
}

func (c *cli) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and manage accounts",
	}

	var create usecase.CreateAccountInput
	var category string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseAccountCategory(category)
			if err != nil {
				return err
			}
			create.Category = parsed

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				account, err := container.Accounts.CreateAccount(ctx, create)
				if err != nil {
					return err
				}
				c.renderAccounts([]*domain.Account{account})
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&create.UserID, "user", "", "Owning user ID")
	createCmd.Flags().StringVar(&category, "category", "", "Account category (fiat or crypto)")
	createCmd.Flags().StringVar(&create.Currency, "currency", "", "Primary currency")
	_ = createCmd.MarkFlagRequired("user")
	_ = createCmd.MarkFlagRequired("category")
	_ = createCmd.MarkFlagRequired("currency")

	listCmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List the accounts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				accounts, err := container.Accounts.ListUserAccounts(ctx, args[0])
				if err != nil {
					return err
				}
				c.renderAccounts(accounts)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <account-id-or-number>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				account, err := container.Accounts.GetAccount(ctx, args[0])
				if errors.Is(err, domain.ErrAccountNotFound) {
					account, err = container.Accounts.GetAccountByNumber(ctx, args[0])
				}
				if err != nil {
					return err
				}
				c.renderAccounts([]*domain.Account{account})
				return nil
			})
		},
	}

	balancesCmd := &cobra.Command{
		Use:   "balances <account-id>",
		Short: "List the wallet balances of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				balances, err := container.Accounts.ListBalances(ctx, args[0])
				if err != nil {
					return err
				}
				c.renderBalances(balances)
				return nil
			})
		},
	}

	cmd.AddCommand(
		createCmd,
		listCmd,
		showCmd,
		balancesCmd,
		c.setActiveCmd("enable", "Re-activate an account", true),
		c.setActiveCmd("disable", "Deactivate an account", false),
	)

	return cmd
}

func (c *cli) setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <account-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				if err := container.Accounts.SetActive(ctx, args[0], active); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "account %s %sd\n", args[0], use)
				return nil
			})
		},
	}
}

// operationFlags are shared by every command that writes a ledger record.
type operationFlags struct {
	actor          string
	description    string
	idempotencyKey string
}

func (f *operationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.actor, "actor", "admin", "Actor recorded on the transaction")
	cmd.Flags().StringVar(&f.description, "description", "", "Free text description")
	cmd.Flags().StringVar(&f.idempotencyKey, "idempotency-key", "", "Reject replays of the same request")
}

func (c *cli) fundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funds",
		Short: "Administrative credits and debits",
	}

	adjust := func(use, short string, apply func(*usecase.LedgerUseCase) func(context.Context, usecase.AdjustFundsInput) (*domain.Transaction, error)) *cobra.Command {
		var (
			flags    operationFlags
			currency string
			wallet   string
		)

		sub := &cobra.Command{
			Use:   use + " <account-id> <amount>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := domain.ParseAmount(args[1])
				if err != nil {
					return err
				}
				walletType, err := domain.ParseWalletType(wallet)
				if err != nil {
					return err
				}

				return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
					record, err := apply(container.Ledger)(ctx, usecase.AdjustFundsInput{
						AccountID:      args[0],
						Amount:         amount,
						Currency:       currency,
						WalletType:     walletType,
						Description:    flags.description,
						ActorID:        flags.actor,
						IdempotencyKey: flags.idempotencyKey,
					})
					if err != nil {
						return err
					}
					c.renderTransactions([]*domain.Transaction{record})
					return nil
				})
			},
		}
		flags.register(sub)
		sub.Flags().StringVar(&currency, "currency", "", "Currency (defaults to the account currency)")
		sub.Flags().StringVar(&wallet, "wallet", "", "Wallet (defaults to the account category wallet)")

		return sub
	}

	cmd.AddCommand(
		adjust("add", "Credit an account", func(l *usecase.LedgerUseCase) func(context.Context, usecase.AdjustFundsInput) (*domain.Transaction, error) {
			return l.AddFunds
		}),
		adjust("remove", "Debit an account", func(l *usecase.LedgerUseCase) func(context.Context, usecase.AdjustFundsInput) (*domain.Transaction, error) {
			return l.RemoveFunds
		}),
	)

	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	var flags operationFlags

	cmd := &cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Move funds between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[2])
			if err != nil {
				return err
			}

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				record, err := container.Ledger.Transfer(ctx, usecase.TransferInput{
					FromAccountID:  args[0],
					ToAccountID:    args[1],
					Amount:         amount,
					ActorID:        flags.actor,
					Description:    flags.description,
					IdempotencyKey: flags.idempotencyKey,
				})
				if err != nil {
					return err
				}
				c.renderTransactions([]*domain.Transaction{record})
				return nil
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *cli) convertCmd() *cobra.Command {
	var (
		flags     operationFlags
		toAccount string
	)

	cmd := &cobra.Command{
		Use:   "convert <from-account-id> <to-currency> <amount>",
		Short: "Convert funds into another currency",
		Long: `Convert debits the source account and credits the target currency.
Without --to-account the user's account in the target currency is used,
and opened if it does not exist yet.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[2])
			if err != nil {
				return err
			}

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				record, err := container.Ledger.Convert(ctx, usecase.ConvertInput{
					FromAccountID:  args[0],
					ToAccountID:    toAccount,
					ToCurrency:     args[1],
					Amount:         amount,
					ActorID:        flags.actor,
					Description:    flags.description,
					IdempotencyKey: flags.idempotencyKey,
				})
				if err != nil {
					return err
				}
				c.renderTransactions([]*domain.Transaction{record})
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&toAccount, "to-account", "", "Explicit target account ID")

	return cmd
}

func (c *cli) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <from-currency> <to-currency> <amount>",
		Short: "Price a conversion without moving funds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(args[2])
			if err != nil {
				return err
			}

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				quote, err := container.Ledger.Quote(ctx, args[0], args[1], amount)
				if err != nil {
					return err
				}
				c.renderQuote(quote)
				return nil
			})
		},
	}
}

func (c *cli) rateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Manage exchange rates",
	}

	var inactive bool
	setCmd := &cobra.Command{
		Use:   "set <from> <to> <rate>",
		Short: "Store the rate of a currency pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidRate, args[2])
			}

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				stored, err := container.Rates.Upsert(ctx, usecase.UpsertRateInput{
					FromCurrency: args[0],
					ToCurrency:   args[1],
					Rate:         rate,
					Active:       !inactive,
				})
				if err != nil {
					return err
				}
				c.renderRates([]*domain.ExchangeRate{stored})
				return nil
			})
		},
	}
	setCmd.Flags().BoolVar(&inactive, "inactive", false, "Store the rate disabled")

	getCmd := &cobra.Command{
		Use:   "get <from> <to>",
		Short: "Resolve the rate of a pair in either stored direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				rate, found, err := container.Rates.GetBidirectional(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %s/%s", domain.ErrRateNotFound, args[0], args[1])
				}

				from, to := domain.NormalizeCurrency(args[0]), domain.NormalizeCurrency(args[1])
				if c.asJSON {
					printJSON(c.out, map[string]string{"from": from, "to": to, "rate": rate.String()})
					return nil
				}
				fmt.Fprintf(c.out, "1 %s = %s %s\n", from, rate.String(), to)
				return nil
			})
		},
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				rates, err := container.Rates.List(ctx, !all)
				if err != nil {
					return err
				}
				c.renderRates(rates)
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "Include inactive rates")

	disableCmd := &cobra.Command{
		Use:   "disable <from> <to>",
		Short: "Deactivate the rate of a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				if err := container.Rates.Deactivate(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "rate %s/%s disabled\n", domain.NormalizeCurrency(args[0]), domain.NormalizeCurrency(args[1]))
				return nil
			})
		},
	}

	cmd.AddCommand(setCmd, getCmd, listCmd, disableCmd)

	return cmd
}

func (c *cli) txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect transaction records",
	}

	var (
		filter domain.TransactionFilter
		txType string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Type = domain.TransactionType(txType)

			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				records, err := container.Ledger.ListTransactions(ctx, filter)
				if err != nil {
					return err
				}
				c.renderTransactions(records)
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&filter.AccountID, "account", "", "Only transactions touching this account")
	listCmd.Flags().StringVar(&txType, "type", "", "Only transactions of this type")
	listCmd.Flags().IntVar(&filter.Limit, "limit", 50, "Page size")
	listCmd.Flags().IntVar(&filter.Offset, "offset", 0, "Page offset")

	showCmd := &cobra.Command{
		Use:   "show <reference>",
		Short: "Show a transaction by reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				record, err := container.Ledger.GetTransaction(ctx, args[0])
				if err != nil {
					return err
				}
				c.renderTransactions([]*domain.Transaction{record})
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, showCmd)

	return cmd
}

// errDiscrepancies makes reconcile exit non-zero when --strict is set.
var errDiscrepancies = errors.New("reconciliation found discrepancies")

func (c *cli) reconcileCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare account balances with their wallet balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				report, err := container.Reconciliation.GenerateReconciliationReport(ctx)
				if err != nil {
					return err
				}
				c.renderReport(report)

				if strict && len(report.Discrepancies) > 0 {
					return errDiscrepancies
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any account is out of sync")

	return cmd
}
