package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/sangmo-land/BBinance-sub001/internal/app"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/config"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/logger"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/redis"
)

// opener builds the use case graph for one command and returns its cleanup.
type opener func(ctx context.Context) (*app.Container, func(), error)

type cli struct {
	out     io.Writer
	open    opener
	cfg     func() (*config.Config, error)
	timeout time.Duration
	asJSON  bool
}

func main() {
	c := &cli{
		out: os.Stdout,
		cfg: config.Load,
	}
	c.open = c.openPostgres

	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Ledger admin CLI",
		Long:          `Administrative command line interface for the multi-currency ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Command timeout")
	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		c.migrateCmd(),
		c.userCmd(),
		c.accountCmd(),
		c.fundsCmd(),
		c.transferCmd(),
		c.convertCmd(),
		c.quoteCmd(),
		c.rateCmd(),
		c.txCmd(),
		c.reconcileCmd(),
	)

	return rootCmd
}

// openPostgres connects to the configured stores. Redis is optional.
func (c *cli) openPostgres(ctx context.Context) (*app.Container, func(), error) {
	cfg, err := c.cfg()
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "ledgerctl"})

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       4,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, redis.Options{PoolSize: 2})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without rate cache and idempotency keys")
			redisClient = nil
		}
	}

	cleanup := func() {
		if redisClient != nil {
			redisClient.Close()
		}
		pool.Close()
	}

	container, err := app.NewPostgres(cfg, pool, redisClient, nil, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return container, cleanup, nil
}

// withContainer runs fn against a freshly opened graph under the command timeout.
func (c *cli) withContainer(cmd *cobra.Command, fn func(ctx context.Context, container *app.Container) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	container, cleanup, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, container)
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
