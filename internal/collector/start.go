package collector

import (
	"context"
	"fmt"

	"quotecollector/config"
	"quotecollector/internal/quote"
	"quotecollector/internal/snapshot"
	"quotecollector/pkg/storage/postgres"
	"quotecollector/pkg/yahoo"

	"go.uber.org/zap"
)

// StartCollector wires the configured provider, the CSV snapshot writer and
// the optional Postgres mirror, then runs the polling loop until it stops.
func StartCollector(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	fetcher, err := NewFetcher(cfg.Provider)
	if err != nil {
		return err
	}

	var options []Option
	if cfg.Postgres.Enabled {
		pgCfg := cfg.Postgres
		if err := pgCfg.ResolveCredentials(ctx, cfg.Environment, nil); err != nil {
			return fmt.Errorf("resolve postgres credentials: %w", err)
		}

		// Initialize PostgreSQL Client
		postgresClient, err := postgres.InitializeAndMigrateQuoteSnapshot(pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer postgresClient.Close()

		logger.Info("mirroring snapshots to postgres",
			zap.String("host", pgCfg.Host),
			zap.String("dbname", pgCfg.DBName),
		)
		options = append(options, WithMirror(postgresClient))
	}

	c := New(Config{
		Symbols: cfg.Stocks,
		Output:  cfg.CSV,
		Delay:   cfg.DelayDuration(),
	}, fetcher, snapshot.NewWriter(nil), logger, options...)

	return c.Run(ctx)
}

// NewFetcher builds the quote.Fetcher for the configured provider.
func NewFetcher(cfg config.ProviderConfig) (quote.Fetcher, error) {
	switch cfg.Name {
	case config.ProviderYahoo:
		restClient := yahoo.NewRESTClient(cfg.BaseURL, cfg.Timeout,
			yahoo.WithUserAgent(cfg.UserAgent),
			yahoo.WithWindow(cfg.Interval, cfg.Range),
		)
		return quote.NewYahooFetcher(restClient), nil
	case config.ProviderFinanceGo:
		return quote.NewFinanceGoFetcher(cfg.Interval, quote.LookbackFor(cfg.Range)), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
