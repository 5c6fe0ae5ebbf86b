// Package main provides the end-to-end pipeline entry point.
// Executes: data load → sufficiency → features → signals → backtests → report
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/config"
	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/marketdata"
	"options-strategy-lab/internal/orchestrator"
	"options-strategy-lab/internal/pipeline"
	"options-strategy-lab/internal/reporting"
	signalsvc "options-strategy-lab/internal/signal"
	"options-strategy-lab/internal/storage"
	chstore "options-strategy-lab/internal/storage/clickhouse"
	"options-strategy-lab/internal/storage/memory"
	pgstore "options-strategy-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "Path to YAML configuration")
	outputDir := flag.String("output-dir", "output", "Output directory for generated reports")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage regardless of configured DSNs")
	fixtureSeed := flag.Int64("fixture-seed", 7, "Seed for the synthetic fixture data provider")
	fixtureBars := flag.Int("fixture-bars", 400, "Bars per symbol served by the fixture provider")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("cancelling pipeline")
		cancel()
	}()

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	// Synthetic fixture provider. Live bar ingestion feeds the bar store
	// separately via the ingest binary.
	provider := fixtureProvider(cfg.Symbols, *fixtureBars, *fixtureSeed)

	strategies, err := cfg.StrategyConfigs()
	if err != nil {
		logger.Fatal().Err(err).Msg("strategy configs")
	}

	orch := orchestrator.New(orchestrator.Options{
		Bars:            provider,
		IV:              provider,
		BarStore:        stores.bars,
		FeatureStore:    stores.features,
		TradeStore:      stores.trades,
		ResultStore:     stores.results,
		Signal:          signalsvc.NewService(stores.weights, cfg.Backtest.Seed, logger),
		StrategyConfigs: strategies,
		Backtest:        cfg.BacktestConfig(),
		VolIndex:        cfg.VolIndex,
		Logger:          logger,
	})

	start, end := cfg.Window()
	began := time.Now()
	result, err := orch.Run(ctx, cfg.Symbols, start, end)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline run failed")
	}

	fmt.Println("=== Pipeline Summary ===")
	fmt.Printf("  Symbols:   %d\n", result.SymbolsProcessed)
	fmt.Printf("  Runs:      %d\n", result.RunsCompleted)
	fmt.Printf("  Duration:  %s\n", time.Since(began).Round(time.Millisecond))
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:    %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	generator := reporting.NewGenerator(stores.results, stores.trades)
	if err := generator.WriteArtifacts(ctx, *outputDir); err != nil {
		logger.Fatal().Err(err).Msg("write report artifacts")
	}

	fmt.Println("\nArtifacts written:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/strategy_results.csv\n", *outputDir)
	fmt.Printf("  - %s/trades.csv\n", *outputDir)
}

// allStores groups the storage handles the pipeline needs.
type allStores struct {
	bars     storage.BarStore
	features storage.FeatureStore
	trades   storage.TradeStore
	results  storage.BacktestResultStore
	weights  storage.ModelWeightStore
}

// createStores wires memory or database-backed stores from configuration.
// ClickHouse holds the high-volume series (bars, features); PostgreSQL
// holds run results, trades, and model weights.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*allStores, func(), error) {
	if useMemory || (cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickHouseDSN == "") {
		return &allStores{
			bars:     memory.NewBarStore(),
			features: memory.NewFeatureStore(),
			trades:   memory.NewTradeStore(),
			results:  memory.NewBacktestResultStore(),
			weights:  memory.NewModelWeightStore(),
		}, func() {}, nil
	}

	if cfg.Storage.PostgresDSN == "" || cfg.Storage.ClickHouseDSN == "" {
		return nil, nil, fmt.Errorf("both postgres_dsn and clickhouse_dsn are required unless -use-memory is set")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		bars:     chstore.NewBarStore(conn),
		features: chstore.NewFeatureStore(conn),
		trades:   pgstore.NewTradeStore(pool),
		results:  pgstore.NewBacktestResultStore(pool),
		weights:  pgstore.NewModelWeightStore(pool),
	}
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// fixtureProvider builds a deterministic in-memory data provider for the
// configured symbols.
func fixtureProvider(symbols []string, bars int, seed int64) *marketdata.StubProvider {
	series := make(map[string]domain.BarSeries, len(symbols))
	iv := make(map[string]domain.IVMetrics, len(symbols))
	for _, s := range symbols {
		series[s] = pipeline.FixtureBars(s, bars, seed)
		iv[s] = pipeline.FixtureIVMetrics()
	}
	return marketdata.NewStubProvider(series, iv)
}
