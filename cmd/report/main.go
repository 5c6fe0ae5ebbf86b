// Package main regenerates report artifacts from stored backtest results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/reporting"
	pgstore "options-strategy-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (required)")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *postgresDSN == "" {
		logger.Fatal().Msg("-postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	generator := reporting.NewGenerator(
		pgstore.NewBacktestResultStore(pool),
		pgstore.NewTradeStore(pool),
	)
	if err := generator.WriteArtifacts(ctx, *outputDir); err != nil {
		logger.Fatal().Err(err).Msg("write artifacts")
	}

	fmt.Println("Artifacts written:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/strategy_results.csv\n", *outputDir)
	fmt.Printf("  - %s/trades.csv\n", *outputDir)
}
