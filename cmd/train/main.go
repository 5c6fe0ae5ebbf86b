// Package main trains the signal model on the synthetic dataset and
// persists the calibrated weights.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/observability"
	"options-strategy-lab/internal/signal"
	pgstore "options-strategy-lab/internal/storage/postgres"
)

func main() {
	seed := flag.Int64("seed", 42, "Training seed")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for weight storage")
	outFile := flag.String("out", "", "Write encoded weights to this file instead of a database")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *postgresDSN == "" && *outFile == "" {
		logger.Fatal().Msg("either -postgres-dsn or -out is required")
	}

	ctx := context.Background()

	began := time.Now()
	model, err := signal.TrainFallback(*seed)
	if err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}
	observability.RecordModelTraining()

	data, err := signal.EncodeWeights(model, time.Now().UTC())
	if err != nil {
		logger.Fatal().Err(err).Msg("encode weights")
	}

	switch {
	case *outFile != "":
		if err := os.WriteFile(*outFile, data, 0o644); err != nil {
			logger.Fatal().Err(err).Msg("write weights file")
		}
		logger.Info().Str("path", *outFile).Msg("weights written")
	default:
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()

		if err := pgstore.NewModelWeightStore(pool).Save(ctx, data); err != nil {
			logger.Fatal().Err(err).Msg("save weights")
		}
		logger.Info().Msg("weights saved to postgres")
	}

	fmt.Println("=== Training Summary ===")
	fmt.Printf("  Trees:        %d\n", len(model.Ensemble.Trees))
	fmt.Printf("  Payload:      %d bytes\n", len(data))
	fmt.Printf("  Duration:     %s\n", time.Since(began).Round(time.Millisecond))
}
