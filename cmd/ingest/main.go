// Package main streams live bar updates into the bar store.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/marketdata"
	"options-strategy-lab/internal/observability"
	"options-strategy-lab/internal/storage"
	chstore "options-strategy-lab/internal/storage/clickhouse"
	"options-strategy-lab/internal/storage/memory"
)

func main() {
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("BARS_WS_ENDPOINT"), "Bar stream WebSocket endpoint (required)")
	symbolsFlag := flag.String("symbols", "SPY", "Comma-separated symbols to subscribe")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *wsEndpoint == "" {
		logger.Fatal().Msg("-ws-endpoint is required")
	}
	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		logger.Fatal().Msg("-symbols must name at least one symbol")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	var barStore storage.BarStore = memory.NewBarStore()
	if !*useMemory {
		if *clickhouseDSN == "" {
			logger.Fatal().Msg("-clickhouse-dsn is required (or pass -use-memory)")
		}
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		barStore = chstore.NewBarStore(conn)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	client, err := marketdata.NewWSClient(ctx, *wsEndpoint, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to bar stream")
	}
	defer client.Close()

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		updates, err := client.SubscribeBars(ctx, symbol)
		if err != nil {
			logger.Fatal().Err(err).Str("symbol", symbol).Msg("subscribe")
		}
		logger.Info().Str("symbol", symbol).Msg("subscribed")

		wg.Add(1)
		go func(symbol string, updates <-chan marketdata.BarUpdate) {
			defer wg.Done()
			persistUpdates(ctx, barStore, symbol, updates, logger)
		}(symbol, updates)
	}

	<-ctx.Done()
	wg.Wait()
	logger.Info().Msg("ingestion stopped")
}

// persistUpdates writes each streamed bar to the store until the channel
// closes or the context ends.
func persistUpdates(ctx context.Context, store storage.BarStore, symbol string, updates <-chan marketdata.BarUpdate, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			err := store.InsertBulk(ctx, symbol, domain.BarSeries{update.Bar})
			if err != nil {
				logger.Error().Err(err).
					Str("symbol", symbol).
					Time("date", update.Bar.Date).
					Msg("persist bar")
				continue
			}
			logger.Debug().
				Str("symbol", symbol).
				Time("date", update.Bar.Date).
				Float64("close", update.Bar.Close).
				Msg("bar stored")
		}
	}
}

func splitSymbols(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(strings.ToUpper(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
