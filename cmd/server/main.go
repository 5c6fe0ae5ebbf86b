// Package main provides the unified service that runs scheduled pipeline
// batches and serves results over HTTP:
// - Pipeline (scheduled): data load → features → signals → backtests
// - API: run results, equity curves, health
// - Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/config"
	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/marketdata"
	"options-strategy-lab/internal/observability"
	"options-strategy-lab/internal/orchestrator"
	"options-strategy-lab/internal/pipeline"
	signalsvc "options-strategy-lab/internal/signal"
	"options-strategy-lab/internal/storage"
	chstore "options-strategy-lab/internal/storage/clickhouse"
	"options-strategy-lab/internal/storage/memory"
	pgstore "options-strategy-lab/internal/storage/postgres"
)

// Server schedules pipeline batches and serves stored results.
type Server struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	stores *allStores
	logger zerolog.Logger

	mu              sync.Mutex
	lastRun         time.Time
	lastRunErrors   int
	pipelineRuns    int
	pipelineRunning bool

	started time.Time
}

type allStores struct {
	bars     storage.BarStore
	features storage.FeatureStore
	trades   storage.TradeStore
	results  storage.BacktestResultStore
	weights  storage.ModelWeightStore
}

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "Path to YAML configuration")
	addr := flag.String("addr", ":8080", "API HTTP address")
	pipelineInterval := flag.Duration("pipeline-interval", 1*time.Hour, "Pipeline run interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage regardless of configured DSNs")
	fixtureSeed := flag.Int64("fixture-seed", 7, "Seed for the synthetic fixture data provider")
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
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()
	}()

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	strategies, err := cfg.StrategyConfigs()
	if err != nil {
		logger.Fatal().Err(err).Msg("strategy configs")
	}

	provider := fixtureProvider(cfg.Symbols, *fixtureSeed)
	server := &Server{
		cfg:    cfg,
		stores: stores,
		logger: logger.With().Str("component", "server").Logger(),
		orch: orchestrator.New(orchestrator.Options{
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
		}),
		started: time.Now(),
	}

	go server.scheduleLoop(ctx, *pipelineInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", server.handleHealth)
	mux.HandleFunc("/api/results", server.handleResults)
	mux.HandleFunc("/api/results/", server.handleResultByID)
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", observability.Handler())
	}

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown")
		}
	}()

	logger.Info().Str("addr", *addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server")
	}
	logger.Info().Msg("server stopped")
}

// scheduleLoop runs the pipeline immediately, then on every tick.
func (s *Server) scheduleLoop(ctx context.Context, interval time.Duration) {
	s.runPipeline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

func (s *Server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		s.logger.Warn().Msg("previous pipeline run still in progress, skipping")
		return
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pipelineRunning = false
		s.mu.Unlock()
	}()

	start, end := s.cfg.Window()
	result, err := s.orch.Run(ctx, s.cfg.Symbols, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline run failed")
		return
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastRunErrors = len(result.Errors)
	s.pipelineRuns++
	s.mu.Unlock()

	s.logger.Info().
		Int("symbols", result.SymbolsProcessed).
		Int("runs", result.RunsCompleted).
		Int("errors", len(result.Errors)).
		Msg("scheduled pipeline complete")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := map[string]interface{}{
		"status":           "ok",
		"uptime_seconds":   int(time.Since(s.started).Seconds()),
		"pipeline_runs":    s.pipelineRuns,
		"pipeline_running": s.pipelineRunning,
		"last_run_errors":  s.lastRunErrors,
	}
	if !s.lastRun.IsZero() {
		resp["last_run"] = s.lastRun.UTC().Format(time.RFC3339)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleResults lists stored run results without their curves or trades.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.stores.results.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type resultSummary struct {
		RunID      string             `json:"run_id"`
		Symbol     string             `json:"symbol"`
		StrategyID string             `json:"strategy_id"`
		StartDate  string             `json:"start_date"`
		EndDate    string             `json:"end_date"`
		Trades     int                `json:"trades"`
		Flagged    bool               `json:"flagged"`
		Metrics    domain.RiskMetrics `json:"metrics"`
	}
	summaries := make([]resultSummary, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, resultSummary{
			RunID:      res.RunID,
			Symbol:     res.Symbol,
			StrategyID: res.StrategyID,
			StartDate:  res.StartDate.Format("2006-01-02"),
			EndDate:    res.EndDate.Format("2006-01-02"),
			Trades:     len(res.Trades),
			Flagged:    res.Flagged,
			Metrics:    res.Metrics,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleResultByID serves one full result, equity curve and trades included.
func (s *Server) handleResultByID(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/results/")
	if runID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "run ID required"})
		return
	}

	result, err := s.stores.results.GetByID(r.Context(), runID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

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

func fixtureProvider(symbols []string, seed int64) *marketdata.StubProvider {
	series := make(map[string]domain.BarSeries, len(symbols))
	iv := make(map[string]domain.IVMetrics, len(symbols))
	for _, s := range symbols {
		series[s] = pipeline.FixtureBars(s, 400, seed)
		iv[s] = pipeline.FixtureIVMetrics()
	}
	return marketdata.NewStubProvider(series, iv)
}
