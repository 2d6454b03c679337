package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/docsearch/internal/adapter/api"
	"github.com/V4T54L/docsearch/internal/adapter/api/handler"
	"github.com/V4T54L/docsearch/internal/adapter/metrics"
	"github.com/V4T54L/docsearch/internal/adapter/provider/algolia"
	"github.com/V4T54L/docsearch/internal/adapter/provider/mixedbread"
	"github.com/V4T54L/docsearch/internal/adapter/repository/jsonl"
	"github.com/V4T54L/docsearch/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/docsearch/internal/adapter/repository/redis"
	"github.com/V4T54L/docsearch/internal/adapter/session"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/config"
	"github.com/V4T54L/docsearch/internal/pkg/logger"
	"github.com/V4T54L/docsearch/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	m := metrics.NewSearchMetrics()

	// --- Start Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.MetricsServerAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Log Stores ---
	// Unset URLs leave the store unconfigured; routes bound to it report that per request.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}
	pgRepo := postgres.NewSearchLogRepository(db, logger)
	if db != nil {
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Warn("could not prepare search_logs table, database writes will fail until it is reachable", "error", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis", "error", err)
		}
	}

	stores := map[string]domain.SearchLogStore{
		config.SinkPostgres: pgRepo,
		config.SinkJSONL:    jsonl.NewSessionRepository(cfg.LogDir, logger),
		config.SinkRedis:    redisrepo.NewLogRepository(redisClient, logger),
	}
	sinks, reader, err := usecase.RouteSinks(cfg.SearchLogSink, stores, m)
	if err != nil {
		logger.Error("failed to route log sinks", "error", err)
		os.Exit(1)
	}
	logger.Info("search log sinks ready",
		"mode", cfg.SearchLogSink,
		"lexical", sinks.Lexical.Name(),
		"vector", sinks.Vector.Name(),
		"client", sinks.Client.Name(),
		"reader", reader.Name,
	)

	// --- Initialize Use Cases and Services ---
	dispatcher, err := usecase.NewDispatcher(cfg.BackgroundWorkers, logger, m)
	if err != nil {
		logger.Error("failed to create dispatcher", "error", err)
		os.Exit(1)
	}

	vectorClient := mixedbread.NewClient(cfg.Mixedbread)
	if !vectorClient.Configured() {
		logger.Warn("vector search is not configured, /api/vector-store will fail", "missing", "MXBAI_API_KEY or VECTOR_STORE_ID")
	}
	if !cfg.Algolia.Configured() {
		logger.Warn("lexical search is not configured, /api/search will fail", "missing", "ALGOLIA_APP_ID, ALGOLIA_API_KEY or ALGOLIA_INDEX")
	}

	searchService := usecase.NewSearchService(algolia.NewClient(cfg.Algolia), vectorClient, sinks, dispatcher, m, logger)
	logsQuery := usecase.NewLogsQuery(reader.Store, reader.Name, logger)

	// --- Initialize SSE Broker ---
	sseBroker := handler.NewSSEBroker(ctx, logger)

	// --- Initialize Search Server ---
	router := api.NewRouter(logger, session.NewResolver(), api.Handlers{
		Search:  handler.NewSearchHandler(searchService, sseBroker, logger),
		Log:     handler.NewLogHandler(searchService, logger),
		Logs:    handler.NewLogsHandler(logsQuery),
		Compare: handler.NewCompareHandler(logsQuery, logger),
		Events:  sseBroker,
	})
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting search server", "addr", server.Addr, "search_mode", cfg.SearchMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("search server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("search server shutdown failed", "error", err)
	}
	if err := dispatcher.Close(cfg.ShutdownTimeout); err != nil {
		logger.Error("background log writes did not finish", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
