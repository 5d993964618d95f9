// Package main provides the entry point for the LedgerTrace server,
// an entity risk analysis service over public-record signals.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/api"
	"github.com/Adahandles/ledgertrace/internal/cache"
	"github.com/Adahandles/ledgertrace/internal/config"
	"github.com/Adahandles/ledgertrace/internal/export"
	"github.com/Adahandles/ledgertrace/internal/monitoring"
	"github.com/Adahandles/ledgertrace/internal/observability"
	"github.com/Adahandles/ledgertrace/internal/report"
	"github.com/Adahandles/ledgertrace/internal/signals"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("LedgerTrace %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	telemetry, err := observability.New(cfg.Telemetry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry init: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.Logger()
	defer telemetry.Sync()

	logger.Info("starting ledgertrace",
		zap.String("version", Version),
		zap.String("config", *configPath))

	// Redis backs the signal cache, the rate limiter, and monitoring
	// history. Everything degrades to in-memory when it is disabled or
	// unreachable.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password(),
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, running with in-memory fallbacks", zap.Error(err))
		} else {
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
		pingCancel()
		defer redisClient.Close()
	}

	gatherer := &signals.Gatherer{
		Timeout:  cfg.Collectors.Timeout,
		Logger:   logger,
		Observer: telemetry,
	}
	if cfg.Collectors.Property {
		gatherer.Property = signals.NewDemoPropertySource()
	}
	if cfg.Collectors.Court {
		gatherer.Court = signals.NewDemoCourtSource()
	}
	if cfg.Collectors.Domain {
		gatherer.Domain = signals.NewDemoDomainSource()
	}
	if cfg.Collectors.Officer {
		gatherer.Officers = signals.NewDemoOfficerSource()
	}
	if cfg.Collectors.Grants {
		gatherer.Grants = signals.NewDemoGrantSource()
	}

	analyzerOpts := []report.Option{report.WithObserver(telemetry)}
	if redisClient != nil {
		analyzerOpts = append(analyzerOpts,
			report.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL, logger)))
	}
	analyzer := report.New(gatherer, logger, analyzerOpts...)

	var store monitoring.Store
	if redisClient != nil {
		store = monitoring.NewRedisStore(redisClient)
	} else {
		store = monitoring.NewMemoryStore()
	}
	monitor := monitoring.New(store, logger)

	var exporter *export.Service
	if cfg.Export.Enabled {
		exporter, err = export.NewService(cfg.Export.Dir, logger)
		if err != nil {
			logger.Error("export service init failed, exports disabled", zap.Error(err))
			exporter = nil
		}
	}

	limiter := api.NewRateLimiter(redisClient, cfg.RateLimit, logger, telemetry)
	server := api.NewServer(analyzer, exporter, monitor, limiter, logger, Version)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(telemetry.HTTPMiddleware)

	server.Routes(r)
	if cfg.Telemetry.MetricsEnabled {
		r.Handle("/metrics", telemetry.MetricsHandler())
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	stopMetrics := make(chan struct{})
	telemetry.StartSystemMetricsCollector(stopMetrics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))
	close(stopMetrics)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
