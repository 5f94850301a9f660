package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpulse/internal/amqp"
	"finpulse/internal/cache"
	"finpulse/internal/config"
	apphttp "finpulse/internal/http"
	"finpulse/internal/insight"
	"finpulse/internal/log"
	"finpulse/internal/report"
	"finpulse/internal/storage"
	"finpulse/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting finpulse-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always runs on SQLite: snapshots need a durable store.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional; without a broker the periodic backstop still
	// keeps snapshots fresh.
	var consumer worker.EventConsumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running periodic-only", "error", err)
		} else {
			defer amqpClient.Close()
			consumer = amqpClient
			logger.Info("AMQP consumer initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	reportCache := cache.NewLRUCache[report.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	insights := insight.NewGenerator(apphttp.NewCurrencyFormatter(cfg.CurrencySymbol))
	reports := report.NewService(repo, repo, repo, insights, report.WithCache(reportCache))

	snapshotWorker := worker.NewSnapshotWorker(reports, repo, consumer, cfg.SnapshotInterval)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Snapshot worker running",
		"interval", cfg.SnapshotInterval.String(),
		"amqp_enabled", consumer != nil)

	if err := snapshotWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Snapshot worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
