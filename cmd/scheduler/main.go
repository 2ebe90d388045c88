package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/app"
	"github.com/segyhp/banquito/internal/backup"
	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/logger"
	"github.com/segyhp/banquito/internal/rates"
	"github.com/segyhp/banquito/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging)
	defer func() { _ = log.Sync() }()

	log.Info("starting ledger scheduler")

	ctx := context.Background()

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := app.OpenRedis(cfg)
	if err != nil {
		log.Fatal("failed to initialize redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	repos := app.NewRepositories(db)
	ledgerService := app.NewLedgerService(cfg, repos, redisClient, log)
	if err := ledgerService.EnsureCurrencies(ctx); err != nil {
		log.Fatal("failed to seed currencies", zap.Error(err))
	}

	jobs := scheduler.Jobs{Portfolio: ledgerService}

	if cfg.Rates.SourceURL != "" {
		source := rates.NewHTTPSource(cfg.Rates.SourceURL, cfg.GetRatesTimeout())
		jobs.Rates = rates.NewRefresher(source, ledgerService, log)
	} else {
		log.Warn("RATES_SOURCE_URL not set, exchange rates will not refresh")
	}

	sinks := []backup.Sink{backup.NewFileSink(cfg.Backup.Dir)}
	if cfg.Backup.Bucket != "" {
		gcsSink, err := backup.NewGCSSink(ctx, cfg.Backup.Bucket, log)
		if err != nil {
			log.Fatal("failed to initialize GCS backup sink", zap.Error(err))
		}
		defer gcsSink.Close()
		sinks = append(sinks, gcsSink)
	}
	jobs.Backup = backup.NewJob(repos.Clients, repos.Loans, repos.Payments, repos.Currencies, cfg.Backup.Prefix, log, sinks...)

	// Initialize cron scheduler
	c, err := scheduler.New(cfg.Scheduler, cfg.GetLocation(), jobs, log)
	if err != nil {
		log.Fatal("failed to schedule jobs", zap.Error(err))
	}

	// Start the scheduler
	c.Start()
	log.Info("scheduler started", zap.Int("jobs", len(c.Entries())), zap.String("timezone", cfg.Scheduler.Timezone))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}
