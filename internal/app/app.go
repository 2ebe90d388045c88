// Package app wires configuration into the stores and services shared by the
// server, scheduler and importer binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/cache"
	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/repository"
	"github.com/segyhp/banquito/internal/service"
)

// Repositories groups every store the services need
type Repositories struct {
	Clients    repository.ClientRepository
	Loans      repository.LoanRepository
	Payments   repository.PaymentRepository
	Currencies repository.CurrencyRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Clients:    repository.NewClientRepository(db),
		Loans:      repository.NewLoanRepository(db),
		Payments:   repository.NewPaymentRepository(db),
		Currencies: repository.NewCurrencyRepository(db),
	}
}

// OpenDatabase connects, sizes the pool and applies the schema
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Database.Driver, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

// OpenRedis returns a client for the summary cache, or nil when neither
// REDIS_URL nor REDIS_HOST is set
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}

	if cfg.Redis.Host == "" {
		return nil, nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}), nil
}

// NewLedgerService builds the service over repos. A nil redis client disables
// the summary cache.
func NewLedgerService(cfg *config.Config, repos *Repositories, rdb *redis.Client, log *zap.Logger) *service.LedgerService {
	var summaryCache cache.SummaryCache
	if rdb != nil {
		summaryCache = cache.NewRedisSummaryCache(rdb, cfg.GetSummaryTTL())
	}

	return service.NewLedgerService(
		repos.Clients,
		repos.Loans,
		repos.Payments,
		repos.Currencies,
		summaryCache,
		cfg,
		log,
	)
}
