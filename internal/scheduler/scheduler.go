// Package scheduler runs the ledger's periodic jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/domain"
)

type RateRefresher interface {
	Run(ctx context.Context) (int, error)
}

type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

type PortfolioRefresher interface {
	RefreshPortfolio(ctx context.Context) (*domain.PortfolioSummary, error)
}

// Jobs are the tasks to schedule. A nil job is not scheduled.
type Jobs struct {
	Rates     RateRefresher
	Backup    BackupRunner
	Portfolio PortfolioRefresher
}

// jobTimeout bounds a single run so a hung source cannot pile up runs
const jobTimeout = 5 * time.Minute

// New builds a cron with seconds precision in loc and registers every non-nil job
func New(cfg config.SchedulerConfig, loc *time.Location, jobs Jobs, log *zap.Logger) (*cron.Cron, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cronLog := cronLogger{log: log.Sugar()}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if jobs.Rates != nil {
		if _, err := c.AddFunc(cfg.RateRefreshSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if _, err := jobs.Rates.Run(ctx); err != nil {
				log.Error("exchange rate refresh failed", zap.Error(err))
			}
		}); err != nil {
			return nil, fmt.Errorf("scheduling rate refresh %q: %w", cfg.RateRefreshSpec, err)
		}
	}

	if jobs.Backup != nil {
		if _, err := c.AddFunc(cfg.BackupSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if _, err := jobs.Backup.Run(ctx); err != nil {
				log.Error("backup failed", zap.Error(err))
			}
		}); err != nil {
			return nil, fmt.Errorf("scheduling backup %q: %w", cfg.BackupSpec, err)
		}
	}

	if jobs.Portfolio != nil {
		if _, err := c.AddFunc(cfg.PortfolioSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			summary, err := jobs.Portfolio.RefreshPortfolio(ctx)
			if err != nil {
				log.Error("portfolio refresh failed", zap.Error(err))
				return
			}
			if summary.OverdueCount > 0 {
				log.Warn("loans overdue", zap.Int("count", summary.OverdueCount))
			}
		}); err != nil {
			return nil, fmt.Errorf("scheduling portfolio refresh %q: %w", cfg.PortfolioSpec, err)
		}
	}

	return c, nil
}

// cronLogger adapts zap to cron's logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
