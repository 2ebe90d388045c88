package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/ledger"
	customError "github.com/segyhp/banquito/pkg/errors"
)

// GetPortfolio returns today's dashboard summary. A cached summary is reused
// until a write invalidates it or the day changes.
func (s *LedgerService) GetPortfolio(ctx context.Context) (*domain.PortfolioResponse, error) {
	today := s.today()

	var summary *domain.PortfolioSummary
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, today)
		if err != nil {
			s.log.Warn("portfolio cache read failed", zap.Error(err))
		}
		if ok {
			summary = cached
		}
	}

	if summary == nil {
		computed, err := s.RefreshPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		summary = computed
	}

	formatter, err := s.formatter(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.PortfolioResponse{
		AsOf:     today,
		Summary:  *summary,
		Currency: formatter.Code(),
		Display: map[string]string{
			"capital_total":       formatter.Format(summary.CapitalTotal),
			"circulating_capital": formatter.Format(summary.CirculatingCapital),
			"profit_to_date":      formatter.Format(summary.ProfitToDate),
			"due_this_week_total": formatter.Format(summary.DueThisWeekTotal),
		},
	}, nil
}

// RefreshPortfolio recomputes today's summary from the store and caches it
func (s *LedgerService) RefreshPortfolio(ctx context.Context) (*domain.PortfolioSummary, error) {
	today := s.today()

	// generation must be read before the snapshot
	cacheable := s.cache != nil
	var generation int64
	if cacheable {
		g, err := s.cache.Generation(ctx)
		if err != nil {
			s.log.Warn("portfolio cache generation read failed", zap.Error(err))
			cacheable = false
		}
		generation = g
	}

	snapshots, err := s.LoanRepo.ListSnapshot(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := ledger.Aggregate(snapshots, today)

	profit, err := s.profitToDate(ctx)
	if err != nil {
		return nil, err
	}
	summary.ProfitToDate = profit

	if cacheable {
		if err := s.cache.Set(ctx, today, generation, &summary); err != nil {
			s.log.Warn("portfolio cache write failed", zap.Error(err))
		}
	}

	s.log.Debug("portfolio aggregated",
		zap.Int("active", summary.ActiveCount),
		zap.Int("overdue", summary.OverdueCount),
		zap.Int("paid", summary.PaidCount),
		zap.String("capital_total", summary.CapitalTotal.String()),
	)

	return &summary, nil
}

// profitToDate sums the interest share of every payment made up to today
func (s *LedgerService) profitToDate(ctx context.Context) (decimal.Decimal, error) {
	terms, err := s.PaymentRepo.ListTermsUntil(ctx, s.today())
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	profit := decimal.Zero
	for _, t := range terms {
		profit = profit.Add(ledger.InterestPortion(t.Amount, t.InterestRate))
	}
	return profit, nil
}
