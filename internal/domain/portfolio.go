package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSummary is the result of folding a loan snapshot. Amounts are in base currency.
type PortfolioSummary struct {
	CapitalTotal       decimal.Decimal `json:"capital_total"`
	CirculatingCapital decimal.Decimal `json:"circulating_capital"`
	ProfitToDate       decimal.Decimal `json:"profit_to_date"`
	ActiveCount        int             `json:"active_count"`
	OverdueCount       int             `json:"overdue_count"`
	PaidCount          int             `json:"paid_count"`
	DueThisWeekCount   int             `json:"due_this_week_count"`
	DueThisWeekTotal   decimal.Decimal `json:"due_this_week_total"`
}

type PortfolioResponse struct {
	AsOf     time.Time         `json:"as_of"`
	Summary  PortfolioSummary  `json:"summary"`
	Currency string            `json:"currency"`
	Display  map[string]string `json:"display"`
}
