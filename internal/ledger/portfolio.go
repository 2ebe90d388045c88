package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/pkg/utils"
)

// DueSoonWindowDays is how far ahead Aggregate looks for upcoming installments
const DueSoonWindowDays = 7

// Aggregate folds a loan snapshot into portfolio totals. The result does not
// depend on the order of loans. ProfitToDate is left zero: it comes from
// payment history, not from the snapshot.
func Aggregate(loans []*domain.LoanSnapshot, today time.Time) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		CapitalTotal:       decimal.Zero,
		CirculatingCapital: decimal.Zero,
		ProfitToDate:       decimal.Zero,
		DueThisWeekTotal:   decimal.Zero,
	}

	for _, snap := range loans {
		loan := &snap.Loan

		status := Classify(loan, today)
		if status == domain.LoanStatusPaid {
			summary.PaidCount++
			continue
		}

		summary.CapitalTotal = summary.CapitalTotal.Add(loan.Principal)
		if status.IsOverdue() {
			summary.OverdueCount++
		} else {
			summary.ActiveCount++
			summary.CirculatingCapital = summary.CirculatingCapital.Add(RemainingBalance(loan, snap.TotalPaid))
		}

		count, total := dueWithin(loan, snap.TotalPaid, today, DueSoonWindowDays)
		summary.DueThisWeekCount += count
		summary.DueThisWeekTotal = summary.DueThisWeekTotal.Add(total)
	}

	return summary
}

// dueWithin counts unpaid installments falling due between today and today+days inclusive
func dueWithin(loan *domain.Loan, totalPaid decimal.Decimal, today time.Time, days int) (int, decimal.Decimal) {
	value := InstallmentValue(loan)
	count := 0

	for k := PaidInstallments(loan, totalPaid) + 1; k <= loan.Installments; k++ {
		dueDate, ok := InstallmentDueDate(loan, k)
		if !ok {
			break
		}

		ahead := utils.DaysBetween(today, dueDate)
		if ahead > days {
			break
		}
		if ahead >= 0 {
			count++
		}
	}

	return count, value.Mul(decimal.NewFromInt(int64(count)))
}
