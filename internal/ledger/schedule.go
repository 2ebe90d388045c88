package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/pkg/utils"
)

// InstallmentDueDate returns when installment number k (1-based) falls due.
// Loans with an unrecognised period have every installment due on the loan's
// due date; ok is false when that is missing too.
func InstallmentDueDate(loan *domain.Loan, k int) (time.Time, bool) {
	start := utils.StartOfDay(loan.StartDate)

	period, _ := domain.ParsePaymentPeriod(string(loan.Period))
	switch period {
	case domain.PeriodDaily:
		return start.AddDate(0, 0, k), true
	case domain.PeriodWeekly:
		return start.AddDate(0, 0, 7*k), true
	case domain.PeriodBiweekly:
		return start.AddDate(0, 0, 14*k), true
	case domain.PeriodMonthly:
		return start.AddDate(0, k, 0), true
	}

	if loan.DueDate == nil {
		return time.Time{}, false
	}
	return utils.StartOfDay(*loan.DueDate), true
}

// FinalDueDate derives the due date of the last installment
func FinalDueDate(loan *domain.Loan) (time.Time, bool) {
	if loan.Installments <= 0 {
		return time.Time{}, false
	}
	return InstallmentDueDate(loan, loan.Installments)
}

// Schedule expands a loan into its installments. The first installments
// covered by totalPaid are marked paid; unpaid ones before today are overdue.
func Schedule(loan *domain.Loan, totalPaid decimal.Decimal, today time.Time) []*domain.Installment {
	if loan.Installments <= 0 {
		return []*domain.Installment{}
	}

	value := InstallmentValue(loan)
	paid := PaidInstallments(loan, totalPaid)
	if loan.Paid {
		paid = loan.Installments
	}

	schedule := make([]*domain.Installment, 0, loan.Installments)
	for k := 1; k <= loan.Installments; k++ {
		dueDate, known := InstallmentDueDate(loan, k)

		status := domain.ScheduleStatusPending
		switch {
		case k <= paid:
			status = domain.ScheduleStatusPaid
		case known && utils.IsDateOverdue(dueDate, today):
			status = domain.ScheduleStatusOverdue
		}

		schedule = append(schedule, &domain.Installment{
			Number:    k,
			DueAmount: value,
			DueDate:   dueDate,
			Status:    status,
		})
	}

	return schedule
}
