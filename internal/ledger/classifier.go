package ledger

import (
	"time"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/pkg/utils"
)

// OverdueLongAfterDays splits the recent and long overdue buckets
const OverdueLongAfterDays = 30

// Classify returns the status of a loan on the given day. PAID wins over any
// date check; a loan without a due date is ACTIVE.
func Classify(loan *domain.Loan, today time.Time) domain.LoanStatus {
	if loan.Paid {
		return domain.LoanStatusPaid
	}
	if loan.DueDate == nil {
		return domain.LoanStatusActive
	}
	return classifyDue(*loan.DueDate, today)
}

// ClassifyDueDate classifies from a raw due date string. Strings that match no
// accepted layout classify as ACTIVE.
func ClassifyDueDate(dueDate string, paid bool, today time.Time) domain.LoanStatus {
	if paid {
		return domain.LoanStatusPaid
	}
	due, ok := utils.ParseDate(dueDate)
	if !ok {
		return domain.LoanStatusActive
	}
	return classifyDue(due, today)
}

func classifyDue(due, today time.Time) domain.LoanStatus {
	daysPast := utils.DaysBetween(due, today)
	switch {
	case daysPast <= 0:
		return domain.LoanStatusActive
	case daysPast <= OverdueLongAfterDays:
		return domain.LoanStatusOverdueRecent
	default:
		return domain.LoanStatusOverdueLong
	}
}
