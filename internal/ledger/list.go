package ledger

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/segyhp/banquito/internal/domain"
)

// Sort keys accepted by SortLoans
const (
	SortByDueDate   = "due_date"
	SortByPrincipal = "principal"
	SortByClient    = "client"
	SortByStartDate = "start_date"
)

// StatusOverdue is a filter-only status selecting either overdue bucket
const StatusOverdue domain.LoanStatus = "OVERDUE"

// FilterLoans keeps the loans whose status matches. An empty status keeps
// everything and StatusOverdue matches both overdue buckets.
func FilterLoans(loans []*domain.LoanSnapshot, status domain.LoanStatus, today time.Time) []*domain.LoanSnapshot {
	if status == "" {
		return loans
	}

	filtered := make([]*domain.LoanSnapshot, 0, len(loans))
	for _, snap := range loans {
		current := Classify(&snap.Loan, today)
		if current == status || (status == StatusOverdue && current.IsOverdue()) {
			filtered = append(filtered, snap)
		}
	}
	return filtered
}

// SearchLoans keeps the loans whose client name or collateral contains query,
// ignoring case
func SearchLoans(loans []*domain.LoanSnapshot, query string) []*domain.LoanSnapshot {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return loans
	}

	found := make([]*domain.LoanSnapshot, 0, len(loans))
	for _, snap := range loans {
		if strings.Contains(strings.ToLower(snap.ClientName()), query) ||
			strings.Contains(strings.ToLower(snap.Collateral), query) {
			found = append(found, snap)
		}
	}
	return found
}

// SortLoans orders loans in place by key. Unknown keys sort by due date.
// Loans without a due date go last.
func SortLoans(loans []*domain.LoanSnapshot, key string) {
	slices.SortStableFunc(loans, func(a, b *domain.LoanSnapshot) int {
		switch key {
		case SortByPrincipal:
			return b.Principal.Cmp(a.Principal)
		case SortByClient:
			return cmp.Compare(strings.ToLower(a.ClientName()), strings.ToLower(b.ClientName()))
		case SortByStartDate:
			return b.StartDate.Compare(a.StartDate)
		default:
			return compareDueDates(a.DueDate, b.DueDate)
		}
	})
}

func compareDueDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
