package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus is the overdue classification of a loan on a given day
type LoanStatus string

const (
	LoanStatusActive        LoanStatus = "ACTIVE"
	LoanStatusOverdueRecent LoanStatus = "OVERDUE_RECENT"
	LoanStatusOverdueLong   LoanStatus = "OVERDUE_LONG"
	LoanStatusPaid          LoanStatus = "PAID"
)

// IsOverdue reports whether the status is one of the overdue buckets
func (s LoanStatus) IsOverdue() bool {
	return s == LoanStatusOverdueRecent || s == LoanStatusOverdueLong
}

// PaymentPeriod is the label describing how often installments fall due
type PaymentPeriod string

const (
	PeriodDaily    PaymentPeriod = "daily"
	PeriodWeekly   PaymentPeriod = "weekly"
	PeriodBiweekly PaymentPeriod = "biweekly"
	PeriodMonthly  PaymentPeriod = "monthly"
)

var periodAliases = map[string]PaymentPeriod{
	"daily":     PeriodDaily,
	"diario":    PeriodDaily,
	"weekly":    PeriodWeekly,
	"semanal":   PeriodWeekly,
	"biweekly":  PeriodBiweekly,
	"quincenal": PeriodBiweekly,
	"monthly":   PeriodMonthly,
	"mensual":   PeriodMonthly,
}

// ParsePaymentPeriod maps a stored or user-entered label onto a known period.
// Unknown labels are returned as-is with ok=false.
func ParsePaymentPeriod(label string) (PaymentPeriod, bool) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return PaymentPeriod(label), false
	}
	return p, true
}

// Loan represents a loan entity
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ClientID     uuid.UUID       `json:"client_id" db:"client_id"`
	Principal    decimal.Decimal `json:"principal" db:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"` // percentage, 5 means 5%
	Installments int             `json:"installments" db:"installments"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	DueDate      *time.Time      `json:"due_date" db:"due_date"` // nil when legacy data was unparseable
	Period       PaymentPeriod   `json:"period" db:"period"`
	Collateral   string          `json:"collateral" db:"collateral"`
	Paid         bool            `json:"paid" db:"paid"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanSnapshot is a loan joined with its client's name and the sum of its payments
type LoanSnapshot struct {
	Loan
	ClientFirstName string          `json:"client_first_name" db:"client_first_name"`
	ClientLastName  string          `json:"client_last_name" db:"client_last_name"`
	TotalPaid       decimal.Decimal `json:"total_paid" db:"total_paid"`
}

// ClientName returns the display name of the borrower
func (s LoanSnapshot) ClientName() string {
	return strings.TrimSpace(s.ClientFirstName + " " + s.ClientLastName)
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	ClientID     uuid.UUID       `json:"client_id" validate:"required"`
	Principal    decimal.Decimal `json:"principal" validate:"gt=0"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	Installments int             `json:"installments" validate:"required,gt=0,lte=1000"` // see ledger.MaxInstallments
	StartDate    string          `json:"start_date" validate:"required"`
	DueDate      string          `json:"due_date"`
	Period       string          `json:"period" validate:"required"`
	Collateral   string          `json:"collateral" validate:"max=500"`
}

type SetPaidRequest struct {
	Paid bool `json:"paid"`
}

// LoanView is a loan with its derived figures, amounts in base currency plus
// their rendering in the selected display currency
type LoanView struct {
	Loan             *Loan           `json:"loan"`
	ClientName       string          `json:"client_name"`
	Status           LoanStatus      `json:"status"`
	InstallmentValue decimal.Decimal `json:"installment_value"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Profit           decimal.Decimal `json:"profit"`
	Display          LoanDisplay     `json:"display"`
}

type LoanDisplay struct {
	Currency         string `json:"currency"`
	InstallmentValue string `json:"installment_value"`
	TotalPayable     string `json:"total_payable"`
	TotalPaid        string `json:"total_paid"`
	RemainingBalance string `json:"remaining_balance"`
}

// LoanFilter drives the loan list: status chip, free-text client search and sort key
type LoanFilter struct {
	Status LoanStatus
	Query  string
	SortBy string
}
