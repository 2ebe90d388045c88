package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business logic constants
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// Installment is one entry of a loan's derived repayment schedule
type Installment struct {
	Number    int             `json:"number"`
	DueAmount decimal.Decimal `json:"due_amount"`
	DueDate   time.Time       `json:"due_date"`
	Status    string          `json:"status"` // pending, paid, overdue
}

type ScheduleResponse struct {
	LoanID   string         `json:"loan_id"`
	Schedule []*Installment `json:"schedule"`
}
