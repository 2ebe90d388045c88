package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one recorded installment. Payments are append-only.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	PaidAt    time.Time       `json:"paid_at" db:"paid_at"`
	Sequence  int             `json:"sequence" db:"sequence"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// PaymentTerms is a payment joined with the interest rate of its loan
type PaymentTerms struct {
	Amount       decimal.Decimal `db:"amount"`
	PaidAt       time.Time       `db:"paid_at"`
	InterestRate decimal.Decimal `db:"interest_rate"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	PaidAt string          `json:"paid_at"` // defaults to today
}
