package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// List retrieves all clients ordered by name
	List(ctx context.Context) ([]*domain.Client, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update updates the terms of a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// SetPaid sets the paid flag of a loan
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) error

	// GetSnapshot retrieves one loan with its client name and total paid
	GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.LoanSnapshot, error)

	// ListSnapshot retrieves every loan with its client name and total paid
	ListSnapshot(ctx context.Context) ([]*domain.LoanSnapshot, error)
}

// ErrLoanSettled is returned by Append when the loan is already marked paid
var ErrLoanSettled = errors.New("loan is already settled")

// SettledFunc decides, from the total paid after a new payment, whether the loan is settled
type SettledFunc func(totalPaid decimal.Decimal) bool

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only: there is no update or delete.
type PaymentRepository interface {
	// Append stores a payment, assigning its sequence number, and marks the
	// loan paid when settled reports true. Runs in one transaction holding the
	// loan row; fails with ErrLoanSettled on a paid loan and sql.ErrNoRows on
	// a missing one.
	Append(ctx context.Context, payment *domain.Payment, settled SettledFunc) (bool, error)

	// ListByLoanID retrieves all payments for a loan ordered by date
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// ListAll retrieves every payment
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// CountByLoanID counts the payments of a loan
	CountByLoanID(ctx context.Context, loanID uuid.UUID) (int, error)

	// ListTermsUntil retrieves payments made on or before until, with their loan's rate
	ListTermsUntil(ctx context.Context, until time.Time) ([]*domain.PaymentTerms, error)
}

// CurrencyRepository defines the interface for currency data operations
type CurrencyRepository interface {
	// List retrieves all currencies ordered by code
	List(ctx context.Context) ([]*domain.Currency, error)

	// Snapshot retrieves all currencies plus the selected display currency code
	Snapshot(ctx context.Context) (*domain.CurrencySnapshot, error)

	// InsertIfMissing stores a currency unless one with the same code exists
	InsertIfMissing(ctx context.Context, currency *domain.Currency) error

	// UpdateRate overwrites the rate of a currency
	UpdateRate(ctx context.Context, code string, rate decimal.Decimal, at time.Time) error

	// SetSelected stores the selected display currency code
	SetSelected(ctx context.Context, code string) error
}
