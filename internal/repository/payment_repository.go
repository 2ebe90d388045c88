package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Append(ctx context.Context, payment *domain.Payment, settled SettledFunc) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// concurrent appends to one loan queue here on postgres; sqlite
	// serialises writers on its own
	lock := `SELECT paid FROM loans WHERE id = ?`
	if r.db.DriverName() == "postgres" {
		lock += ` FOR UPDATE`
	}
	var paid bool
	if err = tx.GetContext(ctx, &paid, tx.Rebind(lock), payment.LoanID); err != nil {
		return false, err
	}
	if paid {
		return false, ErrLoanSettled
	}

	var previous []decimal.Decimal
	if err = tx.SelectContext(ctx, &previous, tx.Rebind(`SELECT amount FROM payments WHERE loan_id = ?`), payment.LoanID); err != nil {
		return false, err
	}

	totalPaid := payment.Amount
	for _, amount := range previous {
		totalPaid = totalPaid.Add(amount)
	}
	payment.Sequence = len(previous) + 1

	insert := tx.Rebind(`
		INSERT INTO payments (id, loan_id, amount, paid_at, sequence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if _, err = tx.ExecContext(ctx, insert,
		payment.ID,
		payment.LoanID,
		payment.Amount,
		payment.PaidAt,
		payment.Sequence,
		payment.CreatedAt,
	); err != nil {
		return false, err
	}

	isSettled := settled != nil && settled(totalPaid)
	if isSettled {
		update := tx.Rebind(`UPDATE loans SET paid = ?, updated_at = ? WHERE id = ?`)
		if _, err = tx.ExecContext(ctx, update, true, time.Now(), payment.LoanID); err != nil {
			return false, err
		}
	}

	return isSettled, tx.Commit()
}

func (r *paymentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := r.db.Rebind(`
		SELECT id, loan_id, amount, paid_at, sequence, created_at
		FROM payments
		WHERE loan_id = ?
		ORDER BY paid_at, sequence
	`)

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, amount, paid_at, sequence, created_at
		FROM payments
		ORDER BY loan_id, sequence
	`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountByLoanID(ctx context.Context, loanID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM payments WHERE loan_id = ?`), loanID)
	return count, err
}

func (r *paymentRepository) ListTermsUntil(ctx context.Context, until time.Time) ([]*domain.PaymentTerms, error) {
	query := r.db.Rebind(`
		SELECT p.amount, p.paid_at, l.interest_rate
		FROM payments p
		JOIN loans l ON l.id = p.loan_id
		WHERE p.paid_at <= ?
	`)

	terms := []*domain.PaymentTerms{}
	if err := r.db.SelectContext(ctx, &terms, query, until); err != nil {
		return nil, err
	}

	return terms, nil
}
