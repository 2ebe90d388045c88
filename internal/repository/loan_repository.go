package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
)

const snapshotColumns = `
	l.id, l.client_id, l.principal, l.interest_rate, l.installments, l.start_date, l.due_date,
	l.period, l.collateral, l.paid, l.created_at, l.updated_at,
	COALESCE(c.first_name, '') AS client_first_name,
	COALESCE(c.last_name, '') AS client_last_name
`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := r.db.Rebind(`
		INSERT INTO loans (id, client_id, principal, interest_rate, installments, start_date, due_date,
			period, collateral, paid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ClientID,
		loan.Principal,
		loan.InterestRate,
		loan.Installments,
		loan.StartDate,
		loan.DueDate,
		loan.Period,
		loan.Collateral,
		loan.Paid,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT id, client_id, principal, interest_rate, installments, start_date, due_date,
			period, collateral, paid, created_at, updated_at
		FROM loans
		WHERE id = ?
	`)

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := r.db.Rebind(`
		UPDATE loans
		SET principal = ?, interest_rate = ?, installments = ?, start_date = ?, due_date = ?,
			period = ?, collateral = ?, updated_at = ?
		WHERE id = ?
	`)

	return expectOneRow(r.db.ExecContext(ctx, query,
		loan.Principal,
		loan.InterestRate,
		loan.Installments,
		loan.StartDate,
		loan.DueDate,
		loan.Period,
		loan.Collateral,
		time.Now(),
		loan.ID,
	))
}

func (r *loanRepository) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	query := r.db.Rebind(`UPDATE loans SET paid = ?, updated_at = ? WHERE id = ?`)
	return expectOneRow(r.db.ExecContext(ctx, query, paid, time.Now(), id))
}

func (r *loanRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.LoanSnapshot, error) {
	query := r.db.Rebind(`
		SELECT ` + snapshotColumns + `
		FROM loans l
		LEFT JOIN clients c ON c.id = l.client_id
		WHERE l.id = ?
	`)

	var snapshot domain.LoanSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		return nil, err
	}

	totals, err := r.totalsPaid(ctx, &id)
	if err != nil {
		return nil, err
	}
	snapshot.TotalPaid = totals[id]

	return &snapshot, nil
}

func (r *loanRepository) ListSnapshot(ctx context.Context) ([]*domain.LoanSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM loans l
		LEFT JOIN clients c ON c.id = l.client_id
		ORDER BY l.created_at
	`

	snapshots := []*domain.LoanSnapshot{}
	if err := r.db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, err
	}

	totals, err := r.totalsPaid(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		s.TotalPaid = totals[s.ID]
	}

	return snapshots, nil
}

type paymentAmount struct {
	LoanID uuid.UUID       `db:"loan_id"`
	Amount decimal.Decimal `db:"amount"`
}

// totalsPaid sums payment amounts per loan in Go to keep decimal precision on every driver
func (r *loanRepository) totalsPaid(ctx context.Context, loanID *uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	query := `SELECT loan_id, amount FROM payments`
	args := []interface{}{}
	if loanID != nil {
		query += ` WHERE loan_id = ?`
		args = append(args, *loanID)
	}

	var rows []paymentAmount
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, row := range rows {
		totals[row.LoanID] = totals[row.LoanID].Add(row.Amount)
	}
	return totals, nil
}

func expectOneRow(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
