// Package legacy migrates a ledger kept in the old SQLite layout, where dates
// were typed in by hand as text, into the current store.
//
// Expected legacy tables:
//
//	clients(id, first_name, last_name, document_id, phone, address, notes)
//	loans(id, client_id, principal, interest_rate, installments, start_date,
//	      due_date, period, collateral, paid)
//	payments(id, loan_id, amount, paid_at)
package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/ledger"
	"github.com/segyhp/banquito/internal/repository"
	"github.com/segyhp/banquito/pkg/utils"
)

// namespace for deterministic IDs, so re-running an import finds the rows it already wrote
var namespace = uuid.MustParse("6f1c7c1e-5d0a-4b5e-9a43-2f7b0c1d9e11")

type legacyClient struct {
	ID         int64          `db:"id"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	DocumentID sql.NullString `db:"document_id"`
	Phone      sql.NullString `db:"phone"`
	Address    sql.NullString `db:"address"`
	Notes      sql.NullString `db:"notes"`
}

type legacyLoan struct {
	ID           int64          `db:"id"`
	ClientID     int64          `db:"client_id"`
	Principal    sql.NullString `db:"principal"`
	InterestRate sql.NullString `db:"interest_rate"`
	Installments sql.NullInt64  `db:"installments"`
	StartDate    sql.NullString `db:"start_date"`
	DueDate      sql.NullString `db:"due_date"`
	Period       sql.NullString `db:"period"`
	Collateral   sql.NullString `db:"collateral"`
	Paid         sql.NullBool   `db:"paid"`
}

type legacyPayment struct {
	ID     int64          `db:"id"`
	LoanID int64          `db:"loan_id"`
	Amount sql.NullString `db:"amount"`
	PaidAt sql.NullString `db:"paid_at"`
}

// Report summarises one import run
type Report struct {
	Clients         int      `json:"clients"`
	Loans           int      `json:"loans"`
	Payments        int      `json:"payments"`
	Existing        int      `json:"existing"`
	MissingDueDates int      `json:"missing_due_dates"`
	Skipped         []string `json:"skipped"`
}

func (r *Report) skip(format string, args ...interface{}) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

type Importer struct {
	source   *sqlx.DB
	clients  repository.ClientRepository
	loans    repository.LoanRepository
	payments repository.PaymentRepository
	layouts  []string
	dryRun   bool
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Importer)

// WithLayouts overrides the date layouts tried on legacy text dates
func WithLayouts(layouts ...string) Option {
	return func(i *Importer) { i.layouts = layouts }
}

// WithDryRun parses everything but writes nothing
func WithDryRun(dryRun bool) Option {
	return func(i *Importer) { i.dryRun = dryRun }
}

func NewImporter(
	source *sqlx.DB,
	clients repository.ClientRepository,
	loans repository.LoanRepository,
	payments repository.PaymentRepository,
	log *zap.Logger,
	opts ...Option,
) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Importer{
		source:   source,
		clients:  clients,
		loans:    loans,
		payments: payments,
		layouts:  utils.DefaultDateLayouts,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ClientID is the new identifier of a legacy client row
func ClientID(legacyID int64) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("client:"+strconv.FormatInt(legacyID, 10)))
}

// LoanID is the new identifier of a legacy loan row
func LoanID(legacyID int64) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("loan:"+strconv.FormatInt(legacyID, 10)))
}

// PaymentID is the new identifier of a legacy payment row
func PaymentID(legacyID int64) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("payment:"+strconv.FormatInt(legacyID, 10)))
}

// Run copies clients, then loans, then payments. Rows already present in the
// target are left alone; rows that cannot be read are skipped and reported.
func (i *Importer) Run(ctx context.Context) (*Report, error) {
	report := &Report{Skipped: []string{}}

	if err := i.importClients(ctx, report); err != nil {
		return report, err
	}

	imported, err := i.importLoans(ctx, report)
	if err != nil {
		return report, err
	}

	if err := i.importPayments(ctx, imported, report); err != nil {
		return report, err
	}

	if err := i.markPaid(ctx, imported); err != nil {
		return report, err
	}

	i.log.Info("legacy import finished",
		zap.Int("clients", report.Clients),
		zap.Int("loans", report.Loans),
		zap.Int("payments", report.Payments),
		zap.Int("existing", report.Existing),
		zap.Int("missing_due_dates", report.MissingDueDates),
		zap.Int("skipped", len(report.Skipped)),
		zap.Bool("dry_run", i.dryRun),
	)
	return report, nil
}

func (i *Importer) importClients(ctx context.Context, report *Report) error {
	var rows []legacyClient
	query := `SELECT id, first_name, last_name, document_id, phone, address, notes FROM clients ORDER BY id`
	if err := i.source.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("reading legacy clients: %w", err)
	}

	now := i.now().UTC()
	for _, row := range rows {
		client := &domain.Client{
			ID:         ClientID(row.ID),
			FirstName:  row.FirstName.String,
			LastName:   row.LastName.String,
			DocumentID: row.DocumentID.String,
			Phone:      row.Phone.String,
			Address:    row.Address.String,
			Notes:      row.Notes.String,
			CreatedAt:  now,
		}

		exists, err := i.exists(func() error {
			_, err := i.clients.GetByID(ctx, client.ID)
			return err
		})
		if err != nil {
			return err
		}
		if exists {
			report.Existing++
			continue
		}

		if !i.dryRun {
			if err := i.clients.Create(ctx, client); err != nil {
				return fmt.Errorf("writing client %d: %w", row.ID, err)
			}
		}
		report.Clients++
	}
	return nil
}

// importLoans returns the legacy loans written in this run with their legacy
// paid flag, so that payments of loans already present are not appended twice.
// Loans are written unpaid; markPaid restores the flag once payments are in.
func (i *Importer) importLoans(ctx context.Context, report *Report) (map[int64]bool, error) {
	var rows []legacyLoan
	query := `
		SELECT id, client_id, principal, interest_rate, installments, start_date,
		       due_date, period, collateral, paid
		FROM loans ORDER BY id`
	if err := i.source.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("reading legacy loans: %w", err)
	}

	imported := make(map[int64]bool, len(rows))
	now := i.now().UTC()
	for _, row := range rows {
		loan, ok := i.convertLoan(row, report)
		if !ok {
			continue
		}
		loan.CreatedAt = now
		loan.UpdatedAt = now

		exists, err := i.exists(func() error {
			_, err := i.loans.GetByID(ctx, loan.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if exists {
			report.Existing++
			continue
		}

		paid := loan.Paid
		loan.Paid = false
		if !i.dryRun {
			if err := i.loans.Create(ctx, loan); err != nil {
				return nil, fmt.Errorf("writing loan %d: %w", row.ID, err)
			}
		}
		imported[row.ID] = paid
		report.Loans++
	}
	return imported, nil
}

func (i *Importer) convertLoan(row legacyLoan, report *Report) (*domain.Loan, bool) {
	principal, err := utils.DecimalFromString(row.Principal.String)
	if err != nil {
		report.skip("loan %d: principal %q is not a number", row.ID, row.Principal.String)
		return nil, false
	}

	rate := decimal.Zero
	if row.InterestRate.Valid && row.InterestRate.String != "" {
		rate, err = utils.DecimalFromString(row.InterestRate.String)
		if err != nil {
			report.skip("loan %d: interest rate %q is not a number", row.ID, row.InterestRate.String)
			return nil, false
		}
	}

	if row.Installments.Int64 > ledger.MaxInstallments {
		report.skip("loan %d: %d installments exceeds the limit of %d", row.ID, row.Installments.Int64, ledger.MaxInstallments)
		return nil, false
	}

	startDate, ok := utils.ParseDate(row.StartDate.String, i.layouts...)
	if !ok {
		report.skip("loan %d: start date %q is not a recognised date", row.ID, row.StartDate.String)
		return nil, false
	}

	period, known := domain.ParsePaymentPeriod(row.Period.String)
	if !known {
		i.log.Warn("legacy loan has an unknown period", zap.Int64("legacy_id", row.ID), zap.String("period", row.Period.String))
	}

	loan := &domain.Loan{
		ID:           LoanID(row.ID),
		ClientID:     ClientID(row.ClientID),
		Principal:    principal,
		InterestRate: rate,
		Installments: int(row.Installments.Int64),
		StartDate:    startDate,
		Period:       period,
		Collateral:   row.Collateral.String,
		Paid:         row.Paid.Bool,
	}

	if due, ok := utils.ParseDate(row.DueDate.String, i.layouts...); ok {
		loan.DueDate = &due
	} else if due, ok := ledger.FinalDueDate(loan); ok && row.DueDate.String == "" {
		loan.DueDate = &due
	} else {
		// stays nil and classifies as active
		report.MissingDueDates++
		i.log.Warn("legacy loan due date unreadable",
			zap.Int64("legacy_id", row.ID),
			zap.String("due_date", row.DueDate.String),
		)
	}

	return loan, true
}

func (i *Importer) importPayments(ctx context.Context, imported map[int64]bool, report *Report) error {
	var rows []legacyPayment
	query := `SELECT id, loan_id, amount, paid_at FROM payments ORDER BY loan_id, id`
	if err := i.source.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("reading legacy payments: %w", err)
	}

	now := i.now().UTC()
	for _, row := range rows {
		if _, ok := imported[row.LoanID]; !ok {
			continue
		}

		amount, err := utils.DecimalFromString(row.Amount.String)
		if err != nil || !amount.IsPositive() {
			report.skip("payment %d: amount %q is not a positive number", row.ID, row.Amount.String)
			continue
		}

		paidAt, ok := utils.ParseDate(row.PaidAt.String, i.layouts...)
		if !ok {
			report.skip("payment %d: date %q is not a recognised date", row.ID, row.PaidAt.String)
			continue
		}

		payment := &domain.Payment{
			ID:        PaymentID(row.ID),
			LoanID:    LoanID(row.LoanID),
			Amount:    amount,
			PaidAt:    paidAt,
			CreatedAt: now,
		}

		if !i.dryRun {
			// the legacy paid flag is authoritative, so never settle here
			if _, err := i.payments.Append(ctx, payment, nil); err != nil {
				return fmt.Errorf("writing payment %d: %w", row.ID, err)
			}
		}
		report.Payments++
	}
	return nil
}

// markPaid applies the legacy paid flag, which is authoritative over payments
func (i *Importer) markPaid(ctx context.Context, imported map[int64]bool) error {
	if i.dryRun {
		return nil
	}
	for legacyID, paid := range imported {
		if !paid {
			continue
		}
		if err := i.loans.SetPaid(ctx, LoanID(legacyID), true); err != nil {
			return fmt.Errorf("marking loan %d paid: %w", legacyID, err)
		}
	}
	return nil
}

func (i *Importer) exists(lookup func() error) (bool, error) {
	if i.dryRun {
		return false, nil
	}
	err := lookup()
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
