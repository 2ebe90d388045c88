package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/ledger"
	"github.com/segyhp/banquito/internal/repository"
)

const legacySchema = `
CREATE TABLE clients (
	id INTEGER PRIMARY KEY,
	first_name TEXT, last_name TEXT, document_id TEXT,
	phone TEXT, address TEXT, notes TEXT
);
CREATE TABLE loans (
	id INTEGER PRIMARY KEY,
	client_id INTEGER,
	principal REAL,
	interest_rate REAL,
	installments INTEGER,
	start_date TEXT,
	due_date TEXT,
	period TEXT,
	collateral TEXT,
	paid INTEGER
);
CREATE TABLE payments (
	id INTEGER PRIMARY KEY,
	loan_id INTEGER,
	amount REAL,
	paid_at TEXT
);

INSERT INTO clients (id, first_name, last_name, phone) VALUES
	(1, 'Ana', 'López', '8888-1111'),
	(2, 'Beto', 'Ruiz', NULL);

INSERT INTO loans VALUES
	(10, 1, 1000, 5, 4, '01/05/2024', '29/05/2024', 'semanal', 'moto', 0),
	(11, 2, 500, 10, 2, '2024-04-01', 'pronto', 'mensual', '', 0),
	(12, 2, 300, 0, 3, '2024-05-10', '', 'quincenal', NULL, 1),
	(13, 1, 200, 5, 1, 'ayer', '01/06/2024', 'semanal', '', 0),
	(14, 1, 900, 5, 5000000, '01/05/2024', '', 'diario', '', 0);

INSERT INTO payments VALUES
	(100, 10, 262.5, '08/05/2024'),
	(101, 10, 262.5, '2024-05-15'),
	(102, 11, 275, 'sin fecha'),
	(103, 12, 100, '24-05-2024'),
	(104, 13, 50, '01/06/2024');
`

func setupLegacy(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(legacySchema)
	require.NoError(t, err)
	return db
}

func setupTarget(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := repository.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(context.Background(), db))
	return db
}

func newTestImporter(source, target *sqlx.DB, opts ...Option) *Importer {
	return NewImporter(source,
		repository.NewClientRepository(target),
		repository.NewLoanRepository(target),
		repository.NewPaymentRepository(target),
		nil,
		opts...,
	)
}

func TestImporter_Run(t *testing.T) {
	ctx := context.Background()
	source := setupLegacy(t)
	target := setupTarget(t)

	report, err := newTestImporter(source, target).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Clients)
	assert.Equal(t, 3, report.Loans, "loan 13 has an unreadable start date and loan 14 too many installments")
	assert.Equal(t, 3, report.Payments, "payment 102 has no date and 104 belongs to a skipped loan")
	assert.Equal(t, 1, report.MissingDueDates)
	assert.Len(t, report.Skipped, 3)

	loans := repository.NewLoanRepository(target)

	first, err := loans.GetSnapshot(ctx, LoanID(10))
	require.NoError(t, err)
	assert.Equal(t, "Ana López", first.ClientName())
	assert.Equal(t, domain.PeriodWeekly, first.Period)
	require.NotNil(t, first.DueDate)
	assert.True(t, first.DueDate.Equal(time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC)))
	assert.True(t, first.TotalPaid.Equal(decimal.NewFromInt(525)))

	second, err := loans.GetByID(ctx, LoanID(11))
	require.NoError(t, err)
	assert.Nil(t, second.DueDate)
	assert.Equal(t, domain.LoanStatusActive, ledger.Classify(second, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	third, err := loans.GetByID(ctx, LoanID(12))
	require.NoError(t, err)
	require.NotNil(t, third.DueDate, "empty due date is derived from the schedule")
	assert.True(t, third.DueDate.Equal(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)))
	assert.True(t, third.Paid)

	settled, err := loans.GetSnapshot(ctx, LoanID(12))
	require.NoError(t, err)
	assert.True(t, settled.TotalPaid.Equal(decimal.NewFromInt(100)), "payments of a paid legacy loan are kept")

	payments, err := repository.NewPaymentRepository(target).ListByLoanID(ctx, LoanID(10))
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, 1, payments[0].Sequence)
	assert.Equal(t, 2, payments[1].Sequence)
}

func TestImporter_RunTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	source := setupLegacy(t)
	target := setupTarget(t)

	_, err := newTestImporter(source, target).Run(ctx)
	require.NoError(t, err)

	report, err := newTestImporter(source, target).Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, report.Clients)
	assert.Zero(t, report.Loans)
	assert.Zero(t, report.Payments)
	assert.Equal(t, 5, report.Existing)

	all, err := repository.NewPaymentRepository(target).ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImporter_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	source := setupLegacy(t)
	target := setupTarget(t)

	report, err := newTestImporter(source, target, WithDryRun(true)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Loans)

	snapshots, err := repository.NewLoanRepository(target).ListSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestImporter_CustomLayouts(t *testing.T) {
	ctx := context.Background()
	source := setupLegacy(t)
	target := setupTarget(t)

	report, err := newTestImporter(source, target, WithLayouts("2006-01-02")).Run(ctx)
	require.NoError(t, err)

	// only loans 11 and 12 have ISO start dates
	assert.Equal(t, 2, report.Loans)
}

func TestDeterministicIDs(t *testing.T) {
	assert.Equal(t, LoanID(10), LoanID(10))
	assert.NotEqual(t, LoanID(10), ClientID(10))
	assert.NotEqual(t, LoanID(10), PaymentID(10))
}
