package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the database for the given driver ("postgres" or "sqlite3")
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they don't already exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == "sqlite3" {
		schema = sqliteSchema
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("could not initialize schema: %w", err)
	}
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS clients (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	document_id TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS loans (
	id UUID PRIMARY KEY,
	client_id UUID NOT NULL REFERENCES clients(id),
	principal NUMERIC(18,4) NOT NULL,
	interest_rate NUMERIC(9,4) NOT NULL,
	installments INTEGER NOT NULL,
	start_date DATE NOT NULL,
	due_date DATE,
	period TEXT NOT NULL,
	collateral TEXT NOT NULL DEFAULT '',
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loans_client_id ON loans(client_id);
CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	loan_id UUID NOT NULL REFERENCES loans(id),
	amount NUMERIC(18,4) NOT NULL,
	paid_at DATE NOT NULL,
	sequence INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (loan_id, sequence)
);
CREATE INDEX IF NOT EXISTS idx_payments_loan_id ON payments(loan_id, paid_at);
CREATE TABLE IF NOT EXISTS currencies (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	rate NUMERIC(18,8) NOT NULL,
	is_base BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_currencies_single_base ON currencies(is_base) WHERE is_base;
CREATE TABLE IF NOT EXISTS settings (
	setting_key TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL
);
`

// Decimals are TEXT in SQLite so no precision is lost.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	document_id TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL REFERENCES clients(id),
	principal TEXT NOT NULL,
	interest_rate TEXT NOT NULL,
	installments INTEGER NOT NULL,
	start_date DATE NOT NULL,
	due_date DATE,
	period TEXT NOT NULL,
	collateral TEXT NOT NULL DEFAULT '',
	paid BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loans_client_id ON loans(client_id);
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(id),
	amount TEXT NOT NULL,
	paid_at DATE NOT NULL,
	sequence INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (loan_id, sequence)
);
CREATE INDEX IF NOT EXISTS idx_payments_loan_id ON payments(loan_id, paid_at);
CREATE TABLE IF NOT EXISTS currencies (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	rate TEXT NOT NULL,
	is_base BOOLEAN NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_currencies_single_base ON currencies(is_base) WHERE is_base = 1;
CREATE TABLE IF NOT EXISTS settings (
	setting_key TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL
);
`
