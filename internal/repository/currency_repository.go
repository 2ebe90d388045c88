package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
)

const selectedCurrencyKey = "display_currency"

type currencyRepository struct {
	db *sqlx.DB
}

func NewCurrencyRepository(db *sqlx.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	query := `
		SELECT code, name, symbol, rate, is_base, updated_at
		FROM currencies
		ORDER BY code
	`

	currencies := []*domain.Currency{}
	if err := r.db.SelectContext(ctx, &currencies, query); err != nil {
		return nil, err
	}

	return currencies, nil
}

func (r *currencyRepository) Snapshot(ctx context.Context) (*domain.CurrencySnapshot, error) {
	currencies, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var selected string
	err = r.db.GetContext(ctx, &selected,
		r.db.Rebind(`SELECT setting_value FROM settings WHERE setting_key = ?`), selectedCurrencyKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &domain.CurrencySnapshot{Currencies: currencies, Selected: selected}, nil
}

func (r *currencyRepository) InsertIfMissing(ctx context.Context, currency *domain.Currency) error {
	query := r.db.Rebind(`
		INSERT INTO currencies (code, name, symbol, rate, is_base, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
	`)

	_, err := r.db.ExecContext(ctx, query,
		currency.Code,
		currency.Name,
		currency.Symbol,
		currency.Rate,
		currency.IsBase,
		currency.UpdatedAt,
	)

	return err
}

func (r *currencyRepository) UpdateRate(ctx context.Context, code string, rate decimal.Decimal, at time.Time) error {
	query := r.db.Rebind(`UPDATE currencies SET rate = ?, updated_at = ? WHERE code = ?`)
	return expectOneRow(r.db.ExecContext(ctx, query, rate, at, code))
}

func (r *currencyRepository) SetSelected(ctx context.Context, code string) error {
	query := r.db.Rebind(`
		INSERT INTO settings (setting_key, setting_value)
		VALUES (?, ?)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value
	`)

	_, err := r.db.ExecContext(ctx, query, selectedCurrencyKey, code)
	return err
}
