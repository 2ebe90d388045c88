package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/currency"
	"github.com/segyhp/banquito/internal/domain"
	customError "github.com/segyhp/banquito/pkg/errors"
)

// EnsureCurrencies seeds the base currency and the default display currency.
// Existing rows are left untouched.
func (s *LedgerService) EnsureCurrencies(ctx context.Context) error {
	now := s.now().UTC()
	base := s.config.GetBaseCurrency()

	codes := []string{base}
	if display := strings.ToUpper(s.config.Business.DefaultDisplayCurrency); display != "" && display != base {
		codes = append(codes, display)
	}

	for _, code := range codes {
		name, symbol, ok := currency.Lookup(code)
		if !ok {
			s.log.Warn("seeding unknown currency", zap.String("code", code))
		}

		err := s.CurrencyRepo.InsertIfMissing(ctx, &domain.Currency{
			Code:      code,
			Name:      name,
			Symbol:    symbol,
			Rate:      decimal.NewFromInt(1),
			IsBase:    code == base,
			UpdatedAt: now,
		})
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
	}

	return nil
}

// ListCurrencies returns every currency and the selected display code
func (s *LedgerService) ListCurrencies(ctx context.Context) (*domain.CurrencySnapshot, error) {
	snapshot, err := s.currencySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SelectDisplayCurrency changes the currency amounts are displayed in
func (s *LedgerService) SelectDisplayCurrency(ctx context.Context, code string) (*domain.CurrencySnapshot, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	snapshot, err := s.currencySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot.Find(code) == nil {
		return nil, customError.WrapCurrencyNotFound(code)
	}

	if err := s.CurrencyRepo.SetSelected(ctx, code); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	snapshot.Selected = code

	s.log.Info("display currency selected", zap.String("code", code))
	return snapshot, nil
}

// UpdateRate overwrites the conversion rate of a non-base currency
func (s *LedgerService) UpdateRate(ctx context.Context, code string, rate decimal.Decimal) (*domain.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !rate.IsPositive() {
		return nil, customError.WrapInvalidRate(rate.String())
	}

	snapshot, err := s.currencySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	target := snapshot.Find(code)
	if target == nil {
		return nil, customError.WrapCurrencyNotFound(code)
	}
	if target.IsBase {
		return nil, customError.WrapBaseCurrencyRate(code)
	}

	now := s.now().UTC()
	if err := s.CurrencyRepo.UpdateRate(ctx, code, rate, now); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	target.Rate = rate
	target.UpdatedAt = now
	return target, nil
}

// ApplyRates overwrites every known non-base currency found in rates. Rates
// quoted against another base are rejected. Returns how many were updated.
func (s *LedgerService) ApplyRates(ctx context.Context, base string, rates map[string]decimal.Decimal) (int, error) {
	if !strings.EqualFold(base, s.config.GetBaseCurrency()) {
		return 0, customError.WrapInvalidRateBase(base, s.config.GetBaseCurrency())
	}

	currencies, err := s.CurrencyRepo.List(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	updated := 0
	for _, c := range currencies {
		if c.IsBase {
			continue
		}
		rate, ok := rates[c.Code]
		if !ok || !rate.IsPositive() {
			s.log.Warn("no usable rate for currency", zap.String("code", c.Code))
			continue
		}
		if _, err := s.UpdateRate(ctx, c.Code, rate); err != nil {
			return updated, err
		}
		updated++
	}

	s.log.Info("exchange rates applied", zap.Int("updated", updated))
	return updated, nil
}

// currencySnapshot reads the currencies and falls back to the configured
// default when no display currency was ever selected
func (s *LedgerService) currencySnapshot(ctx context.Context) (*domain.CurrencySnapshot, error) {
	snapshot, err := s.CurrencyRepo.Snapshot(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if snapshot.Selected == "" {
		snapshot.Selected = strings.ToUpper(s.config.Business.DefaultDisplayCurrency)
	}
	return snapshot, nil
}

func (s *LedgerService) formatter(ctx context.Context) (*currency.Formatter, error) {
	snapshot, err := s.currencySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return currency.FromSnapshot(snapshot, s.config.GetLocale()), nil
}
