package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a display currency. Rate converts one unit of the base currency
// into this currency; the base currency has rate 1.
type Currency struct {
	Code      string          `json:"code" db:"code"`
	Name      string          `json:"name" db:"name"`
	Symbol    string          `json:"symbol" db:"symbol"`
	Rate      decimal.Decimal `json:"rate" db:"rate"`
	IsBase    bool            `json:"is_base" db:"is_base"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CurrencySnapshot is every known currency plus the selected display code
type CurrencySnapshot struct {
	Currencies []*Currency `json:"currencies"`
	Selected   string      `json:"selected"`
}

// Find returns the currency with the given code, or nil
func (s *CurrencySnapshot) Find(code string) *Currency {
	for _, c := range s.Currencies {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// Base returns the base currency, or nil when none is marked
func (s *CurrencySnapshot) Base() *Currency {
	for _, c := range s.Currencies {
		if c.IsBase {
			return c
		}
	}
	return nil
}

type SelectCurrencyRequest struct {
	Code string `json:"code" validate:"required,len=3"`
}

type UpdateRateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"gt=0"`
}
