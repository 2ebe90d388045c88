// Package currency converts base-currency amounts into the selected display
// currency and renders them for people.
package currency

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/segyhp/banquito/internal/domain"
)

var defaultPrinter = message.NewPrinter(language.English)

// ToDisplay converts an amount in base currency using rate
func ToDisplay(baseAmount, rate decimal.Decimal) decimal.Decimal {
	return baseAmount.Mul(rate)
}

// Format converts a base-currency amount with rate, then renders it:
// Format(100, 36.5, "C$") == "C$3,650.00".
func Format(baseAmount, rate decimal.Decimal, symbol string) string {
	return FormatNoConvert(ToDisplay(baseAmount, rate), symbol)
}

// FormatNoConvert renders amount exactly as given, prefixed by symbol, with
// English grouping and two fraction digits: FormatNoConvert(3650, "C$") == "C$3,650.00".
func FormatNoConvert(amount decimal.Decimal, symbol string) string {
	return render(defaultPrinter, amount, symbol)
}

// maxGrouped is the largest whole part the printer can group exactly
var maxGrouped = decimal.NewFromInt(math.MaxInt64)

func render(p *message.Printer, amount decimal.Decimal, symbol string) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	abs := rounded.Abs()
	fixed := abs.StringFixed(2)
	cents := fixed[len(fixed)-2:]

	whole := fixed[:len(fixed)-3]
	if abs.LessThanOrEqual(maxGrouped) {
		whole = p.Sprint(number.Decimal(abs.IntPart()))
	}

	return sign + symbol + whole + decimalSeparator(p) + cents
}

// decimalSeparator returns the fraction separator of the printer's locale
func decimalSeparator(p *message.Printer) string {
	sample := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	return strings.TrimSuffix(strings.TrimPrefix(sample, "1"), "5")
}

// Formatter renders amounts in one display currency. It carries the selected
// currency explicitly instead of reading it from shared state.
type Formatter struct {
	code    string
	symbol  string
	rate    decimal.Decimal
	printer *message.Printer
}

// NewFormatter builds a formatter for the given display currency and locale
func NewFormatter(code, symbol string, rate decimal.Decimal, locale language.Tag) *Formatter {
	return &Formatter{
		code:    code,
		symbol:  symbol,
		rate:    rate,
		printer: message.NewPrinter(locale),
	}
}

// FromSnapshot builds a formatter for the snapshot's selected currency. It
// falls back to the base currency, then to a bare formatter with rate 1.
func FromSnapshot(snapshot *domain.CurrencySnapshot, locale language.Tag) *Formatter {
	selected := snapshot.Find(snapshot.Selected)
	if selected == nil {
		selected = snapshot.Base()
	}
	if selected == nil {
		return NewFormatter("", "", decimal.NewFromInt(1), locale)
	}
	return NewFormatter(selected.Code, selected.Symbol, selected.Rate, locale)
}

// Code returns the display currency code
func (f *Formatter) Code() string {
	return f.code
}

// ToDisplay converts a base-currency amount into the display currency
func (f *Formatter) ToDisplay(baseAmount decimal.Decimal) decimal.Decimal {
	return ToDisplay(baseAmount, f.rate)
}

// Format converts baseAmount into the display currency, then renders it.
// Only pass amounts held in base currency.
func (f *Formatter) Format(baseAmount decimal.Decimal) string {
	return render(f.printer, f.ToDisplay(baseAmount), f.symbol)
}

// FormatNoConvert renders an amount already expressed in the display currency.
// The rate is never applied.
func (f *Formatter) FormatNoConvert(displayAmount decimal.Decimal) string {
	return render(f.printer, displayAmount, f.symbol)
}

// FormatRaw parses raw as a base-currency amount and formats it. Input that is
// not a number is returned unchanged.
func (f *Formatter) FormatRaw(raw string) string {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return f.Format(amount)
}
