package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accepted date layouts, tried in order. Day/month/year comes first so that
// "25/12/2024" is never read as month/day.
const (
	LayoutDayMonthYear     = "02/01/2006"
	LayoutISODate          = "2006-01-02"
	LayoutDayMonthYearDash = "02-01-2006"
)

// DefaultDateLayouts is the ordered list used when ParseDate gets no layouts.
var DefaultDateLayouts = []string{
	LayoutDayMonthYear,
	LayoutISODate,
	LayoutDayMonthYearDash,
}

// ParseDate tries each layout in order and returns the first successful parse.
// It reports false when no layout matches; it never returns an error.
func ParseDate(value string, layouts ...string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatDate renders a date in the canonical storage layout
func FormatDate(t time.Time) string {
	return t.Format(LayoutISODate)
}

// StartOfDay truncates t to midnight UTC of its calendar date
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// IsDateOverdue checks if dueDate is on a calendar day before today
func IsDateOverdue(dueDate, today time.Time) bool {
	return DaysBetween(dueDate, today) > 0
}

// DecimalFromFloat converts float64 to decimal.Decimal
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
