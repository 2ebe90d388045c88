// Package ledger holds the loan arithmetic, overdue classification and
// portfolio aggregation shared by every surface of the service. Everything
// here is pure: no I/O, no clock, no validation.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/banquito/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// MaxInstallments bounds the installment count of a loan. Schedules and
// due-date scans walk every installment.
const MaxInstallments = 1000

// Interest returns principal × rate/100
func Interest(loan *domain.Loan) decimal.Decimal {
	return loan.Principal.Mul(loan.InterestRate).Div(hundred)
}

// TotalPayable returns principal plus simple interest
func TotalPayable(loan *domain.Loan) decimal.Decimal {
	return loan.Principal.Add(Interest(loan))
}

// InstallmentValue splits the total payable evenly across installments.
// A non-positive installment count yields zero.
func InstallmentValue(loan *domain.Loan) decimal.Decimal {
	if loan.Installments <= 0 {
		return decimal.Zero
	}
	return TotalPayable(loan).Div(decimal.NewFromInt(int64(loan.Installments)))
}

// RemainingBalance returns the total payable minus what has been paid so far
func RemainingBalance(loan *domain.Loan, totalPaid decimal.Decimal) decimal.Decimal {
	return TotalPayable(loan).Sub(totalPaid)
}

// Profit returns principal × rate/100 × installment count.
// The interest is multiplied by the installment count, not by elapsed periods.
func Profit(loan *domain.Loan) decimal.Decimal {
	return Interest(loan).Mul(decimal.NewFromInt(int64(loan.Installments)))
}

// InterestPortion returns the share of a payment that is interest for a loan
// charging rate percent: amount × rate / (100 + rate).
func InterestPortion(amount, rate decimal.Decimal) decimal.Decimal {
	denominator := hundred.Add(rate)
	if denominator.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(denominator)
}

// PaidInstallments returns how many whole installments totalPaid covers,
// capped at the loan's installment count
func PaidInstallments(loan *domain.Loan, totalPaid decimal.Decimal) int {
	value := InstallmentValue(loan)
	if !value.IsPositive() || !totalPaid.IsPositive() {
		return 0
	}

	// tolerate rounding left over from Div on the last installment
	covered := int(totalPaid.Add(value.Mul(epsilon)).Div(value).IntPart())
	if covered > loan.Installments {
		return loan.Installments
	}
	return covered
}

var epsilon = decimal.New(1, -9)
