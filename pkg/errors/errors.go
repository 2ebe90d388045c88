package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrCurrencyNotFound     = errors.New("currency not found")
	ErrInvalidLoanAmount    = errors.New("invalid loan amount")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidPeriod        = errors.New("invalid payment period")
	ErrInvalidRate          = errors.New("invalid exchange rate")
	ErrInvalidRateBase      = errors.New("exchange rates quoted against another base currency")
	ErrInvalidInstallments  = errors.New("invalid installment count")
	ErrLoanAlreadyPaid      = errors.New("loan is already paid")
	ErrLoanHasPayments      = errors.New("loan terms are locked once payments exist")
	ErrBaseCurrencyRate     = errors.New("base currency rate is fixed at 1")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeClientNotFound       = "CLIENT_NOT_FOUND"
	ErrCodeCurrencyNotFound     = "CURRENCY_NOT_FOUND"
	ErrCodeInvalidLoanAmount    = "INVALID_LOAN_AMOUNT"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidDate          = "INVALID_DATE"
	ErrCodeInvalidPeriod        = "INVALID_PERIOD"
	ErrCodeInvalidRate          = "INVALID_RATE"
	ErrCodeInvalidRateBase      = "INVALID_RATE_BASE"
	ErrCodeInvalidInstallments  = "INVALID_INSTALLMENTS"
	ErrCodeLoanAlreadyPaid      = "LOAN_ALREADY_PAID"
	ErrCodeLoanHasPayments      = "LOAN_HAS_PAYMENTS"
	ErrCodeBaseCurrencyRate     = "BASE_CURRENCY_RATE"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Code extracts the business error code from err, or "" when err carries none
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapClientNotFound(clientID string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("Client with ID %s not found", clientID),
		ErrClientNotFound,
	)
}

func WrapCurrencyNotFound(code string) *BusinessError {
	return NewBusinessError(
		ErrCodeCurrencyNotFound,
		fmt.Sprintf("Currency %s not found", code),
		ErrCurrencyNotFound,
	)
}

func WrapInvalidDate(field, value string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("%s %q is not a recognised date", field, value),
		ErrInvalidDate,
	)
}

func WrapInvalidPeriod(period string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPeriod,
		fmt.Sprintf("Payment period %q is not one of daily, weekly, biweekly, monthly", period),
		ErrInvalidPeriod,
	)
}

func WrapLoanAlreadyPaid(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyPaid,
		fmt.Sprintf("Loan with ID %s is already paid", loanID),
		ErrLoanAlreadyPaid,
	)
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanHasPayments,
		fmt.Sprintf("Loan with ID %s already has payments", loanID),
		ErrLoanHasPayments,
	)
}

func WrapBaseCurrencyRate(code string) *BusinessError {
	return NewBusinessError(
		ErrCodeBaseCurrencyRate,
		fmt.Sprintf("Currency %s is the base currency", code),
		ErrBaseCurrencyRate,
	)
}

func WrapInvalidRate(rate string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRate,
		fmt.Sprintf("Invalid exchange rate: %s", rate),
		ErrInvalidRate,
	)
}

func WrapInvalidRateBase(base, expected string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRateBase,
		fmt.Sprintf("Rates are quoted in %s, expected %s", base, expected),
		ErrInvalidRateBase,
	)
}

func WrapInvalidInstallments(count, max int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstallments,
		fmt.Sprintf("Installment count %d must be between 1 and %d", count, max),
		ErrInvalidInstallments,
	)
}

func WrapInvalidLoanAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Invalid loan amount: %s", amount),
		ErrInvalidLoanAmount,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
