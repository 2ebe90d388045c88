package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "business error", err: WrapLoanNotFound("42"), expected: ErrCodeLoanNotFound},
		{name: "wrapped business error", err: fmt.Errorf("recording payment: %w", WrapLoanAlreadyPaid("42")), expected: ErrCodeLoanAlreadyPaid},
		{name: "plain error", err: sql.ErrNoRows, expected: ""},
		{name: "nil", err: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Code(tt.err))
		})
	}
}

func TestBusinessError_Unwrap(t *testing.T) {
	err := WrapDatabaseError(sql.ErrConnDone)

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), ErrCodeDatabaseError)
	assert.True(t, errors.Is(WrapInvalidPeriod("yearly"), ErrInvalidPeriod))
	assert.True(t, errors.Is(WrapBaseCurrencyRate("USD"), ErrBaseCurrencyRate))
}

func TestBusinessError_Message(t *testing.T) {
	err := NewBusinessError("X", "something broke", nil)

	assert.Equal(t, "X: something broke", err.Error())
	assert.Nil(t, err.Unwrap())
}
