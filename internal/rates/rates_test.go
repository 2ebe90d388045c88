package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) ApplyRates(ctx context.Context, base string, rates map[string]decimal.Decimal) (int, error) {
	args := m.Called(ctx, base, rates)
	return args.Int(0), args.Error(1)
}

func TestHTTPSource_Fetch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr bool
		validate  func(t *testing.T, q *Quote)
	}{
		{
			name:   "numbers and codes are normalised",
			status: http.StatusOK,
			body:   `{"base":"usd","rates":{"nio":36.62,"CRC":"512.30"}}`,
			validate: func(t *testing.T, q *Quote) {
				assert.Equal(t, "USD", q.Base)
				assert.True(t, q.Rates["NIO"].Equal(decimal.NewFromFloat(36.62)))
				assert.True(t, q.Rates["CRC"].Equal(decimal.NewFromFloat(512.3)))
			},
		},
		{
			name:      "non-200 status",
			status:    http.StatusBadGateway,
			body:      `{}`,
			expectErr: true,
		},
		{
			name:      "missing base",
			status:    http.StatusOK,
			body:      `{"rates":{"NIO":36.62}}`,
			expectErr: true,
		},
		{
			name:      "garbage body",
			status:    http.StatusOK,
			body:      `<html>`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			quote, err := NewHTTPSource(server.URL, time.Second).Fetch(context.Background())

			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, quote)
		})
	}
}

func TestRefresher_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"NIO":36.7}}`))
	}))
	defer server.Close()

	applier := &mockApplier{}
	applier.On("ApplyRates", mock.Anything, "USD", mock.MatchedBy(func(rates map[string]decimal.Decimal) bool {
		return len(rates) == 1 && rates["NIO"].Equal(decimal.NewFromFloat(36.7))
	})).Return(1, nil)

	updated, err := NewRefresher(NewHTTPSource(server.URL, time.Second), applier, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	applier.AssertExpectations(t)
}

func TestRefresher_Run_ApplyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"NIO":40}}`))
	}))
	defer server.Close()

	applier := &mockApplier{}
	applier.On("ApplyRates", mock.Anything, "EUR", mock.Anything).Return(0, errors.New("rates quoted in EUR, expected USD"))

	_, err := NewRefresher(NewHTTPSource(server.URL, time.Second), applier, nil).Run(context.Background())

	assert.ErrorContains(t, err, "EUR")
}
