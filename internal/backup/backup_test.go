package backup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/mocks"
)

type failingSink struct{}

func (failingSink) Write(ctx context.Context, name string, data []byte) error {
	return errors.New("disk full")
}

func newTestJob(t *testing.T, sinks ...Sink) *Job {
	clients := &mocks.MockClientRepository{}
	loans := &mocks.MockLoanRepository{}
	payments := &mocks.MockPaymentRepository{}
	currencies := &mocks.MockCurrencyRepository{}

	loanID := uuid.New()
	clients.On("List", mock.Anything).Return([]*domain.Client{{ID: uuid.New(), FirstName: "Ana"}}, nil)
	loans.On("ListSnapshot", mock.Anything).Return([]*domain.LoanSnapshot{
		{Loan: domain.Loan{ID: loanID, Principal: decimal.NewFromInt(1000)}, ClientFirstName: "Ana"},
	}, nil)
	payments.On("ListAll", mock.Anything).Return([]*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromFloat(262.5), Sequence: 1},
	}, nil)
	currencies.On("Snapshot", mock.Anything).Return(&domain.CurrencySnapshot{
		Currencies: []*domain.Currency{{Code: "USD", Rate: decimal.NewFromInt(1), IsBase: true}},
		Selected:   "USD",
	}, nil)

	job := NewJob(clients, loans, payments, currencies, "banquito", nil, sinks...)
	job.now = func() time.Time { return time.Date(2024, 6, 1, 2, 30, 0, 0, time.UTC) }
	return job
}

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 6, 1, 2, 30, 0, 0, time.UTC)

	assert.Equal(t, "banquito-20240601T023000Z.json", ObjectName("banquito", at))
	assert.Equal(t, "backup-20240601T023000Z.json", ObjectName("", at))
}

func TestJob_Run_FileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	job := newTestJob(t, NewFileSink(dir))

	name, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "banquito-20240601T023000Z.json", name)

	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Len(t, snapshot.Clients, 1)
	require.Len(t, snapshot.Loans, 1)
	assert.True(t, snapshot.Loans[0].Principal.Equal(decimal.NewFromInt(1000)))
	require.Len(t, snapshot.Payments, 1)
	assert.Equal(t, 1, snapshot.Payments[0].Sequence)
	assert.Equal(t, "USD", snapshot.Currencies.Selected)

	_, err = os.Stat(filepath.Join(dir, name+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestJob_Run_AttemptsEverySink(t *testing.T) {
	dir := t.TempDir()
	job := newTestJob(t, failingSink{}, NewFileSink(dir))

	name, err := job.Run(context.Background())

	assert.EqualError(t, err, "disk full")
	_, statErr := os.Stat(filepath.Join(dir, name))
	assert.NoError(t, statErr)
}

func TestJob_Collect_Error(t *testing.T) {
	clients := &mocks.MockClientRepository{}
	clients.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

	job := NewJob(clients, nil, nil, nil, "banquito", nil)

	_, err := job.Collect(context.Background())
	assert.ErrorContains(t, err, "listing clients")
}

func newFakeGCS(t *testing.T, handler http.Handler) (*storage.Client, func()) {
	server := httptest.NewServer(handler)

	client, err := storage.NewClient(
		context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("Failed to create fake GCS client: %v", err)
	}

	return client, server.Close
}

func TestGCSSink_Write(t *testing.T) {
	var uploads int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			uploads++
			w.Header().Set("Location", "/upload-session")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		case http.MethodPut:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		default:
			t.Fatalf("Unexpected call: %s %s", r.Method, r.URL.Path)
		}
	})

	client, closeServer := newFakeGCS(t, handler)
	defer closeServer()

	sink := &GCSSink{Client: client, BucketName: "ledger-backups"}
	err := sink.Write(context.Background(), "banquito-20240601T023000Z.json", []byte(`{"loans":[]}`))

	assert.NoError(t, err)
	assert.Positive(t, uploads)
}

func TestGCSSink_CloseNilSafe(t *testing.T) {
	sink := &GCSSink{BucketName: "ledger-backups"}

	assert.NotPanics(t, sink.Close)
}
