// Package backup writes point-in-time JSON snapshots of the ledger to one or
// more sinks.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/repository"
)

// Snapshot is the complete ledger at TakenAt
type Snapshot struct {
	TakenAt    time.Time                `json:"taken_at"`
	Clients    []*domain.Client         `json:"clients"`
	Loans      []*domain.Loan           `json:"loans"`
	Payments   []*domain.Payment        `json:"payments"`
	Currencies *domain.CurrencySnapshot `json:"currencies"`
}

// Sink stores one named backup object
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

type Job struct {
	clients    repository.ClientRepository
	loans      repository.LoanRepository
	payments   repository.PaymentRepository
	currencies repository.CurrencyRepository
	sinks      []Sink
	prefix     string
	log        *zap.Logger
	now        func() time.Time
}

func NewJob(
	clients repository.ClientRepository,
	loans repository.LoanRepository,
	payments repository.PaymentRepository,
	currencies repository.CurrencyRepository,
	prefix string,
	log *zap.Logger,
	sinks ...Sink,
) *Job {
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{
		clients:    clients,
		loans:      loans,
		payments:   payments,
		currencies: currencies,
		sinks:      sinks,
		prefix:     prefix,
		log:        log,
		now:        time.Now,
	}
}

// Collect reads the whole ledger
func (j *Job) Collect(ctx context.Context) (*Snapshot, error) {
	clients, err := j.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	snapshots, err := j.loans.ListSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	loans := make([]*domain.Loan, 0, len(snapshots))
	for _, s := range snapshots {
		loan := s.Loan
		loans = append(loans, &loan)
	}

	payments, err := j.payments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	currencies, err := j.currencies.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}

	return &Snapshot{
		TakenAt:    j.now().UTC(),
		Clients:    clients,
		Loans:      loans,
		Payments:   payments,
		Currencies: currencies,
	}, nil
}

// Run collects a snapshot and writes it to every sink. It returns the object
// name. Every sink is attempted; the first failure is returned.
func (j *Job) Run(ctx context.Context) (string, error) {
	snapshot, err := j.Collect(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	name := ObjectName(j.prefix, snapshot.TakenAt)

	var firstErr error
	for _, sink := range j.sinks {
		if err := sink.Write(ctx, name, data); err != nil {
			j.log.Error("backup sink failed", zap.String("object", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return name, firstErr
	}

	j.log.Info("backup written",
		zap.String("object", name),
		zap.Int("loans", len(snapshot.Loans)),
		zap.Int("payments", len(snapshot.Payments)),
		zap.Int("bytes", len(data)),
	)
	return name, nil
}

// ObjectName names a backup taken at t: prefix-20240601T023000Z.json
func ObjectName(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "backup"
	}
	return fmt.Sprintf("%s-%s.json", prefix, t.UTC().Format("20060102T150405Z"))
}
