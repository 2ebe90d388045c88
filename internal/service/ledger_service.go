package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/cache"
	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/currency"
	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/ledger"
	"github.com/segyhp/banquito/internal/repository"
	customError "github.com/segyhp/banquito/pkg/errors"
	"github.com/segyhp/banquito/pkg/utils"
)

type LedgerService struct {
	ClientRepo   repository.ClientRepository
	LoanRepo     repository.LoanRepository
	PaymentRepo  repository.PaymentRepository
	CurrencyRepo repository.CurrencyRepository
	cache        cache.SummaryCache
	config       *config.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewLedgerService(
	clientRepo repository.ClientRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	currencyRepo repository.CurrencyRepository,
	summaryCache cache.SummaryCache,
	config *config.Config,
	log *zap.Logger,
) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		ClientRepo:   clientRepo,
		LoanRepo:     loanRepo,
		PaymentRepo:  paymentRepo,
		CurrencyRepo: currencyRepo,
		cache:        summaryCache,
		config:       config,
		log:          log,
		now:          time.Now,
	}
}

// WithClock replaces the time source, for tests and replays
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// today is the current calendar date in the configured timezone, as UTC midnight
func (s *LedgerService) today() time.Time {
	return utils.StartOfDay(s.now().In(s.config.GetLocation()))
}

// CreateClient registers a new borrower
func (s *LedgerService) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	client := &domain.Client{
		ID:         uuid.New(),
		FirstName:  strings.TrimSpace(request.FirstName),
		LastName:   strings.TrimSpace(request.LastName),
		DocumentID: strings.TrimSpace(request.DocumentID),
		Phone:      strings.TrimSpace(request.Phone),
		Address:    strings.TrimSpace(request.Address),
		Notes:      request.Notes,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.ClientRepo.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

// GetClient returns one client
func (s *LedgerService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.ClientRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapClientNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

// ListClients returns every client
func (s *LedgerService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.ClientRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// CreateLoan validates the request, derives the due date when it is omitted and stores the loan
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanView, error) {
	client, err := s.GetClient(ctx, request.ClientID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	loan := &domain.Loan{
		ID:        uuid.New(),
		ClientID:  client.ID,
		Paid:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyTerms(loan, request); err != nil {
		return nil, err
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateSummary(ctx)

	s.log.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("client_id", client.ID.String()),
		zap.String("principal", loan.Principal.String()),
	)

	snapshot := &domain.LoanSnapshot{
		Loan:            *loan,
		ClientFirstName: client.FirstName,
		ClientLastName:  client.LastName,
		TotalPaid:       decimal.Zero,
	}
	return s.viewOf(ctx, snapshot)
}

// UpdateLoanTerms rewrites a loan's terms. Loans with payments are locked.
func (s *LedgerService) UpdateLoanTerms(ctx context.Context, id uuid.UUID, request *domain.CreateLoanRequest) (*domain.LoanView, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.PaymentRepo.CountByLoanID(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if count > 0 {
		return nil, customError.WrapLoanHasPayments(id.String())
	}

	if err := applyTerms(loan, request); err != nil {
		return nil, err
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateSummary(ctx)

	return s.GetLoan(ctx, id)
}

// applyTerms copies validated request terms onto loan
func applyTerms(loan *domain.Loan, request *domain.CreateLoanRequest) error {
	if !request.Principal.IsPositive() {
		return customError.WrapInvalidLoanAmount(request.Principal.String())
	}

	if request.Installments <= 0 || request.Installments > ledger.MaxInstallments {
		return customError.WrapInvalidInstallments(request.Installments, ledger.MaxInstallments)
	}

	period, ok := domain.ParsePaymentPeriod(request.Period)
	if !ok {
		return customError.WrapInvalidPeriod(request.Period)
	}

	startDate, ok := utils.ParseDate(request.StartDate)
	if !ok {
		return customError.WrapInvalidDate("start_date", request.StartDate)
	}

	loan.Principal = request.Principal
	loan.InterestRate = request.InterestRate
	loan.Installments = request.Installments
	loan.StartDate = startDate
	loan.Period = period
	loan.Collateral = strings.TrimSpace(request.Collateral)

	if request.DueDate != "" {
		dueDate, ok := utils.ParseDate(request.DueDate)
		if !ok {
			return customError.WrapInvalidDate("due_date", request.DueDate)
		}
		loan.DueDate = &dueDate
		return nil
	}

	loan.DueDate = nil
	if dueDate, ok := ledger.FinalDueDate(loan); ok {
		loan.DueDate = &dueDate
	}
	return nil
}

// GetLoan returns a loan with its derived figures
func (s *LedgerService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.LoanView, error) {
	snapshot, err := s.LoanRepo.GetSnapshot(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.viewOf(ctx, snapshot)
}

// GetSchedule expands a loan into its installments
func (s *LedgerService) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.ScheduleResponse, error) {
	snapshot, err := s.LoanRepo.GetSnapshot(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.ScheduleResponse{
		LoanID:   id.String(),
		Schedule: ledger.Schedule(&snapshot.Loan, snapshot.TotalPaid, s.today()),
	}, nil
}

// ListLoans returns the loans matching the status chip and search text, sorted
func (s *LedgerService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanView, error) {
	snapshots, err := s.LoanRepo.ListSnapshot(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	formatter, err := s.formatter(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	snapshots = ledger.FilterLoans(snapshots, filter.Status, today)
	snapshots = ledger.SearchLoans(snapshots, filter.Query)
	ledger.SortLoans(snapshots, filter.SortBy)

	views := make([]*domain.LoanView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		views = append(views, buildView(snapshot, formatter, today))
	}
	return views, nil
}

// RecordPayment appends a payment to a loan. The loan is marked paid once the
// remaining balance reaches zero.
func (s *LedgerService) RecordPayment(ctx context.Context, id uuid.UUID, request *domain.RecordPaymentRequest) (*domain.Payment, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Paid {
		return nil, customError.WrapLoanAlreadyPaid(id.String())
	}

	paidAt := s.today()
	if request.PaidAt != "" {
		parsed, ok := utils.ParseDate(request.PaidAt)
		if !ok {
			return nil, customError.WrapInvalidDate("paid_at", request.PaidAt)
		}
		paidAt = parsed
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		LoanID:    loan.ID,
		Amount:    request.Amount,
		PaidAt:    paidAt,
		CreatedAt: s.now().UTC(),
	}

	settled, err := s.PaymentRepo.Append(ctx, payment, func(totalPaid decimal.Decimal) bool {
		return !ledger.RemainingBalance(loan, totalPaid).IsPositive()
	})
	switch {
	case errors.Is(err, repository.ErrLoanSettled):
		return nil, customError.WrapLoanAlreadyPaid(id.String())
	case errors.Is(err, sql.ErrNoRows):
		return nil, customError.WrapLoanNotFound(id.String())
	case err != nil:
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateSummary(ctx)

	s.log.Info("payment recorded",
		zap.String("loan_id", loan.ID.String()),
		zap.Int("sequence", payment.Sequence),
		zap.String("amount", payment.Amount.String()),
		zap.Bool("settled", settled),
	)

	return payment, nil
}

// ListPayments returns a loan's payments in date order
func (s *LedgerService) ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.getLoan(ctx, id); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByLoanID(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// SetPaid toggles the paid flag of a loan
func (s *LedgerService) SetPaid(ctx context.Context, id uuid.UUID, paid bool) (*domain.LoanView, error) {
	err := s.LoanRepo.SetPaid(ctx, id, paid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidateSummary(ctx)

	s.log.Info("loan paid flag changed", zap.String("loan_id", id.String()), zap.Bool("paid", paid))
	return s.GetLoan(ctx, id)
}

func (s *LedgerService) getLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LedgerService) viewOf(ctx context.Context, snapshot *domain.LoanSnapshot) (*domain.LoanView, error) {
	formatter, err := s.formatter(ctx)
	if err != nil {
		return nil, err
	}
	return buildView(snapshot, formatter, s.today()), nil
}

func buildView(snapshot *domain.LoanSnapshot, formatter *currency.Formatter, today time.Time) *domain.LoanView {
	loan := snapshot.Loan
	installment := ledger.InstallmentValue(&loan)
	total := ledger.TotalPayable(&loan)
	remaining := ledger.RemainingBalance(&loan, snapshot.TotalPaid)

	return &domain.LoanView{
		Loan:             &loan,
		ClientName:       snapshot.ClientName(),
		Status:           ledger.Classify(&loan, today),
		InstallmentValue: installment.Round(2),
		TotalPayable:     total.Round(2),
		TotalPaid:        snapshot.TotalPaid.Round(2),
		RemainingBalance: remaining.Round(2),
		Profit:           ledger.Profit(&loan).Round(2),
		Display: domain.LoanDisplay{
			Currency:         formatter.Code(),
			InstallmentValue: formatter.Format(installment),
			TotalPayable:     formatter.Format(total),
			TotalPaid:        formatter.Format(snapshot.TotalPaid),
			RemainingBalance: formatter.Format(remaining),
		},
	}
}

func (s *LedgerService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("portfolio cache invalidation failed", zap.Error(err))
	}
}
