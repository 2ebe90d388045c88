package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/domain"
	"github.com/segyhp/banquito/internal/mocks"
	"github.com/segyhp/banquito/internal/repository"
	customError "github.com/segyhp/banquito/pkg/errors"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clients    *mocks.MockClientRepository
	loans      *mocks.MockLoanRepository
	payments   *mocks.MockPaymentRepository
	currencies *mocks.MockCurrencyRepository
	cache      *mocks.MockSummaryCache
	service    *LedgerService
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			BaseCurrency:           "USD",
			DefaultDisplayCurrency: "NIO",
			Locale:                 "en",
		},
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
	}
}

func newFixture() *fixture {
	f := &fixture{
		clients:    &mocks.MockClientRepository{},
		loans:      &mocks.MockLoanRepository{},
		payments:   &mocks.MockPaymentRepository{},
		currencies: &mocks.MockCurrencyRepository{},
		cache:      &mocks.MockSummaryCache{},
	}
	f.service = NewLedgerService(f.clients, f.loans, f.payments, f.currencies, f.cache, testConfig(), zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.clients.AssertExpectations(t)
	f.loans.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.currencies.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func currencySnapshot() *domain.CurrencySnapshot {
	return &domain.CurrencySnapshot{
		Currencies: []*domain.Currency{
			{Code: "NIO", Name: "Córdoba", Symbol: "C$", Rate: decimal.NewFromFloat(36.5)},
			{Code: "USD", Name: "US Dollar", Symbol: "$", Rate: decimal.NewFromInt(1), IsBase: true},
		},
	}
}

func TestCreateLoan(t *testing.T) {
	clientID := uuid.New()
	client := &domain.Client{ID: clientID, FirstName: "Ana", LastName: "López"}

	tests := []struct {
		name         string
		request      *domain.CreateLoanRequest
		setupMocks   func(f *fixture)
		expectedCode string
		validateLoan func(t *testing.T, view *domain.LoanView)
	}{
		{
			name: "Success - explicit due date",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				InterestRate: decimal.NewFromInt(5),
				Installments: 4,
				StartDate:    "01/06/2024",
				DueDate:      "15/07/2024",
				Period:       "semanal",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
				f.loans.On("Create", mock.Anything, mock.AnythingOfType("*domain.Loan")).Return(nil)
				f.cache.On("Invalidate", mock.Anything).Return(nil)
				f.currencies.On("Snapshot", mock.Anything).Return(currencySnapshot(), nil)
			},
			validateLoan: func(t *testing.T, view *domain.LoanView) {
				assert.Equal(t, "Ana López", view.ClientName)
				assert.Equal(t, domain.PeriodWeekly, view.Loan.Period)
				require.NotNil(t, view.Loan.DueDate)
				assert.True(t, view.Loan.DueDate.Equal(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)))
				assert.True(t, view.InstallmentValue.Equal(decimal.NewFromFloat(262.5)))
				assert.True(t, view.TotalPayable.Equal(decimal.NewFromInt(1050)))
				assert.True(t, view.RemainingBalance.Equal(decimal.NewFromInt(1050)))
				assert.Equal(t, domain.LoanStatusActive, view.Status)
				assert.Equal(t, "NIO", view.Display.Currency)
				assert.Equal(t, "C$38,325.00", view.Display.TotalPayable)
			},
		},
		{
			name: "Success - due date derived from schedule",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				InterestRate: decimal.NewFromInt(5),
				Installments: 4,
				StartDate:    "2024-06-01",
				Period:       "weekly",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
				f.loans.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.DueDate != nil && loan.DueDate.Equal(time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC))
				})).Return(nil)
				f.cache.On("Invalidate", mock.Anything).Return(nil)
				f.currencies.On("Snapshot", mock.Anything).Return(currencySnapshot(), nil)
			},
			validateLoan: func(t *testing.T, view *domain.LoanView) {
				assert.False(t, view.Loan.Paid)
			},
		},
		{
			name: "Failure - client not found",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				Installments: 4,
				StartDate:    "01/06/2024",
				Period:       "weekly",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(nil, sql.ErrNoRows)
			},
			expectedCode: customError.ErrCodeClientNotFound,
		},
		{
			name: "Failure - unknown period",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				Installments: 4,
				StartDate:    "01/06/2024",
				Period:       "yearly",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
			},
			expectedCode: customError.ErrCodeInvalidPeriod,
		},
		{
			name: "Failure - unparseable start date",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				Installments: 4,
				StartDate:    "06/31/2024",
				Period:       "weekly",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
			},
			expectedCode: customError.ErrCodeInvalidDate,
		},
		{
			name: "Failure - installment count above the limit",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				Installments: 2000000000,
				StartDate:    "01/06/2024",
				Period:       "daily",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
			},
			expectedCode: customError.ErrCodeInvalidInstallments,
		},
		{
			name: "Failure - database error on create",
			request: &domain.CreateLoanRequest{
				ClientID:     clientID,
				Principal:    decimal.NewFromInt(1000),
				Installments: 4,
				StartDate:    "01/06/2024",
				Period:       "weekly",
			},
			setupMocks: func(f *fixture) {
				f.clients.On("GetByID", mock.Anything, clientID).Return(client, nil)
				f.loans.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
			},
			expectedCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMocks(f)

			view, err := f.service.CreateLoan(context.Background(), tt.request)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, customError.Code(err))
				assert.Nil(t, view)
			} else {
				require.NoError(t, err)
				require.NotNil(t, view)
				tt.validateLoan(t, view)
			}

			f.assertExpectations(t)
		})
	}
}

func TestUpdateLoanTerms_LockedOncePaymentsExist(t *testing.T) {
	f := newFixture()
	loanID := uuid.New()

	f.loans.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{ID: loanID}, nil)
	f.payments.On("CountByLoanID", mock.Anything, loanID).Return(2, nil)

	_, err := f.service.UpdateLoanTerms(context.Background(), loanID, &domain.CreateLoanRequest{
		Principal:    decimal.NewFromInt(500),
		Installments: 2,
		StartDate:    "01/06/2024",
		Period:       "monthly",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanHasPayments))
	f.loans.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestRecordPayment(t *testing.T) {
	loanID := uuid.New()
	openLoan := func() *domain.Loan {
		return &domain.Loan{
			ID:           loanID,
			Principal:    decimal.NewFromInt(1000),
			InterestRate: decimal.NewFromInt(5),
			Installments: 4,
			Period:       domain.PeriodWeekly,
		}
	}

	t.Run("Success - settles the loan once the balance is covered", func(t *testing.T) {
		f := newFixture()
		f.loans.On("GetByID", mock.Anything, loanID).Return(openLoan(), nil)
		f.payments.On("Append", mock.Anything,
			mock.MatchedBy(func(p *domain.Payment) bool {
				return p.LoanID == loanID && p.PaidAt.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
			}),
			mock.MatchedBy(func(settled repository.SettledFunc) bool {
				return settled(decimal.NewFromInt(1050)) && settled(decimal.NewFromInt(1100)) && !settled(decimal.NewFromInt(1049))
			}),
		).Return(true, nil)
		f.cache.On("Invalidate", mock.Anything).Return(nil)

		payment, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromFloat(262.5),
		})

		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromFloat(262.5)))
		f.assertExpectations(t)
	})

	t.Run("Success - explicit payment date", func(t *testing.T) {
		f := newFixture()
		f.loans.On("GetByID", mock.Anything, loanID).Return(openLoan(), nil)
		f.payments.On("Append", mock.Anything,
			mock.MatchedBy(func(p *domain.Payment) bool {
				return p.PaidAt.Equal(time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC))
			}),
			mock.Anything,
		).Return(false, nil)
		f.cache.On("Invalidate", mock.Anything).Return(nil)

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
			PaidAt: "28/05/2024",
		})

		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Failure - loan already paid", func(t *testing.T) {
		f := newFixture()
		loan := openLoan()
		loan.Paid = true
		f.loans.On("GetByID", mock.Anything, loanID).Return(loan, nil)

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		assert.Equal(t, customError.ErrCodeLoanAlreadyPaid, customError.Code(err))
		f.payments.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - loan settled by a concurrent payment", func(t *testing.T) {
		f := newFixture()
		f.loans.On("GetByID", mock.Anything, loanID).Return(openLoan(), nil)
		f.payments.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Return(false, repository.ErrLoanSettled)

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		assert.Equal(t, customError.ErrCodeLoanAlreadyPaid, customError.Code(err))
		f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})

	t.Run("Failure - loan missing inside the transaction", func(t *testing.T) {
		f := newFixture()
		f.loans.On("GetByID", mock.Anything, loanID).Return(openLoan(), nil)
		f.payments.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Return(false, sql.ErrNoRows)

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		assert.Equal(t, customError.ErrCodeLoanNotFound, customError.Code(err))
	})

	t.Run("Failure - non-positive amount", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.Zero,
		})

		assert.Equal(t, customError.ErrCodeInvalidPaymentAmount, customError.Code(err))
		f.loans.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - loan not found", func(t *testing.T) {
		f := newFixture()
		f.loans.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

		_, err := f.service.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		assert.True(t, errors.Is(err, customError.ErrLoanNotFound))
	})
}

func TestSetPaid_NotFound(t *testing.T) {
	f := newFixture()
	loanID := uuid.New()
	f.loans.On("SetPaid", mock.Anything, loanID, true).Return(sql.ErrNoRows)

	_, err := f.service.SetPaid(context.Background(), loanID, true)

	assert.Equal(t, customError.ErrCodeLoanNotFound, customError.Code(err))
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestGetSchedule(t *testing.T) {
	f := newFixture()
	loanID := uuid.New()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.loans.On("GetSnapshot", mock.Anything, loanID).Return(&domain.LoanSnapshot{
		Loan: domain.Loan{
			ID:           loanID,
			Principal:    decimal.NewFromInt(1000),
			InterestRate: decimal.NewFromInt(5),
			Installments: 4,
			StartDate:    start,
			Period:       domain.PeriodWeekly,
		},
		TotalPaid: decimal.NewFromFloat(262.5),
	}, nil)

	schedule, err := f.service.GetSchedule(context.Background(), loanID)

	require.NoError(t, err)
	require.Len(t, schedule.Schedule, 4)
	assert.Equal(t, domain.ScheduleStatusPaid, schedule.Schedule[0].Status)
	assert.Equal(t, domain.ScheduleStatusOverdue, schedule.Schedule[1].Status)
	f.assertExpectations(t)
}

func TestListLoans_FiltersAndSorts(t *testing.T) {
	f := newFixture()
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	due := func(days int) *time.Time {
		d := today.AddDate(0, 0, days)
		return &d
	}
	snapshots := []*domain.LoanSnapshot{
		{Loan: domain.Loan{ID: uuid.New(), Principal: decimal.NewFromInt(100), Installments: 1, DueDate: due(10)}, ClientFirstName: "Ana"},
		{Loan: domain.Loan{ID: uuid.New(), Principal: decimal.NewFromInt(200), Installments: 1, DueDate: due(-5)}, ClientFirstName: "Beto"},
		{Loan: domain.Loan{ID: uuid.New(), Principal: decimal.NewFromInt(300), Installments: 1, DueDate: due(-60)}, ClientFirstName: "Carla"},
		{Loan: domain.Loan{ID: uuid.New(), Principal: decimal.NewFromInt(400), Installments: 1, DueDate: due(-90), Paid: true}, ClientFirstName: "Dora"},
	}
	f.loans.On("ListSnapshot", mock.Anything).Return(snapshots, nil)
	f.currencies.On("Snapshot", mock.Anything).Return(currencySnapshot(), nil)

	views, err := f.service.ListLoans(context.Background(), domain.LoanFilter{Status: "OVERDUE", SortBy: "principal"})

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Carla", views[0].ClientName)
	assert.Equal(t, domain.LoanStatusOverdueLong, views[0].Status)
	assert.Equal(t, "Beto", views[1].ClientName)
	assert.Equal(t, domain.LoanStatusOverdueRecent, views[1].Status)
}
