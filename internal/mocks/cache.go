package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/banquito/internal/domain"
)

type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSummaryCache) Get(ctx context.Context, day time.Time) (*domain.PortfolioSummary, bool, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.PortfolioSummary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Set(ctx context.Context, day time.Time, generation int64, summary *domain.PortfolioSummary) error {
	args := m.Called(ctx, day, generation, summary)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
