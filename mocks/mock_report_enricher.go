package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// MockReportEnricher is a mock implementation of port.ReportEnricher.
type MockReportEnricher struct {
	mock.Mock
}

func (m *MockReportEnricher) Enrich(ctx context.Context, input port.EnrichInput) (*domain.AIAnalysis, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIAnalysis), args.Error(1)
}

func (m *MockReportEnricher) Name() string {
	args := m.Called()
	return args.String(0)
}
