package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medscan/internal/domain"
	"medscan/internal/export"
	"medscan/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Analyze(ctx context.Context, input service.AnalyzeInput) (*domain.Report, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Report), args.Int(1), args.Error(2)
}

func (m *MockReportService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// Export writes the string in the second return slot, if any, before
// returning the error.
func (m *MockReportService) Export(ctx context.Context, ownerID string, format export.Format, w io.Writer) error {
	args := m.Called(ctx, ownerID, format, w)
	if len(args) > 1 {
		if body, ok := args.Get(1).(string); ok {
			_, _ = io.WriteString(w, body)
		}
	}
	return args.Error(0)
}

func (m *MockReportService) Stats(ctx context.Context, ownerID string) (map[domain.AnalysisStatus]int, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.AnalysisStatus]int), args.Error(1)
}

func (m *MockReportService) EnrichmentEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
