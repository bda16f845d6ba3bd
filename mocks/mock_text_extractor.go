package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTextExtractor) Supports(fileType domain.FileType) bool {
	args := m.Called(fileType)
	return args.Bool(0)
}

func (m *MockTextExtractor) Extract(ctx context.Context, input port.ExtractInput) (domain.RawDocument, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.RawDocument), args.Error(1)
}
