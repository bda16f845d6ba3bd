package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medscan/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAnalysisReady(ctx context.Context, toEmail string, report *domain.Report) error {
	args := m.Called(ctx, toEmail, report)
	return args.Error(0)
}
