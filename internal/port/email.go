package port

import (
	"context"

	"medscan/internal/domain"
)

// EmailSender delivers analysis notifications.
type EmailSender interface {
	SendAnalysisReady(ctx context.Context, toEmail string, report *domain.Report) error
}
