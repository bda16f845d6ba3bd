package noop

import (
	"context"
	"log"

	"medscan/internal/domain"
	"medscan/internal/email"
	"medscan/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates an EmailSender that only logs the notification.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendAnalysisReady(_ context.Context, toEmail string, report *domain.Report) error {
	msg := email.BuildAnalysisReady(report, s.frontendURL)
	log.Printf("[NOOP EMAIL] %q to %s: %s", msg.Subject, toEmail, email.ReportURL(s.frontendURL, report))
	return nil
}
