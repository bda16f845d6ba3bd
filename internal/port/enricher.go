package port

import (
	"context"

	"medscan/internal/domain"
)

// EnrichInput carries the text and classification handed to an LLM.
type EnrichInput struct {
	Text       string
	ReportType domain.ReportType
}

// ReportEnricher produces a free-form AI narrative for a medical report.
type ReportEnricher interface {
	Name() string
	Enrich(ctx context.Context, input EnrichInput) (*domain.AIAnalysis, error)
}
