package port

import (
	"context"

	"github.com/google/uuid"

	"medscan/internal/domain"
)

// ReportRepository persists analysis results. An empty ownerID matches
// reports stored without an owner (auth disabled).
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	CountByStatus(ctx context.Context, ownerID string) (map[domain.AnalysisStatus]int, error)
}
