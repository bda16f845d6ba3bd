package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"medscan/internal/domain"
	"medscan/internal/port"
)

const reportColumns = `id, owner_id, original_filename, content_type, file_size, storage_key, ocr_backend,
	status, raw_text, source_confidence, is_medical, report_type, medical_confidence,
	keyword_count, found_keywords, parameters, summary, ai_analysis, created_at`

// reportRow mirrors the reports table; JSON columns are decoded into the
// nested domain types by toDomain.
type reportRow struct {
	ID                uuid.UUID      `db:"id"`
	OwnerID           string         `db:"owner_id"`
	OriginalFilename  string         `db:"original_filename"`
	ContentType       string         `db:"content_type"`
	FileSize          int64          `db:"file_size"`
	StorageKey        string         `db:"storage_key"`
	OCRBackend        string         `db:"ocr_backend"`
	Status            string         `db:"status"`
	RawText           string         `db:"raw_text"`
	SourceConfidence  float64        `db:"source_confidence"`
	IsMedical         bool           `db:"is_medical"`
	ReportType        sql.NullString `db:"report_type"`
	MedicalConfidence float64        `db:"medical_confidence"`
	KeywordCount      int            `db:"keyword_count"`
	FoundKeywords     []byte         `db:"found_keywords"`
	Parameters        []byte         `db:"parameters"`
	Summary           sql.NullString `db:"summary"`
	AIAnalysis        []byte         `db:"ai_analysis"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (row *reportRow) toDomain() (*domain.Report, error) {
	report := &domain.Report{
		ID:               row.ID,
		OwnerID:          row.OwnerID,
		OriginalFilename: row.OriginalFilename,
		ContentType:      row.ContentType,
		FileSize:         row.FileSize,
		StorageKey:       row.StorageKey,
		OCRBackend:       row.OCRBackend,
		CreatedAt:        row.CreatedAt,
		Result: domain.AnalysisResult{
			Status:           domain.AnalysisStatus(row.Status),
			RawText:          row.RawText,
			SourceConfidence: row.SourceConfidence,
			Classification: domain.MedicalClassification{
				IsMedical:         row.IsMedical,
				MedicalConfidence: row.MedicalConfidence,
				KeywordCount:      row.KeywordCount,
				FoundKeywords:     []string{},
			},
			Parameters: []domain.Parameter{},
		},
	}
	if row.ReportType.Valid {
		rt := domain.ReportType(row.ReportType.String)
		report.Result.Classification.ReportType = &rt
	}
	if row.Summary.Valid {
		s := row.Summary.String
		report.Result.Summary = &s
	}
	if len(row.FoundKeywords) > 0 {
		if err := json.Unmarshal(row.FoundKeywords, &report.Result.Classification.FoundKeywords); err != nil {
			return nil, fmt.Errorf("decoding found_keywords: %w", err)
		}
	}
	if len(row.Parameters) > 0 {
		if err := json.Unmarshal(row.Parameters, &report.Result.Parameters); err != nil {
			return nil, fmt.Errorf("decoding parameters: %w", err)
		}
	}
	if len(row.AIAnalysis) > 0 && string(row.AIAnalysis) != "null" {
		var ai domain.AIAnalysis
		if err := json.Unmarshal(row.AIAnalysis, &ai); err != nil {
			return nil, fmt.Errorf("decoding ai_analysis: %w", err)
		}
		report.AIAnalysis = &ai
	}
	return report, nil
}

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	res := report.Result

	keywords, err := json.Marshal(nonNilStrings(res.Classification.FoundKeywords))
	if err != nil {
		return fmt.Errorf("reportRepo.Create: encoding keywords: %w", err)
	}
	params := res.Parameters
	if params == nil {
		params = []domain.Parameter{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: encoding parameters: %w", err)
	}
	var aiJSON json.RawMessage
	if report.AIAnalysis != nil {
		if aiJSON, err = json.Marshal(report.AIAnalysis); err != nil {
			return fmt.Errorf("reportRepo.Create: encoding ai analysis: %w", err)
		}
	}

	var reportType sql.NullString
	if rt := res.Classification.ReportType; rt != nil {
		reportType = sql.NullString{String: string(*rt), Valid: true}
	}
	var summary sql.NullString
	if res.Summary != nil {
		summary = sql.NullString{String: *res.Summary, Valid: true}
	}

	query := `INSERT INTO reports (` + reportColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19
	)`

	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.OwnerID, report.OriginalFilename, report.ContentType, report.FileSize,
		report.StorageKey, report.OCRBackend,
		string(res.Status), res.RawText, res.SourceConfidence, res.Classification.IsMedical,
		reportType, res.Classification.MedicalConfidence,
		res.Classification.KeywordCount, json.RawMessage(keywords), json.RawMessage(paramsJSON),
		summary, aiJSON, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Report, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+reportColumns+" FROM reports WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	report, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return report, nil
}

// buildWhereClause constructs the WHERE clause for report listings.
func buildWhereClause(filter domain.ReportFilter) (clause string, args []interface{}) {
	args = []interface{}{filter.OwnerID}
	clause = "WHERE owner_id = $1"
	argN := 2

	if filter.Status != "" {
		clause += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, string(filter.Status))
		argN++
	}
	if filter.ReportType != "" {
		clause += fmt.Sprintf(" AND report_type = $%d", argN)
		args = append(args, string(filter.ReportType))
	}
	return clause, args
}

func (r *reportRepo) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int, error) {
	where, args := buildWhereClause(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM reports %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		reportColumns, where, len(args)+1, len(args)+2)
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
	}

	reports := make([]domain.Report, 0, len(rows))
	for i := range rows {
		report, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, total, nil
}

func (r *reportRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM reports WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("reportRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reportRepo.Delete rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) CountByStatus(ctx context.Context, ownerID string) (map[domain.AnalysisStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count FROM reports WHERE owner_id = $1 GROUP BY status", ownerID)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.CountByStatus: %w", err)
	}

	counts := map[domain.AnalysisStatus]int{
		domain.AnalysisStatusMedical:           0,
		domain.AnalysisStatusNotMedical:        0,
		domain.AnalysisStatusUnsupportedFormat: 0,
	}
	for _, row := range rows {
		counts[domain.AnalysisStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
