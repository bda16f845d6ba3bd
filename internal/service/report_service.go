package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"medscan/internal/domain"
	"medscan/internal/enricher"
	"medscan/internal/export"
	"medscan/internal/metrics"
	"medscan/internal/port"
)

const exportBatchSize = 500

// AnalyzeInput is the DTO for a report upload.
type AnalyzeInput struct {
	OwnerID     string
	Filename    string
	Content     []byte
	NotifyEmail string
}

// ReportService defines the report analysis contract.
type ReportService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.Report, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Export(ctx context.Context, ownerID string, format export.Format, w io.Writer) error
	Stats(ctx context.Context, ownerID string) (map[domain.AnalysisStatus]int, error)
	EnrichmentEnabled() bool
}

// ReportServiceConfig carries the tunables of ReportService.
type ReportServiceConfig struct {
	MaxUploadBytes int64
	Bucket         string
	ExportMaxRows  int
}

// ReportServiceDeps groups the collaborators of ReportService. Enricher,
// Storage and Email may be nil.
type ReportServiceDeps struct {
	Repo      port.ReportRepository
	Extractor port.TextExtractor
	Pipeline  port.AnalysisPipeline
	Enricher  port.ReportEnricher
	Storage   port.ObjectStorage
	Email     port.EmailSender
	Metrics   *metrics.Metrics
}

type reportService struct {
	cfg  ReportServiceConfig
	deps ReportServiceDeps
	now  func() time.Time
}

// NewReportService creates a new ReportService implementation.
func NewReportService(cfg ReportServiceConfig, deps ReportServiceDeps) ReportService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = 10000
	}
	return &reportService{cfg: cfg, deps: deps, now: time.Now}
}

func (s *reportService) EnrichmentEnabled() bool {
	return s.deps.Enricher != nil
}

func (s *reportService) Analyze(ctx context.Context, input AnalyzeInput) (report *domain.Report, err error) {
	if len(input.Content) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(input.Content)) > s.cfg.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	start := s.now()
	s.deps.Metrics.StartAnalysis()
	defer func() {
		var status, reportType string
		var params int
		if report != nil {
			status = string(report.Result.Status)
			params = len(report.Result.Parameters)
			if rt := report.Result.Classification.ReportType; rt != nil {
				reportType = string(*rt)
			}
		}
		s.deps.Metrics.FinishAnalysis(status, reportType, params, s.now().Sub(start), err)
	}()

	fileType, contentType, supported := DetectFileType(input.Filename, input.Content)
	report = &domain.Report{
		ID:               uuid.New(),
		OwnerID:          input.OwnerID,
		OriginalFilename: input.Filename,
		ContentType:      contentType,
		FileSize:         int64(len(input.Content)),
	}

	log.Printf("reportService.Analyze: analysing %s (%s, %d bytes, supported=%t)",
		input.Filename, contentType, report.FileSize, supported)

	var doc domain.RawDocument
	if supported {
		stageStart := s.now()
		doc, err = s.deps.Extractor.Extract(ctx, port.ExtractInput{
			Content:  input.Content,
			FileType: fileType,
			Filename: input.Filename,
		})
		s.deps.Metrics.ObserveStage("ocr", s.now().Sub(stageStart))
		if err != nil {
			log.Printf("reportService.Analyze: text extraction failed for %s: %v", input.Filename, err)
			return nil, err
		}
		report.OCRBackend = doc.Backend
	}

	stageStart := s.now()
	report.Result = s.deps.Pipeline.Run(doc, supported)
	s.deps.Metrics.ObserveStage("pipeline", s.now().Sub(stageStart))

	if report.Result.Status == domain.AnalysisStatusMedical && s.deps.Enricher != nil {
		report.AIAnalysis = s.enrich(ctx, report)
	}

	if supported && s.deps.Storage != nil {
		s.archive(ctx, report, input.Content)
	}

	report.CreatedAt = s.now().UTC()
	if err = s.deps.Repo.Create(ctx, report); err != nil {
		log.Printf("reportService.Analyze: failed to persist report %s: %v", report.ID, err)
		return nil, fmt.Errorf("persisting report: %w", err)
	}

	if input.NotifyEmail != "" && s.deps.Email != nil {
		if mailErr := s.deps.Email.SendAnalysisReady(ctx, input.NotifyEmail, report); mailErr != nil {
			log.Printf("reportService.Analyze: failed to notify %s for report %s: %v",
				input.NotifyEmail, report.ID, mailErr)
		}
	}

	return report, nil
}

func (s *reportService) enrich(ctx context.Context, report *domain.Report) *domain.AIAnalysis {
	var rt domain.ReportType
	if report.Result.Classification.ReportType != nil {
		rt = *report.Result.Classification.ReportType
	}

	start := s.now()
	analysis, err := s.deps.Enricher.Enrich(ctx, port.EnrichInput{
		Text:       report.Result.RawText,
		ReportType: rt,
	})
	s.deps.Metrics.ObserveStage("enrichment", s.now().Sub(start))
	if err != nil {
		log.Printf("reportService.enrich: %s failed for report %s, using fallback: %v",
			s.deps.Enricher.Name(), report.ID, err)
		s.deps.Metrics.ObserveEnrichment(true)
		return enricher.Fallback(err)
	}
	s.deps.Metrics.ObserveEnrichment(false)
	return analysis
}

// archive stores the original upload. Failures are logged; the analysis
// is still persisted without a storage key.
func (s *reportService) archive(ctx context.Context, report *domain.Report, content []byte) {
	key := fmt.Sprintf("reports/%s/%s", report.ID, sanitizeKeyPart(report.OriginalFilename))
	if report.OwnerID != "" {
		key = fmt.Sprintf("owners/%s/%s", sanitizeKeyPart(report.OwnerID), key)
	}

	start := s.now()
	_, err := s.deps.Storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(content),
		ContentType: report.ContentType,
		Size:        int64(len(content)),
	})
	s.deps.Metrics.ObserveStage("archive", s.now().Sub(start))
	if err != nil {
		log.Printf("reportService.archive: upload failed for report %s: %v", report.ID, err)
		return
	}
	report.StorageKey = key
}

func (s *reportService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Report, error) {
	return s.deps.Repo.GetByID(ctx, ownerID, id)
}

func (s *reportService) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.ErrInvalidAnalysisStatus
	}
	if filter.ReportType != "" && !filter.ReportType.Valid() {
		return nil, 0, domain.ErrInvalidReportTypeQuery
	}
	return s.deps.Repo.List(ctx, filter)
}

func (s *reportService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	log.Printf("reportService.Delete: deleting report %s", id)

	report, err := s.deps.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if report.StorageKey != "" && s.deps.Storage != nil {
		if err := s.deps.Storage.Delete(ctx, s.cfg.Bucket, report.StorageKey); err != nil {
			log.Printf("reportService.Delete: failed to delete archived upload: %v", err)
			return fmt.Errorf("deleting from storage: %w", err)
		}
	}

	return s.deps.Repo.Delete(ctx, ownerID, id)
}

func (s *reportService) Export(ctx context.Context, ownerID string, format export.Format, w io.Writer) error {
	var reports []domain.Report
	for offset := 0; offset < s.cfg.ExportMaxRows; offset += exportBatchSize {
		limit := exportBatchSize
		if remaining := s.cfg.ExportMaxRows - offset; remaining < limit {
			limit = remaining
		}
		batch, total, err := s.deps.Repo.List(ctx, domain.ReportFilter{
			OwnerID: ownerID,
			Offset:  offset,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("listing reports for export: %w", err)
		}
		reports = append(reports, batch...)
		if len(batch) < limit || offset+len(batch) >= total {
			break
		}
	}

	log.Printf("reportService.Export: exporting %d reports as %s", len(reports), format)

	switch format {
	case export.FormatXLSX:
		return export.WriteXLSX(w, reports)
	case export.FormatCSV:
		if _, err := w.Write(export.BOM); err != nil {
			return err
		}
		cw := export.NewCSVWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteReports(reports); err != nil {
			return err
		}
		return cw.Flush()
	}
	return domain.ErrInvalidExportFormat
}

func (s *reportService) Stats(ctx context.Context, ownerID string) (map[domain.AnalysisStatus]int, error) {
	return s.deps.Repo.CountByStatus(ctx, ownerID)
}

// DetectFileType accepts an upload only when both its extension and its
// sniffed content type are on the whitelist and agree.
func DetectFileType(filename string, content []byte) (domain.FileType, string, bool) {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	detected := http.DetectContentType(head)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	byExt, okExt := domain.AllowedExtensions[ext]
	byContent, okContent := domain.AllowedContentTypes[detected]
	if !okExt || !okContent || byExt != byContent {
		return "", detected, false
	}
	return byExt, domain.AllowedFileTypes[byExt], true
}

func sanitizeKeyPart(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "upload"
	}
	return s
}
