package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medscan/internal/domain"
	"medscan/internal/middleware"
	"medscan/internal/service"
)

// multipartOverhead leaves room for form boundaries and extra fields on top
// of the file itself.
const multipartOverhead = 1 << 20

// OCRInfo describes the extraction setup reported by the health endpoint.
type OCRInfo struct {
	Backend        string
	ImageOCR       bool
	Enrichment     string
	MaxUploadBytes int64
}

// OCRHandler handles upload-and-analyse endpoints.
type OCRHandler struct {
	reportService service.ReportService
	info          OCRInfo
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(reportService service.ReportService, info OCRInfo) *OCRHandler {
	if info.MaxUploadBytes <= 0 {
		info.MaxUploadBytes = 10 << 20
	}
	return &OCRHandler{reportService: reportService, info: info}
}

// AnalysisResponse is the payload of a successful upload.
type AnalysisResponse struct {
	ID                uuid.UUID             `json:"id"`
	Text              string                `json:"text"`
	Confidence        float64               `json:"confidence"`
	IsMedical         bool                  `json:"isMedical"`
	ReportType        *domain.ReportType    `json:"reportType"`
	ReportTypeName    string                `json:"reportTypeName,omitempty"`
	MedicalConfidence float64               `json:"medicalConfidence"`
	Parameters        []domain.Parameter    `json:"parameters"`
	FoundKeywords     []string              `json:"foundKeywords"`
	Summary           *string               `json:"summary"`
	Status            domain.AnalysisStatus `json:"status"`
	AIAnalysis        *domain.AIAnalysis    `json:"aiAnalysis"`
	OriginalFilename  string                `json:"originalFilename"`
	OCRBackend        string                `json:"ocrBackend,omitempty"`
}

// NewAnalysisResponse flattens a stored report into the upload response.
func NewAnalysisResponse(r *domain.Report) AnalysisResponse {
	resp := AnalysisResponse{
		ID:                r.ID,
		Text:              r.Result.RawText,
		Confidence:        r.Result.SourceConfidence,
		IsMedical:         r.Result.Classification.IsMedical,
		ReportType:        r.Result.Classification.ReportType,
		MedicalConfidence: r.Result.Classification.MedicalConfidence,
		Parameters:        r.Result.Parameters,
		FoundKeywords:     r.Result.Classification.FoundKeywords,
		Summary:           r.Result.Summary,
		Status:            r.Result.Status,
		AIAnalysis:        r.AIAnalysis,
		OriginalFilename:  r.OriginalFilename,
		OCRBackend:        r.OCRBackend,
	}
	if resp.ReportType != nil {
		resp.ReportTypeName = resp.ReportType.DisplayName()
	}
	if resp.Parameters == nil {
		resp.Parameters = []domain.Parameter{}
	}
	if resp.FoundKeywords == nil {
		resp.FoundKeywords = []string{}
	}
	return resp
}

// Analyze handles POST /api/v1/ocr
func (h *OCRHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.info.MaxUploadBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.info.MaxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.info.MaxUploadBytes+1))
	if err != nil {
		HandleError(c, fmt.Errorf("reading upload: %w", err))
		return
	}

	notify := c.PostForm("notify_email")
	if notify != "" {
		if _, err := mail.ParseAddress(notify); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_EMAIL", "notify_email is not a valid email address")
			return
		}
	}

	report, err := h.reportService.Analyze(c.Request.Context(), service.AnalyzeInput{
		OwnerID:     middleware.GetOwnerID(c),
		Filename:    header.Filename,
		Content:     content,
		NotifyEmail: notify,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, NewAnalysisResponse(report))
}

// Health handles GET /api/v1/ocr/health
func (h *OCRHandler) Health(c *gin.Context) {
	enrichment := h.info.Enrichment
	if enrichment == "" {
		enrichment = "disabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "OCR service is running",
		"supportedFormats": []string{"JPEG", "PNG", "PDF"},
		"maxFileSize":      fmt.Sprintf("%dMB", h.info.MaxUploadBytes>>20),
		"ocrBackend":       h.info.Backend,
		"imageOcr":         h.info.ImageOCR,
		"enrichment":       enrichment,
	})
}
