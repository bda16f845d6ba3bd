package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medscan/internal/domain"
	"medscan/internal/export"
	"medscan/internal/middleware"
	"medscan/internal/service"
)

// ReportHandler handles stored report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := domain.ReportFilter{
		OwnerID:    middleware.GetOwnerID(c),
		Status:     domain.AnalysisStatus(c.Query("status")),
		ReportType: domain.ReportType(c.Query("report_type")),
		Offset:     offset,
		Limit:      limit,
	}

	reports, total, err := h.reportService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	RespondPaginated(c, reports, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Delete handles DELETE /api/v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "report deleted"})
}

// Stats handles GET /api/v1/reports/stats
func (h *ReportHandler) Stats(c *gin.Context) {
	counts, err := h.reportService.Stats(c.Request.Context(), middleware.GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	total := 0
	byStatus := make(map[string]int, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
	}
	RespondOK(c, gin.H{"total": total, "byStatus": byStatus})
}

// Export handles GET /api/v1/reports/export?format=csv|xlsx
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.Export(c.Request.Context(), middleware.GetOwnerID(c), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("medscan_reports", format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func parseReportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return uuid.Nil, false
	}
	return id, true
}
