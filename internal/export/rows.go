// Package export renders stored reports as CSV or XLSX spreadsheets.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"medscan/internal/domain"
)

// Format is a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format. Empty defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidExportFormat, s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// columns defines the header row shared by both formats.
var columns = []string{
	"Report ID",
	"Original Filename",
	"Status",
	"Is Medical",
	"Report Type",
	"Medical Confidence",
	"Text Confidence",
	"Keyword Count",
	"Found Keywords",
	"Parameter Count",
	"Out Of Range Parameters",
	"Summary",
	"OCR Backend",
	"AI Provider",
	"Created At",
}

// reportToRow flattens a report into one row. Classification columns are
// left empty for unsupported uploads.
func reportToRow(r *domain.Report) []string {
	row := make([]string, len(columns))

	row[0] = r.ID.String()
	row[1] = r.OriginalFilename
	row[2] = string(r.Result.Status)
	row[12] = r.OCRBackend
	row[14] = r.CreatedAt.UTC().Format(time.RFC3339)
	if r.AIAnalysis != nil {
		row[13] = r.AIAnalysis.Provider
	}

	if r.Result.Status == domain.AnalysisStatusUnsupportedFormat {
		return row
	}

	c := r.Result.Classification
	row[3] = formatBool(c.IsMedical)
	if c.ReportType != nil {
		row[4] = c.ReportType.DisplayName()
	}
	row[5] = strconv.FormatFloat(c.MedicalConfidence, 'f', 2, 64)
	row[6] = strconv.FormatFloat(r.Result.SourceConfidence, 'f', 1, 64)
	row[7] = strconv.Itoa(c.KeywordCount)
	row[8] = strings.Join(c.FoundKeywords, "; ")
	row[9] = strconv.Itoa(len(r.Result.Parameters))
	row[10] = outOfRange(r.Result.Parameters)
	if r.Result.Summary != nil {
		row[11] = *r.Result.Summary
	}
	return row
}

func outOfRange(params []domain.Parameter) string {
	var parts []string
	for _, p := range params {
		if p.Status.OutOfRange() {
			parts = append(parts, fmt.Sprintf("%s=%s (%s)", p.Name, p.Value, p.Status))
		}
	}
	return strings.Join(parts, "; ")
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename makes name safe for a Content-Disposition header:
// non-alphanumerics become underscores, runs collapse, max 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYY-MM-DD}.{format}.
func BuildFilename(prefix string, f Format, now time.Time) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = "reports"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), f)
}
