package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"medscan/internal/domain"
	"medscan/internal/export"
)

func sampleReports() []domain.Report {
	rt := domain.ReportTypeBloodTest
	summary := "This Blood Test Report contains 2 measured parameters."
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return []domain.Report{
		{
			ID:               uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			OriginalFilename: "cbc.pdf",
			OCRBackend:       "pdftext",
			CreatedAt:        created,
			Result: domain.AnalysisResult{
				Status:           domain.AnalysisStatusMedical,
				SourceConfidence: 95,
				Classification: domain.MedicalClassification{
					IsMedical:         true,
					ReportType:        &rt,
					MedicalConfidence: 0.4,
					FoundKeywords:     []string{"blood", "hemoglobin"},
					KeywordCount:      2,
				},
				Parameters: []domain.Parameter{
					{Name: "Hemoglobin", Value: "13.5 g/dl", Status: domain.ParameterStatusNormal},
					{Name: "Blood Pressure", Value: "150/95", Status: domain.ParameterStatusCritical},
				},
				Summary: &summary,
			},
			AIAnalysis: &domain.AIAnalysis{Provider: "gemini/gemini-2.0-flash-exp"},
		},
		{
			ID:               uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			OriginalFilename: "notes.docx",
			CreatedAt:        created,
			Result:           domain.AnalysisResult{Status: domain.AnalysisStatusUnsupportedFormat},
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteReports(sampleReports()))
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Report ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][len(rows[0])-1])

	medical := rows[1]
	assert.Equal(t, "cbc.pdf", medical[1])
	assert.Equal(t, "medical_document", medical[2])
	assert.Equal(t, "Yes", medical[3])
	assert.Equal(t, "Blood Test Report", medical[4])
	assert.Equal(t, "0.40", medical[5])
	assert.Equal(t, "95.0", medical[6])
	assert.Equal(t, "blood; hemoglobin", medical[8])
	assert.Equal(t, "2", medical[9])
	assert.Equal(t, "Blood Pressure=150/95 (critical)", medical[10])
	assert.Equal(t, "gemini/gemini-2.0-flash-exp", medical[13])
	assert.Equal(t, "2025-03-14T09:30:00Z", medical[14])

	unsupported := rows[2]
	assert.Equal(t, "unsupported_format", unsupported[2])
	assert.Empty(t, unsupported[3])
	assert.Empty(t, unsupported[9])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleReports()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reports")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Report ID", rows[0][0])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", rows[1][0])
	assert.Equal(t, "Blood Test Report", rows[1][4])
	assert.Equal(t, "unsupported_format", rows[2][2])
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Reports", "My_Reports"},
		{"a//b??c", "a_b_c"},
		{"__x__", "x"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, export.SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "medscan_reports_2025-01-02.xlsx", export.BuildFilename("medscan reports", export.FormatXLSX, now))
	assert.Equal(t, "reports_2025-01-02.csv", export.BuildFilename("!!!", export.FormatCSV, now))
}
