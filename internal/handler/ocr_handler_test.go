package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medscan/internal/domain"
	"medscan/internal/handler"
	"medscan/internal/middleware"
	"medscan/internal/service"
	"medscan/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postUpload(h *handler.OCRHandler, body *bytes.Buffer, contentType, ownerID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr", body)
	c.Request.Header.Set("Content-Type", contentType)
	if ownerID != "" {
		c.Set(middleware.ContextKeyOwnerID, ownerID)
	}
	h.Analyze(c)
	return w
}

func TestOCRHandler_Analyze_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewOCRHandler(mockSvc, handler.OCRInfo{Backend: "pdftext"})

	rt := domain.ReportTypeBloodTest
	summary := "This Blood Test Report contains 1 measured parameter."
	report := &domain.Report{
		ID:               uuid.New(),
		OriginalFilename: "cbc.pdf",
		OCRBackend:       "pdftext",
		Result: domain.AnalysisResult{
			Status:           domain.AnalysisStatusMedical,
			RawText:          "CBC blood hemoglobin 13.5 g/dl",
			SourceConfidence: 95,
			Classification: domain.MedicalClassification{
				IsMedical:         true,
				ReportType:        &rt,
				MedicalConfidence: 0.8,
				FoundKeywords:     []string{"blood", "hemoglobin", "cbc", "g/dl"},
				KeywordCount:      4,
			},
			Parameters: []domain.Parameter{{Name: "Hemoglobin", Value: "13.5 g/dl", Unit: "g/dl", Status: domain.ParameterStatusNormal}},
			Summary:    &summary,
		},
	}

	mockSvc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return in.Filename == "cbc.pdf" && in.OwnerID == "user-1" && in.NotifyEmail == "pat@example.com" &&
			string(in.Content) == "%PDF-1.4 test"
	})).Return(report, nil)

	body, ct := multipartUpload(t, "cbc.pdf", []byte("%PDF-1.4 test"), map[string]string{"notify_email": "pat@example.com"})
	w := postUpload(h, body, ct, "user-1")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                     `json:"success"`
		Data    handler.AnalysisResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, report.ID, resp.Data.ID)
	assert.True(t, resp.Data.IsMedical)
	assert.Equal(t, "Blood Test Report", resp.Data.ReportTypeName)
	assert.Equal(t, 95.0, resp.Data.Confidence)
	assert.Len(t, resp.Data.Parameters, 1)
	assert.Equal(t, domain.AnalysisStatusMedical, resp.Data.Status)
	mockSvc.AssertExpectations(t)
}

func TestOCRHandler_Analyze_NoFile(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewOCRHandler(mockSvc, handler.OCRInfo{})

	body, ct := multipartUpload(t, "", nil, map[string]string{"other": "x"})
	w := postUpload(h, body, ct, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
	mockSvc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestOCRHandler_Analyze_InvalidEmail(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewOCRHandler(mockSvc, handler.OCRInfo{})

	body, ct := multipartUpload(t, "a.pdf", []byte("%PDF-"), map[string]string{"notify_email": "not-an-email"})
	w := postUpload(h, body, ct, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_EMAIL")
}

func TestOCRHandler_Analyze_TooLarge(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewOCRHandler(mockSvc, handler.OCRInfo{MaxUploadBytes: 16})

	body, ct := multipartUpload(t, "a.pdf", bytes.Repeat([]byte("x"), 64), nil)
	w := postUpload(h, body, ct, "")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_TOO_LARGE")
}

func TestOCRHandler_Analyze_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"ocr not configured", domain.ErrOCRNotConfigured, http.StatusServiceUnavailable, "OCR_NOT_CONFIGURED"},
		{"ocr failed", domain.ErrOCRFailed, http.StatusBadGateway, "OCR_FAILED"},
		{"empty file", domain.ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockReportService)
			h := handler.NewOCRHandler(mockSvc, handler.OCRInfo{})
			mockSvc.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)

			body, ct := multipartUpload(t, "scan.png", []byte("\x89PNG\r\n\x1a\n"), nil)
			w := postUpload(h, body, ct, "")

			assert.Equal(t, tt.status, w.Code)
			var resp handler.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestOCRHandler_Health(t *testing.T) {
	h := handler.NewOCRHandler(new(mocks.MockReportService), handler.OCRInfo{Backend: "pdftext+tesseract", ImageOCR: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/ocr/health", http.NoBody)
	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OCR service is running", resp["message"])
	assert.Equal(t, []interface{}{"JPEG", "PNG", "PDF"}, resp["supportedFormats"])
	assert.Equal(t, "10MB", resp["maxFileSize"])
	assert.Equal(t, "pdftext+tesseract", resp["ocrBackend"])
	assert.Equal(t, "disabled", resp["enrichment"])
}
