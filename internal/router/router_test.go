package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"medscan/internal/config"
	"medscan/internal/domain"
	"medscan/internal/handler"
	"medscan/internal/metrics"
	"medscan/internal/middleware"
	"medscan/internal/router"
	"medscan/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newEngine(svc *mocks.MockReportService, validator *middleware.TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.Setup(router.Deps{
		OCR:            handler.NewOCRHandler(svc, handler.OCRInfo{Backend: "pdftext"}),
		Reports:        handler.NewReportHandler(svc),
		Health:         handler.NewHealthHandler(okPinger{}),
		Metrics:        metrics.New("test"),
		Validator:      validator,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
	r.ServeHTTP(w, req)
	return w
}

func TestSetup_PublicRoutes(t *testing.T) {
	r := newEngine(new(mocks.MockReportService), nil)

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/ocr/health").Code)

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medscan_http_requests_total")
}

func TestSetup_StaticReportRoutesWinOverID(t *testing.T) {
	svc := new(mocks.MockReportService)
	svc.On("Stats", mock.Anything, "").Return(map[domain.AnalysisStatus]int{}, nil)
	r := newEngine(svc, nil)

	w := get(r, "/api/v1/reports/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSetup_AuthEnabledProtectsReports(t *testing.T) {
	svc := new(mocks.MockReportService)
	r := newEngine(svc, middleware.NewTokenValidator(config.AuthConfig{Enabled: true, Secret: "s"}))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/reports").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/ocr/health").Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
