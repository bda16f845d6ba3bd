package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"medscan/internal/analyzer"
	"medscan/internal/config"
	"medscan/internal/email/noop"
	"medscan/internal/email/ses"
	"medscan/internal/enricher"
	"medscan/internal/enricher/gemini"
	"medscan/internal/enricher/openai"
	"medscan/internal/handler"
	"medscan/internal/metrics"
	"medscan/internal/middleware"
	"medscan/internal/ocr"
	"medscan/internal/ocr/ocrspace"
	"medscan/internal/ocr/tesseract"
	"medscan/internal/port"
	"medscan/internal/repository/postgres"
	"medscan/internal/resilience"
	"medscan/internal/router"
	"medscan/internal/service"
	s3storage "medscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := metrics.New("medscan")
	executor := resilience.NewExecutor(resilienceConfig(&cfg.Resilience))

	// Text extraction
	extractor, err := ocr.NewRouterFromConfig(ocr.Config{
		Backend:         cfg.OCR.Backend,
		PDFMaxTextBytes: cfg.OCR.PDFMaxTextBytes,
		Tesseract: tesseract.Config{
			Binary:   cfg.OCR.TesseractBinary,
			Language: cfg.OCR.TesseractLanguage,
			PSM:      cfg.OCR.TesseractPSM,
		},
		OCRSpace: ocrspace.Config{
			APIKey:      cfg.OCR.OCRSpaceAPIKey,
			Language:    cfg.OCR.OCRSpaceLanguage,
			TimeoutSecs: cfg.OCR.TimeoutSecs,
		},
		OCRSpaceEndpoint: cfg.OCR.OCRSpaceEndpoint,
	}, executor)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR: %w", err)
	}
	if !extractor.ImageOCRConfigured() {
		log.Printf("Image OCR is not configured; JPEG/PNG uploads will be rejected")
	}

	// LLM enrichment
	var reportEnricher port.ReportEnricher
	if cfg.LLM.Enabled() {
		registerEnrichers(executor)
		reportEnricher, err = enricher.NewChain(providerConfig(cfg.LLM.Primary), fallbackProviderConfig(&cfg.LLM))
		if err != nil {
			return fmt.Errorf("failed to initialize enrichment: %w", err)
		}
		log.Printf("Enrichment enabled via %s", reportEnricher.Name())
	}

	// Object storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Email
	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	// Services
	reportSvc := service.NewReportService(service.ReportServiceConfig{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Bucket:         cfg.S3.Bucket,
		ExportMaxRows:  cfg.Export.MaxRows,
	}, service.ReportServiceDeps{
		Repo:      postgres.NewReportRepo(db),
		Extractor: extractor,
		Pipeline:  analyzer.NewDefaultPipeline(),
		Enricher:  reportEnricher,
		Storage:   storage,
		Email:     sender,
		Metrics:   m,
	})

	// Handlers
	enrichmentName := ""
	if reportEnricher != nil {
		enrichmentName = reportEnricher.Name()
	}
	ocrH := handler.NewOCRHandler(reportSvc, handler.OCRInfo{
		Backend:        extractor.Name(),
		ImageOCR:       extractor.ImageOCRConfigured(),
		Enrichment:     enrichmentName,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	var validator *middleware.TokenValidator
	if cfg.Auth.Enabled {
		validator = middleware.NewTokenValidator(cfg.Auth)
	}
	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	r := router.Setup(router.Deps{
		OCR:            ocrH,
		Reports:        handler.NewReportHandler(reportSvc),
		Health:         handler.NewHealthHandler(db),
		Metrics:        m,
		Validator:      validator,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// registerEnrichers binds the provider factories to the shared executor.
func registerEnrichers(executor *resilience.Executor) {
	enricher.RegisterProvider("gemini", func(cfg enricher.ProviderConfig) (port.ReportEnricher, error) {
		return gemini.New(cfg, executor), nil
	})
	enricher.RegisterProvider("openai", func(cfg enricher.ProviderConfig) (port.ReportEnricher, error) {
		return openai.New(cfg, executor), nil
	})
}

func providerConfig(p config.LLMProviderConfig) enricher.ProviderConfig {
	return enricher.ProviderConfig{
		Provider:    p.Provider,
		APIKey:      p.APIKey,
		Model:       p.Model,
		Endpoint:    p.Endpoint,
		TimeoutSecs: p.TimeoutSecs,
	}
}

func fallbackProviderConfig(l *config.LLMConfig) *enricher.ProviderConfig {
	fb := l.FallbackConfig()
	if fb == nil {
		return nil
	}
	pc := providerConfig(*fb)
	return &pc
}

func resilienceConfig(c *config.ResilienceConfig) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        c.RetryMaxAttempts,
		RetryInitialBackoff:     c.RetryInitialBackoff,
		RetryMaxBackoff:         c.RetryMaxBackoff,
		RetryMultiplier:         c.RetryMultiplier,
		BreakerEnabled:          c.BreakerEnabled,
		BreakerMinRequests:      c.BreakerMinRequests,
		BreakerFailureRatio:     c.BreakerFailureRatio,
		BreakerOpenTimeout:      c.BreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: c.BreakerHalfOpenMaxCalls,
	}
}
