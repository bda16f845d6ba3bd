package ocr

import (
	"fmt"

	"medscan/internal/ocr/ocrspace"
	"medscan/internal/ocr/pdftext"
	"medscan/internal/ocr/tesseract"
	"medscan/internal/port"
	"medscan/internal/resilience"
)

// Backend names accepted in configuration.
const (
	BackendPDFOnly   = "pdf_only"
	BackendTesseract = "tesseract"
	BackendOCRSpace  = "ocrspace"
)

// Config selects and configures the image OCR backend. PDFs always go
// through the text-layer extractor first.
type Config struct {
	Backend          string
	PDFMaxTextBytes  int64
	Tesseract        tesseract.Config
	OCRSpace         ocrspace.Config
	OCRSpaceEndpoint string
}

// NewRouterFromConfig builds the extraction Router for cfg.Backend.
func NewRouterFromConfig(cfg Config, executor *resilience.Executor) (*Router, error) {
	pdf := pdftext.New(cfg.PDFMaxTextBytes)

	var image port.TextExtractor
	switch cfg.Backend {
	case "", BackendPDFOnly:
	case BackendTesseract:
		image = tesseract.New(cfg.Tesseract, nil)
	case BackendOCRSpace:
		if cfg.OCRSpace.APIKey == "" {
			return nil, fmt.Errorf("ocr backend %q requires an API key", cfg.Backend)
		}
		image = ocrspace.NewClientWithEndpoint(cfg.OCRSpace, cfg.OCRSpaceEndpoint, executor)
	default:
		return nil, fmt.Errorf("unknown ocr backend: %s", cfg.Backend)
	}

	return NewRouter(pdf, image), nil
}
