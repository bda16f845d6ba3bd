// Package pdftext reads the embedded text layer of PDF uploads.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// TextLayerConfidence is reported for PDFs whose text layer yielded text.
// Embedded text is not recognised, so it is treated as near-certain.
const TextLayerConfidence = 95.0

// Extractor pulls plain text out of a PDF without rasterising it.
type Extractor struct {
	maxBytes int64
}

// New creates an Extractor. maxBytes caps the amount of text read; zero
// means no cap.
func New(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Name() string { return "pdftext" }

func (e *Extractor) Supports(fileType domain.FileType) bool {
	return fileType == domain.FileTypePDF
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (doc domain.RawDocument, err error) {
	if err := ctx.Err(); err != nil {
		return domain.RawDocument{}, err
	}
	if len(input.Content) == 0 {
		return domain.RawDocument{}, domain.ErrEmptyFile
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			doc = domain.RawDocument{}
			err = fmt.Errorf("pdftext.Extract: malformed pdf: %v: %w", rec, domain.ErrOCRFailed)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(input.Content), int64(len(input.Content)))
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("pdftext.Extract: open: %v: %w", err, domain.ErrOCRFailed)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("pdftext.Extract: read text: %v: %w", err, domain.ErrOCRFailed)
	}
	if e.maxBytes > 0 {
		plain = io.LimitReader(plain, e.maxBytes)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return domain.RawDocument{}, fmt.Errorf("pdftext.Extract: read text: %v: %w", err, domain.ErrOCRFailed)
	}

	text := buf.String()
	confidence := 0.0
	if strings.TrimSpace(text) != "" {
		confidence = TextLayerConfidence
	}
	return domain.RawDocument{Text: text, SourceConfidence: confidence, Backend: e.Name()}, nil
}
