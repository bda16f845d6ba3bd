package ocr

import (
	"context"
	"fmt"
	"log"
	"strings"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// Router dispatches uploads to the text-layer extractor for PDFs and to the
// image backend for everything else. A PDF without a text layer is retried
// on the image backend when that backend can read PDFs.
type Router struct {
	pdf   port.TextExtractor
	image port.TextExtractor
}

// NewRouter builds a Router. Either backend may be nil.
func NewRouter(pdf, image port.TextExtractor) *Router {
	return &Router{pdf: pdf, image: image}
}

func (r *Router) Name() string {
	names := make([]string, 0, 2)
	if r.pdf != nil {
		names = append(names, r.pdf.Name())
	}
	if r.image != nil {
		names = append(names, r.image.Name())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

func (r *Router) Supports(fileType domain.FileType) bool {
	return r.backendFor(fileType) != nil
}

// ImageOCRConfigured reports whether image uploads can be processed.
func (r *Router) ImageOCRConfigured() bool {
	return r.image != nil
}

func (r *Router) Extract(ctx context.Context, input port.ExtractInput) (domain.RawDocument, error) {
	backend := r.backendFor(input.FileType)
	if backend == nil {
		if input.FileType.IsImage() {
			return domain.RawDocument{}, domain.ErrOCRNotConfigured
		}
		return domain.RawDocument{}, fmt.Errorf("ocr.Router: no backend for %q: %w", input.FileType, domain.ErrUnsupportedFileType)
	}

	doc, err := backend.Extract(ctx, input)
	if input.FileType == domain.FileTypePDF && backend == r.pdf && r.canFallbackPDF() {
		if err != nil || strings.TrimSpace(doc.Text) == "" {
			log.Printf("ocr.Router: %s returned no text for %s, retrying with %s (err=%v)",
				r.pdf.Name(), input.Filename, r.image.Name(), err)
			doc, err = r.image.Extract(ctx, input)
		}
	}
	if err != nil {
		return domain.RawDocument{}, err
	}

	doc.Text = Normalize(doc.Text)
	if doc.Backend == "" {
		doc.Backend = backend.Name()
	}
	return doc, nil
}

func (r *Router) backendFor(fileType domain.FileType) port.TextExtractor {
	if fileType == domain.FileTypePDF && r.pdf != nil && r.pdf.Supports(fileType) {
		return r.pdf
	}
	if r.image != nil && r.image.Supports(fileType) {
		return r.image
	}
	return nil
}

func (r *Router) canFallbackPDF() bool {
	return r.image != nil && r.image.Supports(domain.FileTypePDF)
}
