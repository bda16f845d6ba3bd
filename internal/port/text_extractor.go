package port

import (
	"context"

	"medscan/internal/domain"
)

// ExtractInput carries an uploaded file to an OCR backend.
type ExtractInput struct {
	Content  []byte
	FileType domain.FileType
	Filename string
}

// TextExtractor abstracts an OCR or text-layer backend.
type TextExtractor interface {
	Name() string
	Supports(fileType domain.FileType) bool
	Extract(ctx context.Context, input ExtractInput) (domain.RawDocument, error)
}
