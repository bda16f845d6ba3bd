package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile              = errors.New("uploaded file is empty")
	ErrUploadFailed           = errors.New("file upload to storage failed")
	ErrOCRNotConfigured       = errors.New("image OCR backend is not configured")
	ErrOCRFailed              = errors.New("text extraction failed")
	ErrEnrichmentUnavailable  = errors.New("report enrichment is unavailable")
	ErrRateLimited            = errors.New("too many requests")
	ErrInvalidExportFormat    = errors.New("invalid export format")
	ErrInvalidAnalysisStatus  = errors.New("invalid analysis status")
	ErrInvalidReportTypeQuery = errors.New("invalid report type")
)
