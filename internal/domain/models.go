package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawDocument is the text handed to the pipeline by an OCR backend.
// SourceConfidence is on a 0-100 scale. Backend names the extractor
// that produced the text and is informational only.
type RawDocument struct {
	Text             string  `json:"text"`
	SourceConfidence float64 `json:"sourceConfidence"`
	Backend          string  `json:"backend,omitempty"`
}

// MedicalClassification is the keyword classifier's verdict on a text.
// ReportType is nil unless IsMedical is true.
type MedicalClassification struct {
	IsMedical         bool        `json:"isMedical"`
	ReportType        *ReportType `json:"reportType"`
	MedicalConfidence float64     `json:"medicalConfidence"`
	FoundKeywords     []string    `json:"foundKeywords"`
	KeywordCount      int         `json:"keywordCount"`
}

// NumericValue holds a parsed measurement. Secondary is set only for
// paired readings such as blood pressure (systolic/diastolic).
type NumericValue struct {
	Value     float64  `json:"value"`
	Secondary *float64 `json:"secondary,omitempty"`
}

// IsPair reports whether the measurement carries two values.
func (n NumericValue) IsPair() bool {
	return n.Secondary != nil
}

// Parameter is one clinical measurement extracted from a report.
type Parameter struct {
	Name         string          `json:"name"`
	Value        string          `json:"value"`
	NumericValue NumericValue    `json:"numericValue"`
	Unit         string          `json:"unit"`
	Status       ParameterStatus `json:"status"`
}

// AnalysisResult is the output of one pipeline run. Parameters and Summary
// are only populated when Status is AnalysisStatusMedical.
type AnalysisResult struct {
	Status           AnalysisStatus        `json:"status"`
	RawText          string                `json:"rawText"`
	SourceConfidence float64               `json:"confidence"`
	Classification   MedicalClassification `json:"classification"`
	Parameters       []Parameter           `json:"parameters"`
	Summary          *string               `json:"summary"`
}

// AIParameter is a parameter as interpreted by an LLM enricher.
type AIParameter struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	NormalRange    string `json:"normalRange"`
	Status         string `json:"status"`
	Interpretation string `json:"interpretation"`
}

// AIAnalysis is the free-form narrative produced by an LLM enricher.
type AIAnalysis struct {
	Summary         string        `json:"summary"`
	KeyFindings     []string      `json:"keyFindings"`
	Parameters      []AIParameter `json:"parameters"`
	Concerns        []string      `json:"concerns"`
	Recommendations []string      `json:"recommendations"`
	Disclaimer      string        `json:"disclaimer"`
	Provider        string        `json:"provider,omitempty"`
	Fallback        bool          `json:"fallback,omitempty"`
}

// Report is a persisted analysis of one uploaded document.
type Report struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          string         `json:"ownerId,omitempty"`
	OriginalFilename string         `json:"originalFilename"`
	ContentType      string         `json:"contentType"`
	FileSize         int64          `json:"fileSize"`
	StorageKey       string         `json:"storageKey,omitempty"`
	OCRBackend       string         `json:"ocrBackend,omitempty"`
	Result           AnalysisResult `json:"result"`
	AIAnalysis       *AIAnalysis    `json:"aiAnalysis,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	OwnerID    string
	Status     AnalysisStatus
	ReportType ReportType
	Offset     int
	Limit      int
}
