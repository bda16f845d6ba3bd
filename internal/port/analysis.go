package port

import "medscan/internal/domain"

// ReportClassifier decides whether text is a medical report.
type ReportClassifier interface {
	Classify(text string) domain.MedicalClassification
}

// ParameterExtractor pulls structured measurements out of report text.
type ParameterExtractor interface {
	Extract(text string) []domain.Parameter
}

// StatusEvaluator classifies one measurement against its reference range.
type StatusEvaluator interface {
	Evaluate(name string, value domain.NumericValue) domain.ParameterStatus
}

// SummaryGenerator composes the patient-facing narrative.
type SummaryGenerator interface {
	Generate(rawText string, reportType *domain.ReportType, params []domain.Parameter) string
}

// AnalysisPipeline turns extracted text into a structured result.
type AnalysisPipeline interface {
	Run(doc domain.RawDocument, formatSupported bool) domain.AnalysisResult
}
