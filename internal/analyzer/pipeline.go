package analyzer

import (
	"medscan/internal/domain"
	"medscan/internal/port"
)

// UnsupportedFormatText is the RawText of an UnsupportedFormat result.
const UnsupportedFormatText = "Unsupported file format. Please upload a PDF or image file."

// Pipeline sequences classification, extraction and summarization. It holds
// no per-run state; one Pipeline may serve concurrent callers.
type Pipeline struct {
	classifier port.ReportClassifier
	extractor  port.ParameterExtractor
	summarizer port.SummaryGenerator
}

// NewPipeline creates a Pipeline from explicit stages.
func NewPipeline(
	classifier port.ReportClassifier,
	extractor port.ParameterExtractor,
	summarizer port.SummaryGenerator,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		extractor:  extractor,
		summarizer: summarizer,
	}
}

// NewDefaultPipeline wires the built-in classifier, catalog and templates.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(NewKeywordClassifier(), NewDefaultParameterExtractor(), NewSummaryGenerator())
}

// Run analyzes doc. formatSupported is false when the upload was neither an
// image nor a PDF; in that case no stage runs.
func (p *Pipeline) Run(doc domain.RawDocument, formatSupported bool) domain.AnalysisResult {
	if !formatSupported {
		return domain.AnalysisResult{
			Status:         domain.AnalysisStatusUnsupportedFormat,
			RawText:        UnsupportedFormatText,
			Classification: domain.MedicalClassification{FoundKeywords: []string{}},
			Parameters:     []domain.Parameter{},
		}
	}

	classification := p.classifier.Classify(doc.Text)
	if classification.FoundKeywords == nil {
		classification.FoundKeywords = []string{}
	}
	if !classification.IsMedical {
		return domain.AnalysisResult{
			Status:           domain.AnalysisStatusNotMedical,
			RawText:          doc.Text,
			SourceConfidence: doc.SourceConfidence,
			Classification:   classification,
			Parameters:       []domain.Parameter{},
		}
	}

	params := p.extractor.Extract(doc.Text)
	if params == nil {
		params = []domain.Parameter{}
	}
	summary := p.summarizer.Generate(doc.Text, classification.ReportType, params)

	return domain.AnalysisResult{
		Status:           domain.AnalysisStatusMedical,
		RawText:          doc.Text,
		SourceConfidence: doc.SourceConfidence,
		Classification:   classification,
		Parameters:       params,
		Summary:          &summary,
	}
}
