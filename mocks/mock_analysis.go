package mocks

import (
	"github.com/stretchr/testify/mock"

	"medscan/internal/domain"
)

// MockReportClassifier is a mock implementation of port.ReportClassifier.
type MockReportClassifier struct {
	mock.Mock
}

func (m *MockReportClassifier) Classify(text string) domain.MedicalClassification {
	args := m.Called(text)
	return args.Get(0).(domain.MedicalClassification)
}

// MockParameterExtractor is a mock implementation of port.ParameterExtractor.
type MockParameterExtractor struct {
	mock.Mock
}

func (m *MockParameterExtractor) Extract(text string) []domain.Parameter {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Parameter)
}

// MockStatusEvaluator is a mock implementation of port.StatusEvaluator.
type MockStatusEvaluator struct {
	mock.Mock
}

func (m *MockStatusEvaluator) Evaluate(name string, value domain.NumericValue) domain.ParameterStatus {
	args := m.Called(name, value)
	return args.Get(0).(domain.ParameterStatus)
}

// MockSummaryGenerator is a mock implementation of port.SummaryGenerator.
type MockSummaryGenerator struct {
	mock.Mock
}

func (m *MockSummaryGenerator) Generate(rawText string, reportType *domain.ReportType, params []domain.Parameter) string {
	args := m.Called(rawText, reportType, params)
	return args.String(0)
}

// MockAnalysisPipeline is a mock implementation of port.AnalysisPipeline.
type MockAnalysisPipeline struct {
	mock.Mock
}

func (m *MockAnalysisPipeline) Run(doc domain.RawDocument, formatSupported bool) domain.AnalysisResult {
	args := m.Called(doc, formatSupported)
	return args.Get(0).(domain.AnalysisResult)
}
