package email_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"medscan/internal/domain"
	"medscan/internal/email"
)

func TestBuildAnalysisReady_Medical(t *testing.T) {
	rt := domain.ReportTypeBloodTest
	summary := "This Blood Test Report contains 2 measured parameters."
	report := &domain.Report{
		ID:               uuid.MustParse("7b0f6a4e-2f7c-4a4b-9a57-2d1f6c1e9b10"),
		OriginalFilename: "cbc <final>.pdf",
		Result: domain.AnalysisResult{
			Status:         domain.AnalysisStatusMedical,
			Classification: domain.MedicalClassification{IsMedical: true, ReportType: &rt},
			Parameters: []domain.Parameter{
				{Name: "Hemoglobin", Value: "14.2 g/dL", Status: domain.ParameterStatusNormal},
				{Name: "Glucose", Value: "250 mg/dL", Status: domain.ParameterStatusCritical},
			},
			Summary: &summary,
		},
	}

	msg := email.BuildAnalysisReady(report, "https://app.example/")

	assert.Equal(t, "Your Blood Test Report analysis is ready", msg.Subject)
	assert.Contains(t, msg.Text, summary)
	assert.Contains(t, msg.Text, "Glucose: 250 mg/dL (critical)")
	assert.NotContains(t, msg.Text, "Hemoglobin: 14.2")
	assert.Contains(t, msg.Text, "https://app.example/reports/7b0f6a4e-2f7c-4a4b-9a57-2d1f6c1e9b10")
	assert.Contains(t, msg.HTML, "cbc &lt;final&gt;.pdf")
	assert.Contains(t, msg.HTML, "<li>Glucose: 250 mg/dL (critical)</li>")
}

func TestBuildAnalysisReady_NotMedical(t *testing.T) {
	report := &domain.Report{
		ID:               uuid.New(),
		OriginalFilename: "receipt.png",
		Result:           domain.AnalysisResult{Status: domain.AnalysisStatusNotMedical},
	}

	msg := email.BuildAnalysisReady(report, "http://localhost:3000")

	assert.Equal(t, "Your document analysis is ready", msg.Subject)
	assert.Contains(t, msg.Text, "does not appear to be a medical report")
	assert.NotContains(t, msg.HTML, "<ul>")
}
