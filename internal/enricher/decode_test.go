package enricher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/domain"
	"medscan/internal/enricher"
)

const validAnalysis = `{
  "summary": "Hemoglobin is slightly low.",
  "keyFindings": ["Low hemoglobin"],
  "parameters": [{"name": "Hemoglobin", "value": "11.2 g/dL", "normalRange": "12-17.5 g/dL", "status": "low", "interpretation": "Mild anemia"}],
  "concerns": ["Possible anemia"],
  "recommendations": ["Repeat CBC in 4 weeks"],
  "disclaimer": "custom disclaimer"
}`

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "\n  ```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, enricher.StripCodeFence(tt.in))
		})
	}
}

func TestDecodeAnalysis_Valid(t *testing.T) {
	a, err := enricher.DecodeAnalysis("```json\n"+validAnalysis+"\n```", "gemini/test")

	require.NoError(t, err)
	assert.Equal(t, "Hemoglobin is slightly low.", a.Summary)
	require.Len(t, a.Parameters, 1)
	assert.Equal(t, "low", a.Parameters[0].Status)
	assert.Equal(t, "12-17.5 g/dL", a.Parameters[0].NormalRange)
	assert.Equal(t, "custom disclaimer", a.Disclaimer)
	assert.Equal(t, "gemini/test", a.Provider)
	assert.False(t, a.Fallback)
}

func TestDecodeAnalysis_FillsMissingFields(t *testing.T) {
	a, err := enricher.DecodeAnalysis(`{"summary":"Only a summary."}`, "openai/test")

	require.NoError(t, err)
	assert.Equal(t, []string{}, a.KeyFindings)
	assert.Equal(t, []domain.AIParameter{}, a.Parameters)
	assert.Equal(t, []string{}, a.Concerns)
	assert.Equal(t, []string{}, a.Recommendations)
	assert.Equal(t, enricher.Disclaimer, a.Disclaimer)
}

func TestDecodeAnalysis_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Sorry, I cannot help with that."},
		{"missing summary", `{"keyFindings":[]}`},
		{"wrong type", `{"summary":"x","keyFindings":"not a list"}`},
		{"empty summary", `{"summary":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enricher.DecodeAnalysis(tt.raw, "p")
			assert.Error(t, err)
		})
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	p := enricher.BuildAnalysisPrompt("Hemoglobin: 14 g/dL", domain.ReportTypeBloodTest)

	assert.Contains(t, p, "Hemoglobin: 14 g/dL")
	assert.Contains(t, p, "REPORT TYPE: Blood Test Report")
	assert.Contains(t, p, enricher.Disclaimer)

	p = enricher.BuildAnalysisPrompt("text", "")
	assert.Contains(t, p, "REPORT TYPE: General Medical Report")
}
