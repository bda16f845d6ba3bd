package analyzer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/analyzer"
	"medscan/internal/domain"
)

func TestKeywordClassifier_Classify_EmptyText(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	result := c.Classify("")

	assert.False(t, result.IsMedical)
	assert.Nil(t, result.ReportType)
	assert.Equal(t, 0, result.KeywordCount)
	assert.Empty(t, result.FoundKeywords)
	assert.Equal(t, 0.0, result.MedicalConfidence)
}

func TestKeywordClassifier_Classify_SingleKeywordIsNotMedical(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	result := c.Classify("Please send the blood drive flyer to the team.")

	assert.False(t, result.IsMedical)
	assert.Nil(t, result.ReportType)
	assert.Equal(t, 1, result.KeywordCount)
	assert.Equal(t, []string{"blood"}, result.FoundKeywords)
	assert.InDelta(t, 0.2, result.MedicalConfidence, 1e-9)
}

func TestKeywordClassifier_Classify_IncidentalTestWordIsNotMedical(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	result := c.Classify("The quarterly test of the fire alarm is scheduled for Monday.")

	assert.False(t, result.IsMedical)
	assert.Equal(t, 0, result.KeywordCount)
}

func TestKeywordClassifier_Classify_CaseInsensitive(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	result := c.Classify("BLOOD GLUCOSE")

	require.True(t, result.IsMedical)
	assert.Equal(t, []string{"blood", "glucose"}, result.FoundKeywords)
	assert.Equal(t, domain.ReportTypeBloodTest, *result.ReportType)
}

func TestKeywordClassifier_Classify_SubstringMatchWithoutWordBoundary(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	// "bp" matches inside "bpm", both are vocabulary terms.
	result := c.Classify("rate 72bpm")

	assert.Contains(t, result.FoundKeywords, "bp")
	assert.Contains(t, result.FoundKeywords, "bpm")
	assert.True(t, result.IsMedical)
}

func TestKeywordClassifier_Classify_ThresholdProperty(t *testing.T) {
	c := analyzer.NewKeywordClassifier()
	texts := []string{
		"",
		"nothing relevant here",
		"blood",
		"blood urine",
		"hemoglobin mg/dl",
		"the diagnosis was confirmed",
		"diagnosis and temperature recorded",
		"ECG and EKG",
		"lipid",
		"x-ray of the chest",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			result := c.Classify(text)
			assert.Equal(t, result.KeywordCount >= 2, result.IsMedical)
			assert.Equal(t, len(result.FoundKeywords), result.KeywordCount)
			assert.Equal(t, result.IsMedical, result.ReportType != nil)
		})
	}
}

func TestKeywordClassifier_Classify_ConfidenceMonotonic(t *testing.T) {
	c := analyzer.NewKeywordClassifier()
	vocab := c.Vocabulary()

	prevCount := 0
	prevConf := 0.0
	for i := 1; i <= len(vocab); i++ {
		result := c.Classify(strings.Join(vocab[:i], " "))

		assert.GreaterOrEqual(t, result.KeywordCount, prevCount)
		assert.GreaterOrEqual(t, result.MedicalConfidence, prevConf)
		assert.LessOrEqual(t, result.MedicalConfidence, 1.0)

		expected := float64(result.KeywordCount) / 5
		if expected > 1 {
			expected = 1
		}
		assert.InDelta(t, expected, result.MedicalConfidence, 1e-9)
		if result.KeywordCount >= 5 {
			assert.Equal(t, 1.0, result.MedicalConfidence)
		}

		prevCount = result.KeywordCount
		prevConf = result.MedicalConfidence
	}
}

func TestKeywordClassifier_Classify_FoundKeywordsFollowVocabularyOrder(t *testing.T) {
	c := analyzer.NewKeywordClassifier()

	result := c.Classify("creatinine and glucose and blood")

	assert.Equal(t, []string{"blood", "glucose", "creatinine"}, result.FoundKeywords)
}

func TestKeywordClassifier_Classify_ReportTypePriority(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected domain.ReportType
	}{
		{"blood beats x-ray", "blood work ordered with a chest x-ray", domain.ReportTypeBloodTest},
		{"hemoglobin", "hemoglobin 14 g/dl", domain.ReportTypeBloodTest},
		{"cbc", "CBC panel, WBC within range", domain.ReportTypeBloodTest},
		{"urine", "urine glucose negative", domain.ReportTypeUrineAnalysis},
		{"urinalysis beats lipid", "urinalysis and lipid panel", domain.ReportTypeUrineAnalysis},
		{"lipid", "cholesterol and ldl measured", domain.ReportTypeLipidProfile},
		{"x-ray", "x-ray reviewed, patient stable", domain.ReportTypeXRay},
		{"radiology", "radiology: chest film, patient seated, diagnosis pending", domain.ReportTypeXRay},
		{"ecg", "ECG with heart rate recorded", domain.ReportTypeECG},
		{"prescription", "prescription: take medication as directed", domain.ReportTypePrescription},
		{"general", "diagnosis pending, temperature stable", domain.ReportTypeGeneralMedical},
	}

	c := analyzer.NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.text)
			require.True(t, result.IsMedical, "found: %v", result.FoundKeywords)
			require.NotNil(t, result.ReportType)
			assert.Equal(t, tt.expected, *result.ReportType)
		})
	}
}
