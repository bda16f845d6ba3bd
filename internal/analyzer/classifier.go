package analyzer

import (
	"strings"

	"medscan/internal/domain"
)

// MinMedicalKeywords is the number of distinct vocabulary hits required
// before a text is treated as a medical report.
const MinMedicalKeywords = 2

// keywordSaturation is the hit count at which confidence reaches 1.0.
const keywordSaturation = 5

// vocabulary is matched as plain substrings of the lower-cased text.
// Order matters: FoundKeywords is reported in this order.
var vocabulary = []string{
	"blood", "hemoglobin", "cbc", "mmhg", "mg/dl", "pulse", "bp", "wbc", "rbc",
	"diagnosis", "glucose", "cholesterol", "urine", "urinalysis", "x-ray",
	"ecg", "ekg", "heart rate", "temperature", "bpm", "g/dl", "μl", "platelet",
	"hematocrit", "lipid", "triglycerides", "hdl", "ldl", "creatinine",
	"prescription", "medication", "dosage", "physician", "patient",
}

// reportTypeRule maps a set of trigger substrings to a report type.
type reportTypeRule struct {
	reportType domain.ReportType
	triggers   []string
}

// reportTypeRules are evaluated in order; the first rule with any trigger
// present wins. GeneralMedical is the fallthrough.
var reportTypeRules = []reportTypeRule{
	{domain.ReportTypeBloodTest, []string{"blood", "hemoglobin", "cbc"}},
	{domain.ReportTypeUrineAnalysis, []string{"urine", "urinalysis"}},
	{domain.ReportTypeLipidProfile, []string{"cholesterol", "lipid"}},
	{domain.ReportTypeXRay, []string{"x-ray", "chest", "radiolog"}},
	{domain.ReportTypeECG, []string{"ecg", "ekg", "electrocardiogram"}},
	{domain.ReportTypePrescription, []string{"prescription", "medication", "dosage"}},
}

// KeywordClassifier decides whether a text is a medical report and which
// category it belongs to. It is stateless and safe for concurrent use.
type KeywordClassifier struct {
	vocabulary []string
	rules      []reportTypeRule
}

// NewKeywordClassifier creates a classifier over the built-in vocabulary.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{vocabulary: vocabulary, rules: reportTypeRules}
}

// Vocabulary returns a copy of the terms the classifier scans for.
func (k *KeywordClassifier) Vocabulary() []string {
	out := make([]string, len(k.vocabulary))
	copy(out, k.vocabulary)
	return out
}

// Classify scores text against the vocabulary. Matching is case-insensitive
// and has no word-boundary requirement, so "bp" also matches inside words.
func (k *KeywordClassifier) Classify(text string) domain.MedicalClassification {
	lower := strings.ToLower(text)

	found := make([]string, 0, len(k.vocabulary))
	for _, term := range k.vocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}

	count := len(found)
	result := domain.MedicalClassification{
		IsMedical:         count >= MinMedicalKeywords,
		MedicalConfidence: confidenceFor(count),
		FoundKeywords:     found,
		KeywordCount:      count,
	}
	if result.IsMedical {
		rt := k.reportType(lower)
		result.ReportType = &rt
	}
	return result
}

func (k *KeywordClassifier) reportType(lower string) domain.ReportType {
	for _, rule := range k.rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				return rule.reportType
			}
		}
	}
	return domain.ReportTypeGeneralMedical
}

func confidenceFor(count int) float64 {
	c := float64(count) / keywordSaturation
	if c > 1 {
		return 1
	}
	return c
}
