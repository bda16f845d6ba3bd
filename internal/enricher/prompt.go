package enricher

import (
	"fmt"

	"medscan/internal/domain"
)

// maxPromptTextRunes caps the report text embedded in a prompt.
const maxPromptTextRunes = 20000

// BuildAnalysisPrompt returns the instruction sent to every provider.
func BuildAnalysisPrompt(text string, reportType domain.ReportType) string {
	if r := []rune(text); len(r) > maxPromptTextRunes {
		text = string(r[:maxPromptTextRunes])
	}
	name := "General Medical Report"
	if reportType != "" {
		name = reportType.DisplayName()
	}

	return fmt.Sprintf(`You are a medical AI assistant analyzing a medical report.

EXTRACTED TEXT FROM MEDICAL REPORT:
%s

REPORT TYPE: %s

Respond with a single JSON object in exactly this shape:
{
  "summary": "A brief 2-3 sentence summary of the report",
  "keyFindings": ["3-5 key findings from the report"],
  "parameters": [
    {
      "name": "Parameter name",
      "value": "Value with unit",
      "normalRange": "Normal range",
      "status": "normal | high | low",
      "interpretation": "Brief explanation"
    }
  ],
  "concerns": ["Abnormal findings or health concerns"],
  "recommendations": ["2-4 general health recommendations based on the report"],
  "disclaimer": "%s"
}

RULES:
- Extract actual values from the report text.
- Give an accurate normal range for each parameter.
- Set status to "normal", "high" or "low" based on the value.
- If information is unclear or missing, say so.
- Use only medical information present in the text.

Return ONLY the JSON object, no additional text.`, text, name, Disclaimer)
}
