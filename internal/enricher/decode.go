package enricher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"medscan/internal/domain"
)

const analysisSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "keyFindings": {"type": "array", "items": {"type": "string"}},
    "parameters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "value": {"type": "string"},
          "normalRange": {"type": "string"},
          "status": {"type": "string"},
          "interpretation": {"type": "string"}
        }
      }
    },
    "concerns": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "disclaimer": {"type": "string"}
  }
}`

var analysisSchema = jsonschema.MustCompileString("analysis.json", analysisSchemaJSON)

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeAnalysis validates raw model output and converts it to an AIAnalysis.
func DecodeAnalysis(raw, provider string) (*domain.AIAnalysis, error) {
	body := StripCodeFence(raw)

	var generic any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(body, 500))
	}
	if err := analysisSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("LLM output does not match schema: %w", err)
	}

	var analysis domain.AIAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, fmt.Errorf("decoding LLM analysis: %w", err)
	}

	analysis.Provider = provider
	analysis.Fallback = false
	fillEmpty(&analysis)
	return &analysis, nil
}

func fillEmpty(a *domain.AIAnalysis) {
	if a.KeyFindings == nil {
		a.KeyFindings = []string{}
	}
	if a.Parameters == nil {
		a.Parameters = []domain.AIParameter{}
	}
	if a.Concerns == nil {
		a.Concerns = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	if a.Disclaimer == "" {
		a.Disclaimer = Disclaimer
	}
}
