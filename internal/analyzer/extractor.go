package analyzer

import (
	"strings"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// ParameterExtractor pulls known clinical measurements out of report text
// using a data-driven catalog. Output follows catalog order, one parameter
// per entry at most.
type ParameterExtractor struct {
	catalog   []CatalogEntry
	evaluator port.StatusEvaluator
}

// NewParameterExtractor creates an extractor over catalog, scoring each
// parameter with evaluator.
func NewParameterExtractor(catalog []CatalogEntry, evaluator port.StatusEvaluator) *ParameterExtractor {
	return &ParameterExtractor{catalog: catalog, evaluator: evaluator}
}

// NewDefaultParameterExtractor uses DefaultCatalog and the built-in reference ranges.
func NewDefaultParameterExtractor() *ParameterExtractor {
	return NewParameterExtractor(DefaultCatalog(), NewStatusEvaluator())
}

// Extract applies every catalog entry to text. A missing field or an
// unparsable capture contributes nothing.
func (x *ParameterExtractor) Extract(text string) []domain.Parameter {
	params := make([]domain.Parameter, 0, len(x.catalog))
	for _, entry := range x.catalog {
		p, ok := x.extractOne(entry, text)
		if ok {
			params = append(params, p)
		}
	}
	return params
}

func (x *ParameterExtractor) extractOne(entry CatalogEntry, text string) (domain.Parameter, bool) {
	m := entry.Pattern.FindStringSubmatch(text)
	if m == nil {
		return domain.Parameter{}, false
	}

	raw := m[1]
	numeric, err := entry.Parse(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return domain.Parameter{}, false
	}

	var unit string
	if len(m) > 2 {
		unit = m[2]
	}
	value := raw
	if unit != "" {
		value = raw + " " + unit
	}

	return domain.Parameter{
		Name:         entry.Name,
		Value:        value,
		NumericValue: numeric,
		Unit:         unit,
		Status:       x.evaluator.Evaluate(entry.Name, numeric),
	}, true
}
