package analyzer

import (
	"medscan/internal/domain"
)

// RangeRule classifies a measurement for one named parameter.
type RangeRule interface {
	ParameterName() string
	Classify(v domain.NumericValue) domain.ParameterStatus
}

// scalarRule checks the normal band first, then the critical band.
// A nil critical check means the parameter is never critical.
type scalarRule struct {
	name     string
	normal   func(float64) bool
	critical func(float64) bool
}

func (r scalarRule) ParameterName() string { return r.name }

func (r scalarRule) Classify(v domain.NumericValue) domain.ParameterStatus {
	if r.normal(v.Value) {
		return domain.ParameterStatusNormal
	}
	if r.critical != nil && r.critical(v.Value) {
		return domain.ParameterStatusCritical
	}
	return domain.ParameterStatusAbnormal
}

// pairRule is scalarRule for two-value readings such as blood pressure.
type pairRule struct {
	name     string
	normal   func(first, second float64) bool
	critical func(first, second float64) bool
}

func (r pairRule) ParameterName() string { return r.name }

func (r pairRule) Classify(v domain.NumericValue) domain.ParameterStatus {
	var second float64
	if v.Secondary != nil {
		second = *v.Secondary
	}
	if r.normal(v.Value, second) {
		return domain.ParameterStatusNormal
	}
	if r.critical != nil && r.critical(v.Value, second) {
		return domain.ParameterStatusCritical
	}
	return domain.ParameterStatusAbnormal
}

func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

func above(limit float64) func(float64) bool {
	return func(v float64) bool { return v > limit }
}

func atLeast(limit float64) func(float64) bool {
	return func(v float64) bool { return v >= limit }
}

// DefaultRangeRules returns the built-in reference ranges.
func DefaultRangeRules() []RangeRule {
	return []RangeRule{
		scalarRule{name: ParamHemoglobin, normal: between(12, 16)},
		pairRule{
			name:     ParamBloodPressure,
			normal:   func(sys, dia float64) bool { return sys < 120 && dia < 80 },
			critical: func(sys, dia float64) bool { return sys >= 140 || dia >= 90 },
		},
		scalarRule{name: ParamGlucose, normal: between(70, 100), critical: above(125)},
		scalarRule{name: ParamCholesterol, normal: below(200), critical: atLeast(240)},
	}
}

// StatusEvaluator maps parameter names to reference range rules. Parameters
// without a rule are always Normal.
type StatusEvaluator struct {
	rules map[string]RangeRule
}

// NewStatusEvaluator creates an evaluator preloaded with DefaultRangeRules.
func NewStatusEvaluator() *StatusEvaluator {
	e := &StatusEvaluator{rules: make(map[string]RangeRule)}
	for _, r := range DefaultRangeRules() {
		e.Register(r)
	}
	return e
}

// Register adds or replaces the rule for r.ParameterName().
func (e *StatusEvaluator) Register(r RangeRule) {
	e.rules[r.ParameterName()] = r
}

// HasRule reports whether name has a reference range.
func (e *StatusEvaluator) HasRule(name string) bool {
	_, ok := e.rules[name]
	return ok
}

// Evaluate classifies value for the named parameter.
func (e *StatusEvaluator) Evaluate(name string, value domain.NumericValue) domain.ParameterStatus {
	rule, ok := e.rules[name]
	if !ok {
		return domain.ParameterStatusNormal
	}
	return rule.Classify(value)
}
