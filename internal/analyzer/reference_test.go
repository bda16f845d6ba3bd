package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medscan/internal/analyzer"
	"medscan/internal/domain"
)

func scalar(v float64) domain.NumericValue {
	return domain.NumericValue{Value: v}
}

func pair(a, b float64) domain.NumericValue {
	return domain.NumericValue{Value: a, Secondary: &b}
}

func TestStatusEvaluator_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		param    string
		value    domain.NumericValue
		expected domain.ParameterStatus
	}{
		{"hemoglobin low", analyzer.ParamHemoglobin, scalar(11.9), domain.ParameterStatusAbnormal},
		{"hemoglobin lower bound", analyzer.ParamHemoglobin, scalar(12), domain.ParameterStatusNormal},
		{"hemoglobin upper bound", analyzer.ParamHemoglobin, scalar(16), domain.ParameterStatusNormal},
		{"hemoglobin high", analyzer.ParamHemoglobin, scalar(16.1), domain.ParameterStatusAbnormal},
		{"hemoglobin never critical", analyzer.ParamHemoglobin, scalar(3), domain.ParameterStatusAbnormal},

		{"glucose 69", analyzer.ParamGlucose, scalar(69), domain.ParameterStatusAbnormal},
		{"glucose 70", analyzer.ParamGlucose, scalar(70), domain.ParameterStatusNormal},
		{"glucose 100", analyzer.ParamGlucose, scalar(100), domain.ParameterStatusNormal},
		{"glucose 101", analyzer.ParamGlucose, scalar(101), domain.ParameterStatusAbnormal},
		{"glucose 125", analyzer.ParamGlucose, scalar(125), domain.ParameterStatusAbnormal},
		{"glucose 126", analyzer.ParamGlucose, scalar(126), domain.ParameterStatusCritical},

		{"cholesterol 199", analyzer.ParamCholesterol, scalar(199), domain.ParameterStatusNormal},
		{"cholesterol 200", analyzer.ParamCholesterol, scalar(200), domain.ParameterStatusAbnormal},
		{"cholesterol 239", analyzer.ParamCholesterol, scalar(239), domain.ParameterStatusAbnormal},
		{"cholesterol 240", analyzer.ParamCholesterol, scalar(240), domain.ParameterStatusCritical},

		{"bp 119/79", analyzer.ParamBloodPressure, pair(119, 79), domain.ParameterStatusNormal},
		{"bp 120/79", analyzer.ParamBloodPressure, pair(120, 79), domain.ParameterStatusAbnormal},
		{"bp 119/80", analyzer.ParamBloodPressure, pair(119, 80), domain.ParameterStatusAbnormal},
		{"bp 135/85", analyzer.ParamBloodPressure, pair(135, 85), domain.ParameterStatusAbnormal},
		{"bp 145/70", analyzer.ParamBloodPressure, pair(145, 70), domain.ParameterStatusCritical},
		{"bp 130/90", analyzer.ParamBloodPressure, pair(130, 90), domain.ParameterStatusCritical},
		{"bp 140/89", analyzer.ParamBloodPressure, pair(140, 89), domain.ParameterStatusCritical},

		{"heart rate has no range", analyzer.ParamHeartRate, scalar(190), domain.ParameterStatusNormal},
		{"unknown parameter", "Sodium", scalar(-1), domain.ParameterStatusNormal},
	}

	e := analyzer.NewStatusEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Evaluate(tt.param, tt.value))
		})
	}
}

type fixedRule struct {
	name   string
	status domain.ParameterStatus
}

func (r fixedRule) ParameterName() string { return r.name }
func (r fixedRule) Classify(domain.NumericValue) domain.ParameterStatus { return r.status }

func TestStatusEvaluator_Register_OverridesRule(t *testing.T) {
	e := analyzer.NewStatusEvaluator()
	assert.False(t, e.HasRule(analyzer.ParamHeartRate))

	e.Register(fixedRule{name: analyzer.ParamHeartRate, status: domain.ParameterStatusCritical})

	assert.True(t, e.HasRule(analyzer.ParamHeartRate))
	assert.Equal(t, domain.ParameterStatusCritical, e.Evaluate(analyzer.ParamHeartRate, scalar(72)))
}
