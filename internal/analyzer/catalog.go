package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"medscan/internal/domain"
)

// Catalog parameter names.
const (
	ParamHemoglobin     = "Hemoglobin"
	ParamBloodPressure  = "Blood Pressure"
	ParamHeartRate      = "Heart Rate"
	ParamTemperature    = "Temperature"
	ParamGlucose        = "Glucose"
	ParamCholesterol    = "Cholesterol"
	ParamWBCCount       = "WBC Count"
	ParamRBCCount       = "RBC Count"
	ParamPlateletCount  = "Platelet Count"
	ParamHematocrit     = "Hematocrit"
	ParamHDLCholesterol = "HDL Cholesterol"
	ParamLDLCholesterol = "LDL Cholesterol"
	ParamTriglycerides  = "Triglycerides"
)

// ValueParser turns the numeric capture of a catalog pattern into a
// measurement. Thousands separators are already stripped.
type ValueParser func(capture string) (domain.NumericValue, error)

// CatalogEntry is one named extraction rule. Pattern must capture the
// numeric value in group 1 and may capture a unit in group 2.
type CatalogEntry struct {
	Name    string
	Pattern *regexp.Regexp
	Parse   ValueParser
}

// DefaultCatalog returns the built-in extraction rules in output order.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{ParamHemoglobin, regexp.MustCompile(`(?i)hemoglobin[:\s]*([0-9.]+)\s*(g/dl|mg/dl)`), parseScalar},
		{ParamBloodPressure, regexp.MustCompile(`(?i)blood\s*pressure[:\s]*([0-9]+/[0-9]+)\s*mmhg`), parsePair},
		{ParamHeartRate, regexp.MustCompile(`(?i)heart\s*rate[:\s]*([0-9]+)\s*(bpm|beats)`), parseScalar},
		{ParamTemperature, regexp.MustCompile(`(?i)temperature[:\s]*([0-9.]+)\s*(°?[fc])`), parseScalar},
		{ParamGlucose, regexp.MustCompile(`(?i)glucose[:\s]*([0-9.]+)\s*(mg/dl)`), parseScalar},
		{ParamCholesterol, regexp.MustCompile(`(?i)cholesterol[:\s]*([0-9.]+)\s*(mg/dl)`), parseScalar},
		{ParamWBCCount, regexp.MustCompile(`(?i)wbc[:\s]*([0-9,]+)\s*(/μl|per|ul)`), parseScalar},
		{ParamRBCCount, regexp.MustCompile(`(?i)rbc[:\s]*([0-9.]+)\s*(million|mil)`), parseScalar},
		{ParamPlateletCount, regexp.MustCompile(`(?i)platelet[:\s]*([0-9,]+)\s*(/μl|per|ul)`), parseScalar},
		{ParamHematocrit, regexp.MustCompile(`(?i)hematocrit[:\s]*([0-9.]+)\s*%`), parseScalar},
		{ParamHDLCholesterol, regexp.MustCompile(`(?i)hdl[:\s]*([0-9.]+)\s*(mg/dl)`), parseScalar},
		{ParamLDLCholesterol, regexp.MustCompile(`(?i)ldl[:\s]*([0-9.]+)\s*(mg/dl)`), parseScalar},
		{ParamTriglycerides, regexp.MustCompile(`(?i)triglycerides[:\s]*([0-9.]+)\s*(mg/dl)`), parseScalar},
	}
}

func parseScalar(capture string) (domain.NumericValue, error) {
	v, err := strconv.ParseFloat(capture, 64)
	if err != nil {
		return domain.NumericValue{}, fmt.Errorf("parsing %q: %w", capture, err)
	}
	return domain.NumericValue{Value: v}, nil
}

// parsePair parses "systolic/diastolic".
func parsePair(capture string) (domain.NumericValue, error) {
	first, second, ok := strings.Cut(capture, "/")
	if !ok {
		return domain.NumericValue{}, fmt.Errorf("parsing %q: missing separator", capture)
	}
	sys, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return domain.NumericValue{}, fmt.Errorf("parsing systolic %q: %w", first, err)
	}
	dia, err := strconv.ParseFloat(second, 64)
	if err != nil {
		return domain.NumericValue{}, fmt.Errorf("parsing diastolic %q: %w", second, err)
	}
	return domain.NumericValue{Value: sys, Secondary: &dia}, nil
}
