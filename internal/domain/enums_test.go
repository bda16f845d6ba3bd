package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medscan/internal/domain"
)

func TestReportType_DisplayName(t *testing.T) {
	tests := []struct {
		rt   domain.ReportType
		want string
	}{
		{domain.ReportTypeBloodTest, "Blood Test Report"},
		{domain.ReportTypeUrineAnalysis, "Urine Analysis Report"},
		{domain.ReportTypeLipidProfile, "Lipid Profile Report"},
		{domain.ReportTypeXRay, "X-Ray Report"},
		{domain.ReportTypeECG, "ECG Report"},
		{domain.ReportTypePrescription, "Prescription"},
		{domain.ReportTypeGeneralMedical, "General Medical Report"},
		{domain.ReportType("mri"), "medical report"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rt), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rt.DisplayName())
		})
	}
}

func TestReportType_Valid(t *testing.T) {
	assert.True(t, domain.ReportTypeECG.Valid())
	assert.False(t, domain.ReportType("").Valid())
	assert.False(t, domain.ReportType("mri").Valid())
}

func TestAnalysisStatus_Valid(t *testing.T) {
	assert.True(t, domain.AnalysisStatusMedical.Valid())
	assert.True(t, domain.AnalysisStatusNotMedical.Valid())
	assert.True(t, domain.AnalysisStatusUnsupportedFormat.Valid())
	assert.False(t, domain.AnalysisStatus("pending").Valid())
}

func TestParameterStatus_OutOfRange(t *testing.T) {
	assert.False(t, domain.ParameterStatusNormal.OutOfRange())
	assert.True(t, domain.ParameterStatusAbnormal.OutOfRange())
	assert.True(t, domain.ParameterStatusCritical.OutOfRange())
}

func TestFileType_IsImage(t *testing.T) {
	assert.False(t, domain.FileTypePDF.IsImage())
	assert.True(t, domain.FileTypeJPG.IsImage())
	assert.True(t, domain.FileTypePNG.IsImage())
}

func TestAllowedMapsAgree(t *testing.T) {
	for ext, ft := range domain.AllowedExtensions {
		ct, ok := domain.AllowedFileTypes[ft]
		assert.True(t, ok, "extension %s maps to unknown file type %s", ext, ft)
		assert.Equal(t, ft, domain.AllowedContentTypes[ct])
	}
	assert.Equal(t, domain.FileTypeJPG, domain.AllowedContentTypes["image/jpg"])
}
