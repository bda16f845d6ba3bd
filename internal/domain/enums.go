package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// IsImage reports whether the file type must go through image OCR.
func (f FileType) IsImage() bool {
	return f == FileTypeJPG || f == FileTypePNG
}

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
// image/jpg is not a registered type but some clients still send it.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/jpg":       FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ReportType is the category assigned to a medical document.
type ReportType string

const (
	ReportTypeBloodTest      ReportType = "blood_test"
	ReportTypeUrineAnalysis  ReportType = "urine_analysis"
	ReportTypeLipidProfile   ReportType = "lipid_profile"
	ReportTypeXRay           ReportType = "x_ray"
	ReportTypeECG            ReportType = "ecg"
	ReportTypePrescription   ReportType = "prescription"
	ReportTypeGeneralMedical ReportType = "general_medical"
)

var reportTypeNames = map[ReportType]string{
	ReportTypeBloodTest:      "Blood Test Report",
	ReportTypeUrineAnalysis:  "Urine Analysis Report",
	ReportTypeLipidProfile:   "Lipid Profile Report",
	ReportTypeXRay:           "X-Ray Report",
	ReportTypeECG:            "ECG Report",
	ReportTypePrescription:   "Prescription",
	ReportTypeGeneralMedical: "General Medical Report",
}

// DisplayName returns the human readable label, e.g. "Blood Test Report".
func (r ReportType) DisplayName() string {
	if name, ok := reportTypeNames[r]; ok {
		return name
	}
	return "medical report"
}

// Valid reports whether r is one of the known report types.
func (r ReportType) Valid() bool {
	_, ok := reportTypeNames[r]
	return ok
}

// AnalysisStatus is the terminal state of one pipeline run.
type AnalysisStatus string

const (
	AnalysisStatusMedical           AnalysisStatus = "medical_document"
	AnalysisStatusNotMedical        AnalysisStatus = "not_medical_document"
	AnalysisStatusUnsupportedFormat AnalysisStatus = "unsupported_format"
)

// Valid reports whether s is a known analysis status.
func (s AnalysisStatus) Valid() bool {
	switch s {
	case AnalysisStatusMedical, AnalysisStatusNotMedical, AnalysisStatusUnsupportedFormat:
		return true
	}
	return false
}

// ParameterStatus classifies a measured value against its reference range.
type ParameterStatus string

const (
	ParameterStatusNormal   ParameterStatus = "normal"
	ParameterStatusAbnormal ParameterStatus = "abnormal"
	ParameterStatusCritical ParameterStatus = "critical"
)

// OutOfRange reports whether the status should be flagged to the reader.
func (s ParameterStatus) OutOfRange() bool {
	return s == ParameterStatusAbnormal || s == ParameterStatusCritical
}
