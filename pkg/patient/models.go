package patient

import (
	"time"

	"github.com/medanalyzer/platform/pkg/common/models"
	"gorm.io/datatypes"
)

// ReportType discriminates the analysis artifacts attached to a patient.
type ReportType string

const (
	ReportTypePDFNER         ReportType = "PDF_NER"
	ReportTypeXRayAnalysis   ReportType = "XRAY_ANALYSIS"
	ReportTypeXRayComparison ReportType = "XRAY_COMPARISON"
)

// Patient is the registry identity record. Name is stored normalized
// (trimmed, title-cased) so name lookups are case- and spacing-insensitive.
// Age 0 means unknown.
type Patient struct {
	ID        uint          `json:"id" gorm:"primaryKey;column:id"`
	Name      string        `json:"name" gorm:"column:name;index"`
	Age       int           `json:"age" gorm:"column:age"`
	Gender    models.Gender `json:"gender" gorm:"column:gender"`
	CreatedAt time.Time     `json:"created_at" gorm:"column:created_at"`
	Reports   []Report      `json:"reports" gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
}

func (Patient) TableName() string {
	return "patients"
}

// Report is an immutable analysis artifact. It is only ever created or
// deleted, and its lifetime is bounded by the owning patient.
type Report struct {
	ID         uint              `json:"id" gorm:"primaryKey;column:id"`
	Filename   string            `json:"filename" gorm:"column:filename"`
	ReportType ReportType        `json:"report_type" gorm:"column:report_type"`
	Results    datatypes.JSONMap `json:"results" gorm:"column:results"`
	PatientID  uint              `json:"patient_id" gorm:"column:patient_id"`
	CreatedAt  time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Report) TableName() string {
	return "reports"
}
