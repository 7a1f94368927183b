// Package report implements the document ingestion pipeline: report text in,
// resolved patient plus persisted PDF_NER report out. Entity extraction by
// the NER collaborator is best-effort; identity resolution and persistence
// are all-or-nothing per call.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medanalyzer/platform/pkg/common/kafka"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/extraction"
	"github.com/medanalyzer/platform/pkg/ner"
	"github.com/medanalyzer/platform/pkg/observability/metrics"
	"github.com/medanalyzer/platform/pkg/patient"
	"github.com/medanalyzer/platform/pkg/pdftext"
	"github.com/medanalyzer/platform/pkg/redact"
	"gorm.io/datatypes"
)

// Store is the write side of the registry the pipeline needs. Satisfied by
// *patient.Repository.
type Store interface {
	PatientLookup
	CreatePatient(ctx context.Context, p *patient.Patient) error
	CreateReport(ctx context.Context, r *patient.Report) error
}

// Policy selects how an entry point treats a missing patient name.
type Policy int

const (
	// PolicyLenient never hard-fails on a missing name: it falls back to a
	// generated placeholder derived from the filename and upload time.
	PolicyLenient Policy = iota
	// PolicyStrict requires an explicit patient id or an extracted name and
	// fails with actionable guidance otherwise.
	PolicyStrict
)

const previewLimit = 500

type Service struct {
	store      Store
	nerClient  ner.Client
	redactor   *redact.Redactor
	producer   *kafka.Producer
	nerTimeout time.Duration
	nowFunc    func() time.Time
}

func NewService(store Store, nerClient ner.Client, redactor *redact.Redactor, producer *kafka.Producer, nerTimeout time.Duration) *Service {
	if nerTimeout <= 0 {
		nerTimeout = 30 * time.Second
	}
	return &Service{
		store:      store,
		nerClient:  nerClient,
		redactor:   redactor,
		producer:   producer,
		nerTimeout: nerTimeout,
		nowFunc:    time.Now,
	}
}

// IngestInput carries one ingestion request through the pipeline.
type IngestInput struct {
	Text              string
	Filename          string
	ExplicitPatientID *uint
	// ManualFields bypasses the field extractor entirely when set.
	ManualFields *models.ExtractedFields
	Policy       Policy
}

// IngestResult is the successful outcome: the resolved or created patient
// and the immutable report attached to it.
type IngestResult struct {
	Patient        *patient.Patient       `json:"patient"`
	Report         *patient.Report        `json:"report"`
	Fields         models.ExtractedFields `json:"extracted_fields"`
	CreatedPatient bool                   `json:"created_patient"`
	Degraded       bool                   `json:"entities_degraded"`
	Suggestion     string                 `json:"suggestion,omitempty"`
}

// Ingest runs the full pipeline. Fatal failures are returned as
// *IngestError with nothing persisted; NER collaborator failures degrade
// to an empty entity list and never abort the call.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if pdftext.IsEmpty(input.Text) {
		return nil, emptyDocumentError()
	}

	entities, degraded := s.extractEntities(ctx, input.Text)

	var fields models.ExtractedFields
	manualInput := input.ManualFields != nil
	if manualInput {
		fields = *input.ManualFields
		fields.Name = models.NormalizeName(fields.Name)
	} else {
		fields = extraction.Extract(input.Text)
	}
	if fields.Gender == "" {
		fields.Gender = models.GenderUnknown
	}

	var suggestion string
	if input.ExplicitPatientID == nil && !fields.HasName() {
		switch input.Policy {
		case PolicyLenient:
			fields.Name = s.placeholderName(input.Filename)
			suggestion = fmt.Sprintf(
				"Could not extract a patient name; created placeholder patient '%s'. "+
					"Include text like 'Patient Name: John Doe' for automatic matching.", fields.Name)
			logger.Log.WithField("placeholder", fields.Name).Warn("falling back to generated patient name")
		case PolicyStrict:
			return nil, nameExtractionError(s.preview(input.Text))
		}
	}

	resolution, err := Resolve(ctx, fields, input.ExplicitPatientID, s.store)
	if err != nil {
		return nil, err
	}

	var resolved *patient.Patient
	createdPatient := false
	switch resolution.Kind {
	case OutcomeUseExisting:
		resolved = resolution.Existing
	case OutcomeCreateNew:
		resolved = &patient.Patient{
			Name:   resolution.Fields.Name,
			Age:    resolution.Fields.Age,
			Gender: resolution.Fields.Gender,
		}
		if err := s.store.CreatePatient(ctx, resolved); err != nil {
			return nil, fmt.Errorf("persisting patient: %w", err)
		}
		createdPatient = true
		metrics.IncPatientCreated()
	case OutcomeFailed:
		return nil, resolution.Failure
	default:
		return nil, fmt.Errorf("unhandled resolution outcome %d", resolution.Kind)
	}

	results := datatypes.JSONMap{
		"entities":    entities,
		"text_length": len(input.Text),
	}
	if manualInput {
		results["manual_input"] = true
	}

	rep := &patient.Report{
		Filename:   input.Filename,
		ReportType: patient.ReportTypePDFNER,
		Results:    results,
		PatientID:  resolved.ID,
	}
	if err := s.store.CreateReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("persisting report: %w", err)
	}
	metrics.IncReportCreated()

	s.publish(ctx, resolved, rep, createdPatient)

	return &IngestResult{
		Patient:        resolved,
		Report:         rep,
		Fields:         fields,
		CreatedPatient: createdPatient,
		Degraded:       degraded,
		Suggestion:     suggestion,
	}, nil
}

// extractEntities calls the NER collaborator under its own deadline. Any
// failure is absorbed: the pipeline continues with no entities rather than
// surfacing a collaborator outage to the uploader.
func (s *Service) extractEntities(ctx context.Context, text string) ([]models.Entity, bool) {
	nerCtx, cancel := context.WithTimeout(ctx, s.nerTimeout)
	defer cancel()

	entities, err := s.nerClient.ExtractEntities(nerCtx, text)
	if err != nil {
		logger.Log.WithError(err).Warn("NER collaborator unavailable, continuing without entities")
		metrics.IncNERDegraded()
		return []models.Entity{}, true
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	return entities, false
}

func (s *Service) placeholderName(filename string) string {
	stem := filename
	if i := strings.IndexByte(stem, '.'); i > 0 {
		stem = stem[:i]
	}
	if stem == "" {
		stem = "report"
	}
	return fmt.Sprintf("Patient_%s_%s", stem, s.nowFunc().Format("20060102_150405"))
}

func (s *Service) preview(text string) string {
	if s.redactor == nil {
		if runes := []rune(text); len(runes) > previewLimit {
			return string(runes[:previewLimit]) + "..."
		}
		return text
	}
	return s.redactor.Preview(text, previewLimit)
}

func (s *Service) publish(ctx context.Context, p *patient.Patient, rep *patient.Report, createdPatient bool) {
	if s.producer == nil {
		return
	}
	err := s.producer.PublishEvent(ctx, "report.created", "ingestion-pipeline", map[string]interface{}{
		"report_id":       rep.ID,
		"report_type":     string(rep.ReportType),
		"patient_id":      p.ID,
		"created_patient": createdPatient,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("failed to publish ingestion event")
	}
}
