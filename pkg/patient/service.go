package patient

import (
	"context"
	"fmt"

	"github.com/medanalyzer/platform/pkg/common/kafka"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/observability/metrics"
)

// Registry is the persistence surface the service drives. Satisfied by
// *Repository.
type Registry interface {
	ListPatients(ctx context.Context, offset, limit int) ([]Patient, error)
	GetPatient(ctx context.Context, id uint) (*Patient, error)
	GetPatientsByName(ctx context.Context, name string) ([]Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	DeletePatient(ctx context.Context, id uint) (int64, error)
	GetReport(ctx context.Context, id uint) (*Report, error)
	ListReportsForPatient(ctx context.Context, patientID uint) ([]Report, error)
	DeleteReport(ctx context.Context, id uint) error
}

type Service struct {
	repo     Registry
	producer *kafka.Producer
}

// NewService wires the patient registry. producer may be nil when the event
// bus is not configured; publishing is best-effort either way.
func NewService(repo Registry, producer *kafka.Producer) *Service {
	return &Service{repo: repo, producer: producer}
}

func (s *Service) List(ctx context.Context, skip, limit int) ([]Patient, error) {
	return s.repo.ListPatients(ctx, skip, limit)
}

func (s *Service) Get(ctx context.Context, id uint) (*Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string, age int, gender models.Gender) (*Patient, error) {
	if models.NormalizeName(name) == "" {
		return nil, fmt.Errorf("patient name required")
	}
	if age < 0 || age > 120 {
		return nil, fmt.Errorf("age %d outside accepted range [0, 120]", age)
	}

	p := &Patient{Name: name, Age: age, Gender: gender}
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("persisting patient: %w", err)
	}
	metrics.IncPatientCreated()

	s.publish(ctx, "patient.created", map[string]interface{}{
		"patient_id": p.ID,
		"name":       p.Name,
	})
	return p, nil
}

// DeletionSummary reports what a cascade delete removed.
type DeletionSummary struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	DeletedReportsCount int64  `json:"deleted_reports_count"`
}

func (s *Service) Delete(ctx context.Context, id uint) (*DeletionSummary, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.DeletePatient(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.IncPatientDeleted()

	s.publish(ctx, "patient.deleted", map[string]interface{}{
		"patient_id":      id,
		"deleted_reports": count,
	})
	return &DeletionSummary{ID: id, Name: p.Name, DeletedReportsCount: count}, nil
}

func (s *Service) GetReport(ctx context.Context, id uint) (*Report, error) {
	return s.repo.GetReport(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, patientID uint) ([]Report, error) {
	if _, err := s.repo.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListReportsForPatient(ctx, patientID)
}

func (s *Service) DeleteReport(ctx context.Context, id uint) error {
	return s.repo.DeleteReport(ctx, id)
}

// Duplicates lists every patient registered under the exact normalized name.
func (s *Service) Duplicates(ctx context.Context, name string) ([]Patient, error) {
	return s.repo.GetPatientsByName(ctx, name)
}

// Similar surfaces likely duplicate registrations for a name. Bounded scan;
// advisory only, never used for identity resolution.
func (s *Service) Similar(ctx context.Context, name string) ([]SimilarMatch, error) {
	candidates, err := s.repo.ListPatients(ctx, 0, 500)
	if err != nil {
		return nil, err
	}
	return SimilarPatients(candidates, name, 0), nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, eventType, "patient-registry", data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish registry event")
	}
}
