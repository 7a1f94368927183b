package patient

import (
	"context"
	"errors"
	"time"

	"github.com/medanalyzer/platform/pkg/common/models"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrReportNotFound  = errors.New("report not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Patient{}, &Report{})
}

func (r *Repository) CreatePatient(ctx context.Context, p *Patient) error {
	p.Name = models.NormalizeName(p.Name)
	if p.Gender == "" {
		p.Gender = models.GenderUnknown
	}
	p.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) GetPatient(ctx context.Context, id uint) (*Patient, error) {
	var p Patient
	result := r.db.WithContext(ctx).Preload("Reports").First(&p, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	return &p, result.Error
}

// GetPatientByName returns the oldest patient whose normalized name matches.
// Lookups compare case-insensitively on the normalized stored form.
func (r *Repository) GetPatientByName(ctx context.Context, name string) (*Patient, error) {
	normalized := models.NormalizeName(name)
	var p Patient
	result := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", normalized).
		Order("id").
		First(&p)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	return &p, result.Error
}

// GetPatientsByName returns every matching patient, for duplicate surfacing.
func (r *Repository) GetPatientsByName(ctx context.Context, name string) ([]Patient, error) {
	normalized := models.NormalizeName(name)
	var patients []Patient
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", normalized).
		Order("id").
		Find(&patients).Error
	return patients, err
}

func (r *Repository) ListPatients(ctx context.Context, offset, limit int) ([]Patient, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var patients []Patient
	err := r.db.WithContext(ctx).
		Preload("Reports").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&patients).Error
	return patients, err
}

// DeletePatient removes a patient and every owned report inside one
// transaction: the cascade either fully applies or nothing is deleted.
// Returns the number of reports removed alongside the patient.
func (r *Repository) DeletePatient(ctx context.Context, id uint) (int64, error) {
	var reportCount int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Patient
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPatientNotFound
			}
			return err
		}

		if err := tx.Model(&Report{}).Where("patient_id = ?", id).Count(&reportCount).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", id).Delete(&Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return 0, err
	}
	return reportCount, nil
}

func (r *Repository) CreateReport(ctx context.Context, rep *Report) error {
	rep.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *Repository) GetReport(ctx context.Context, id uint) (*Report, error) {
	var rep Report
	result := r.db.WithContext(ctx).First(&rep, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	return &rep, result.Error
}

func (r *Repository) ListReportsForPatient(ctx context.Context, patientID uint) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("id").
		Find(&reports).Error
	return reports, err
}

func (r *Repository) DeleteReport(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Report{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
