package patient

import (
	"context"
	"testing"

	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is an in-memory Registry whose DeletePatient mirrors the
// repository contract: the patient and every owned report go together, and
// the removed-report count is returned.
type fakeRegistry struct {
	nextID   uint
	patients map[uint]*Patient
	reports  map[uint]*Report
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{nextID: 1, patients: map[uint]*Patient{}, reports: map[uint]*Report{}}
}

func (f *fakeRegistry) ListPatients(ctx context.Context, offset, limit int) ([]Patient, error) {
	var out []Patient
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRegistry) GetPatient(ctx context.Context, id uint) (*Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (f *fakeRegistry) GetPatientsByName(ctx context.Context, name string) ([]Patient, error) {
	normalized := models.NormalizeName(name)
	var out []Patient
	for _, p := range f.patients {
		if p.Name == normalized {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRegistry) CreatePatient(ctx context.Context, p *Patient) error {
	p.ID = f.nextID
	p.Name = models.NormalizeName(p.Name)
	if p.Gender == "" {
		p.Gender = models.GenderUnknown
	}
	f.patients[p.ID] = p
	f.nextID++
	return nil
}

func (f *fakeRegistry) DeletePatient(ctx context.Context, id uint) (int64, error) {
	if _, ok := f.patients[id]; !ok {
		return 0, ErrPatientNotFound
	}
	var count int64
	for reportID, rep := range f.reports {
		if rep.PatientID == id {
			delete(f.reports, reportID)
			count++
		}
	}
	delete(f.patients, id)
	return count, nil
}

func (f *fakeRegistry) GetReport(ctx context.Context, id uint) (*Report, error) {
	rep, ok := f.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return rep, nil
}

func (f *fakeRegistry) ListReportsForPatient(ctx context.Context, patientID uint) ([]Report, error) {
	var out []Report
	for _, rep := range f.reports {
		if rep.PatientID == patientID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (f *fakeRegistry) DeleteReport(ctx context.Context, id uint) error {
	if _, ok := f.reports[id]; !ok {
		return ErrReportNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeRegistry) addReport(patientID uint, reportType ReportType) *Report {
	rep := &Report{ID: f.nextID, ReportType: reportType, PatientID: patientID}
	f.reports[rep.ID] = rep
	f.nextID++
	return rep
}

func seedPatient(t *testing.T, reg *fakeRegistry, name string) *Patient {
	t.Helper()
	p := &Patient{Name: name, Age: 40, Gender: models.GenderFemale}
	require.NoError(t, reg.CreatePatient(context.Background(), p))
	return p
}

func TestDeleteCascadesOwnedReports(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil)

	target := seedPatient(t, reg, "Jane Doe")
	other := seedPatient(t, reg, "Bob Martin")

	for i := 0; i < 3; i++ {
		reg.addReport(target.ID, ReportTypePDFNER)
	}
	kept := reg.addReport(other.ID, ReportTypePDFNER)

	summary, err := svc.Delete(context.Background(), target.ID)
	require.NoError(t, err)

	assert.Equal(t, target.ID, summary.ID)
	assert.Equal(t, "Jane Doe", summary.Name)
	assert.Equal(t, int64(3), summary.DeletedReportsCount)

	// No report row may still reference the deleted patient.
	for _, rep := range reg.reports {
		assert.NotEqual(t, target.ID, rep.PatientID)
	}
	_, err = svc.Get(context.Background(), target.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	// The other patient's report is untouched.
	got, err := svc.GetReport(context.Background(), kept.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.PatientID)
}

func TestDeleteZeroReports(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil)

	p := seedPatient(t, reg, "Jane Doe")

	summary, err := svc.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.DeletedReportsCount)
	assert.Empty(t, reg.patients)
}

func TestDeleteUnknownPatient(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil)

	_, err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil)

	_, err := svc.Create(context.Background(), "   ", 30, models.GenderFemale)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), "Jane Doe", 121, models.GenderFemale)
	require.Error(t, err)
	assert.Empty(t, reg.patients)
}
