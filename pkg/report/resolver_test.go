package report

import (
	"context"
	"errors"
	"testing"

	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	getPatient       func(ctx context.Context, id uint) (*patient.Patient, error)
	getPatientByName func(ctx context.Context, name string) (*patient.Patient, error)
}

func (f *fakeLookup) GetPatient(ctx context.Context, id uint) (*patient.Patient, error) {
	return f.getPatient(ctx, id)
}

func (f *fakeLookup) GetPatientByName(ctx context.Context, name string) (*patient.Patient, error) {
	return f.getPatientByName(ctx, name)
}

func TestResolveExplicitIDFound(t *testing.T) {
	existing := &patient.Patient{ID: 7, Name: "Jane Doe"}
	lookup := &fakeLookup{
		getPatient: func(ctx context.Context, id uint) (*patient.Patient, error) {
			assert.Equal(t, uint(7), id)
			return existing, nil
		},
	}

	id := uint(7)
	res, err := Resolve(context.Background(), models.ExtractedFields{Name: "Someone Else"}, &id, lookup)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUseExisting, res.Kind)
	assert.Same(t, existing, res.Existing)
}

func TestResolveExplicitIDNotFound(t *testing.T) {
	lookup := &fakeLookup{
		getPatient: func(ctx context.Context, id uint) (*patient.Patient, error) {
			return nil, patient.ErrPatientNotFound
		},
	}

	id := uint(99)
	res, err := Resolve(context.Background(), models.ExtractedFields{}, &id, lookup)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Kind)
	require.NotNil(t, res.Failure)
	assert.Equal(t, FailurePatientIDNotFound, res.Failure.Kind)
}

func TestResolveNameHitReusesExisting(t *testing.T) {
	existing := &patient.Patient{ID: 3, Name: "Jane Doe"}
	lookup := &fakeLookup{
		getPatientByName: func(ctx context.Context, name string) (*patient.Patient, error) {
			assert.Equal(t, "Jane Doe", name)
			return existing, nil
		},
	}

	res, err := Resolve(context.Background(), models.ExtractedFields{Name: "Jane Doe", Age: 40}, nil, lookup)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUseExisting, res.Kind)
	assert.Same(t, existing, res.Existing)
}

func TestResolveNameMissRequestsCreation(t *testing.T) {
	lookup := &fakeLookup{
		getPatientByName: func(ctx context.Context, name string) (*patient.Patient, error) {
			return nil, patient.ErrPatientNotFound
		},
	}

	fields := models.ExtractedFields{Name: "New Person", Age: 33, Gender: models.GenderFemale}
	res, err := Resolve(context.Background(), fields, nil, lookup)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreateNew, res.Kind)
	assert.Equal(t, fields, res.Fields)
}

func TestResolveNoIdentityFails(t *testing.T) {
	res, err := Resolve(context.Background(), models.ExtractedFields{Age: 50}, nil, &fakeLookup{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Kind)
	require.NotNil(t, res.Failure)
	assert.Equal(t, FailureNameExtraction, res.Failure.Kind)
}

func TestResolveLookupIOErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	lookup := &fakeLookup{
		getPatientByName: func(ctx context.Context, name string) (*patient.Patient, error) {
			return nil, boom
		},
	}

	_, err := Resolve(context.Background(), models.ExtractedFields{Name: "Jane Doe"}, nil, lookup)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
