package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/patient"
)

// PatientLookup is the read side of the registry the resolver consults.
// Satisfied by *patient.Repository.
type PatientLookup interface {
	GetPatient(ctx context.Context, id uint) (*patient.Patient, error)
	GetPatientByName(ctx context.Context, name string) (*patient.Patient, error)
}

// OutcomeKind tags the three resolution branches. Every caller must switch
// on all three; there is no nullable shortcut.
type OutcomeKind int

const (
	OutcomeUseExisting OutcomeKind = iota
	OutcomeCreateNew
	OutcomeFailed
)

// Resolution is the closed outcome of identity resolution. Exactly one
// payload field is populated, selected by Kind.
type Resolution struct {
	Kind     OutcomeKind
	Existing *patient.Patient       // OutcomeUseExisting
	Fields   models.ExtractedFields // OutcomeCreateNew
	Failure  *IngestError           // OutcomeFailed
}

// Resolve maps extracted (or manual) identity fields, or an explicit
// patient id, onto exactly one registry decision.
//
// An explicit id always short-circuits field-based resolution. A present
// name is matched against the registry's normalized form: a hit reuses the
// oldest match, a miss asks for creation. With neither id nor name the
// resolution fails explicitly; the resolver never invents a name itself —
// placeholder fallbacks are a caller policy applied before this point.
//
// The error return carries registry I/O failures only; domain failures
// come back as OutcomeFailed.
func Resolve(ctx context.Context, fields models.ExtractedFields, explicitID *uint, lookup PatientLookup) (Resolution, error) {
	if explicitID != nil {
		existing, err := lookup.GetPatient(ctx, *explicitID)
		if err != nil {
			if errors.Is(err, patient.ErrPatientNotFound) {
				return Resolution{Kind: OutcomeFailed, Failure: patientNotFoundError()}, nil
			}
			return Resolution{}, fmt.Errorf("looking up patient %d: %w", *explicitID, err)
		}
		return Resolution{Kind: OutcomeUseExisting, Existing: existing}, nil
	}

	if fields.HasName() {
		existing, err := lookup.GetPatientByName(ctx, fields.Name)
		if err != nil {
			if errors.Is(err, patient.ErrPatientNotFound) {
				return Resolution{Kind: OutcomeCreateNew, Fields: fields}, nil
			}
			return Resolution{}, fmt.Errorf("looking up patient by name: %w", err)
		}
		return Resolution{Kind: OutcomeUseExisting, Existing: existing}, nil
	}

	return Resolution{Kind: OutcomeFailed, Failure: nameExtractionError("")}, nil
}
