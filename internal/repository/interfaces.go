package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/healthcare-api/internal/model"
)

// ErrNotFound is returned when no active row matches.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique constraint violation raised by the store.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("unique constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// Unique indexes on active rows, as named in the schema.
const (
	FacilityNameConstraint = "uq_facilities_name_active"
)

// PatientConstraintFields maps patient unique indexes to the field they guard.
var PatientConstraintFields = map[string]model.UniqueField{
	"uq_patients_email_active":     model.UniqueEmail,
	"uq_patients_phone_active":     model.UniquePhoneNumber,
	"uq_patients_insurance_active": model.UniqueInsuranceNumber,
}

// All repository interfaces in one file
type (
	// Transactor runs fn inside a single transaction. Repository calls made
	// with the ctx passed to fn join that transaction.
	Transactor interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	FacilityRepository interface {
		Create(ctx context.Context, facility *model.Facility) error
		GetByID(ctx context.Context, id int64) (*model.Facility, error)
		Exists(ctx context.Context, id int64) (bool, error)
		ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
		Update(ctx context.Context, facility *model.Facility) error
		SoftDelete(ctx context.Context, id int64) error
		CountPatients(ctx context.Context, id int64) (int64, error)
		List(ctx context.Context, filters model.FacilityFilters, page model.Pagination) ([]*model.FacilityWithCount, int64, error)
		ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]*model.FacilityWithCount, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		GetByID(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id int64) error
		List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error)
		ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) ([]*model.Patient, int64, error)
		ExistsByField(ctx context.Context, field model.UniqueField, value string, excludeID int64) (bool, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter model.AuditFilter, sort model.SortOrder, page model.Pagination) ([]*model.AuditLog, int64, error)
	}
)
