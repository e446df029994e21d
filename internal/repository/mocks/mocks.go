// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
)

var (
	_ repository.FacilityRepository = (*FacilityRepository)(nil)
	_ repository.PatientRepository  = (*PatientRepository)(nil)
	_ repository.AuditRepository    = (*AuditRepository)(nil)
	_ repository.Transactor         = Transactor{}
)

// Transactor runs fn directly. Fail, when set, is returned before fn runs.
type Transactor struct {
	Fail error
}

func (t Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.Fail != nil {
		return t.Fail
	}
	return fn(ctx)
}

type FacilityRepository struct {
	mock.Mock
}

func (m *FacilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	args := m.Called(ctx, facility)
	return args.Error(0)
}

func (m *FacilityRepository) GetByID(ctx context.Context, id int64) (*model.Facility, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*model.Facility); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FacilityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *FacilityRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *FacilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	args := m.Called(ctx, facility)
	return args.Error(0)
}

func (m *FacilityRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FacilityRepository) CountPatients(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *FacilityRepository) List(ctx context.Context, filters model.FacilityFilters, page model.Pagination) ([]*model.FacilityWithCount, int64, error) {
	args := m.Called(ctx, filters, page)
	items, _ := args.Get(0).([]*model.FacilityWithCount)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *FacilityRepository) ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]*model.FacilityWithCount, error) {
	args := m.Called(ctx, threshold)
	items, _ := args.Get(0).([]*model.FacilityWithCount)
	return items, args.Error(1)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *PatientRepository) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *PatientRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PatientRepository) List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error) {
	args := m.Called(ctx, filters, page)
	items, _ := args.Get(0).([]*model.Patient)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *PatientRepository) ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) ([]*model.Patient, int64, error) {
	args := m.Called(ctx, facilityID, page)
	items, _ := args.Get(0).([]*model.Patient)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *PatientRepository) ExistsByField(ctx context.Context, field model.UniqueField, value string, excludeID int64) (bool, error) {
	args := m.Called(ctx, field, value, excludeID)
	return args.Bool(0), args.Error(1)
}

type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter model.AuditFilter, sort model.SortOrder, page model.Pagination) ([]*model.AuditLog, int64, error) {
	args := m.Called(ctx, filter, sort, page)
	items, _ := args.Get(0).([]*model.AuditLog)
	return items, args.Get(1).(int64), args.Error(2)
}
