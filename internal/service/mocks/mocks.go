// Package mocks provides testify mocks of the service contracts.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/audit"
	"github.com/jwalitptl/healthcare-api/internal/service/facility"
	"github.com/jwalitptl/healthcare-api/internal/service/patient"
)

var (
	_ facility.FacilityService = (*FacilityService)(nil)
	_ patient.PatientService   = (*PatientService)(nil)
	_ audit.AuditService       = (*AuditService)(nil)
)

type FacilityService struct {
	mock.Mock
}

func (m *FacilityService) List(ctx context.Context, page model.Pagination, name, facilityType string) (model.Page[model.FacilityView], error) {
	args := m.Called(ctx, page, name, facilityType)
	return args.Get(0).(model.Page[model.FacilityView]), args.Error(1)
}

func (m *FacilityService) GetByID(ctx context.Context, id int64) (model.FacilityView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.FacilityView), args.Error(1)
}

func (m *FacilityService) Create(ctx context.Context, in model.FacilityInput) (model.FacilityView, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.FacilityView), args.Error(1)
}

func (m *FacilityService) Update(ctx context.Context, id int64, in model.FacilityInput) (model.FacilityView, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.FacilityView), args.Error(1)
}

func (m *FacilityService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FacilityService) ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]model.FacilityView, error) {
	args := m.Called(ctx, threshold)
	views, _ := args.Get(0).([]model.FacilityView)
	return views, args.Error(1)
}

type PatientService struct {
	mock.Mock
}

func (m *PatientService) List(ctx context.Context, page model.Pagination, filters model.PatientFilters) (model.Page[model.PatientView], error) {
	args := m.Called(ctx, page, filters)
	return args.Get(0).(model.Page[model.PatientView]), args.Error(1)
}

func (m *PatientService) GetByID(ctx context.Context, id int64) (model.PatientView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.PatientView), args.Error(1)
}

func (m *PatientService) ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) (model.Page[model.PatientView], error) {
	args := m.Called(ctx, facilityID, page)
	return args.Get(0).(model.Page[model.PatientView]), args.Error(1)
}

func (m *PatientService) Create(ctx context.Context, in model.PatientInput) (model.PatientView, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.PatientView), args.Error(1)
}

func (m *PatientService) Update(ctx context.Context, id int64, in model.PatientInput) (model.PatientView, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.PatientView), args.Error(1)
}

func (m *PatientService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type AuditService struct {
	mock.Mock
}

func (m *AuditService) ListAll(ctx context.Context, page model.Pagination, sort model.SortOrder) (model.Page[*model.AuditLog], error) {
	args := m.Called(ctx, page, sort)
	return args.Get(0).(model.Page[*model.AuditLog]), args.Error(1)
}

func (m *AuditService) ListByEntityType(ctx context.Context, entityType string) ([]*model.AuditLog, error) {
	return m.logs(m.Called(ctx, entityType))
}

func (m *AuditService) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	return m.logs(m.Called(ctx, entityType, entityID))
}

func (m *AuditService) EntityHistory(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	return m.logs(m.Called(ctx, entityType, entityID))
}

func (m *AuditService) ListByAction(ctx context.Context, action string) ([]*model.AuditLog, error) {
	return m.logs(m.Called(ctx, action))
}

func (m *AuditService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.AuditLog, error) {
	return m.logs(m.Called(ctx, start, end))
}

func (m *AuditService) Export(ctx context.Context, filter model.AuditFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *AuditService) logs(args mock.Arguments) ([]*model.AuditLog, error) {
	logs, _ := args.Get(0).([]*model.AuditLog)
	return logs, args.Error(1)
}
