package facility

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
	"github.com/jwalitptl/healthcare-api/internal/service/audit"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/validator"
)

const entityName = model.AuditEntityFacility

var inputMessages = validator.Messages{
	"name.notblank":    "Facility name is required",
	"name.max":         "Facility name must be less than 255 characters",
	"type.notblank":    "Facility type is required",
	"address.notblank": "Facility address is required",
}

// FacilityService is the facility lifecycle contract used by handlers and the
// query router.
type FacilityService interface {
	List(ctx context.Context, page model.Pagination, name, facilityType string) (model.Page[model.FacilityView], error)
	GetByID(ctx context.Context, id int64) (model.FacilityView, error)
	Create(ctx context.Context, in model.FacilityInput) (model.FacilityView, error)
	Update(ctx context.Context, id int64, in model.FacilityInput) (model.FacilityView, error)
	Delete(ctx context.Context, id int64) error
	ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]model.FacilityView, error)
}

type Service struct {
	repo     repository.FacilityRepository
	tx       repository.Transactor
	auditor  audit.Recorder
	validate *validator.Validator
	logger   zerolog.Logger
}

func NewService(
	repo repository.FacilityRepository,
	tx repository.Transactor,
	auditor audit.Recorder,
	validate *validator.Validator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		auditor:  auditor,
		validate: validate,
		logger:   logger.With().Str("service", "facility").Logger(),
	}
}

// List returns active facilities with their patient counts. name is a
// case-insensitive substring filter and facilityType an exact one.
func (s *Service) List(ctx context.Context, page model.Pagination, name, facilityType string) (model.Page[model.FacilityView], error) {
	filters := model.FacilityFilters{Name: name}
	if facilityType != "" {
		t, ok := model.ParseFacilityType(facilityType)
		if !ok {
			return model.Page[model.FacilityView]{}, apperrors.Validation("type", "unknown facility type "+facilityType, entityName)
		}
		filters.Type = string(t)
	}

	page = page.Normalize()
	items, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return model.Page[model.FacilityView]{}, s.failure("retrieve", err)
	}
	return model.NewPage(model.ToFacilityViews(items), page, total), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.FacilityView, error) {
	facility, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.FacilityView{}, s.mapError("retrieve", id, "", err)
	}
	count, err := s.repo.CountPatients(ctx, id)
	if err != nil {
		return model.FacilityView{}, s.failure("retrieve", err)
	}
	return model.ToFacilityView(facility, count), nil
}

func (s *Service) Create(ctx context.Context, in model.FacilityInput) (model.FacilityView, error) {
	facilityType, err := s.validateInput(in)
	if err != nil {
		return model.FacilityView{}, err
	}

	facility := &model.Facility{}
	model.ApplyFacilityInput(facility, in, facilityType)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByName(ctx, facility.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return duplicateName(facility.Name)
		}
		return s.repo.Create(ctx, facility)
	})
	if err != nil {
		return model.FacilityView{}, s.mapError("create", 0, facility.Name, err)
	}

	s.auditor.Record(ctx, entityName, facility.ID, model.AuditActionCreate, nil, facility)
	s.logger.Info().Int64("facility_id", facility.ID).Msg("facility created")
	return model.ToFacilityView(facility, 0), nil
}

func (s *Service) Update(ctx context.Context, id int64, in model.FacilityInput) (model.FacilityView, error) {
	facilityType, err := s.validateInput(in)
	if err != nil {
		return model.FacilityView{}, err
	}

	var before model.Facility
	var facility *model.Facility
	var count int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		facility, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before = *facility

		model.ApplyFacilityInput(facility, in, facilityType)

		exists, err := s.repo.ExistsByName(ctx, facility.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return duplicateName(facility.Name)
		}
		if err := s.repo.Update(ctx, facility); err != nil {
			return err
		}
		count, err = s.repo.CountPatients(ctx, id)
		return err
	})
	if err != nil {
		return model.FacilityView{}, s.mapError("update", id, strings.TrimSpace(in.Name), err)
	}

	s.auditor.Record(ctx, entityName, id, model.AuditActionUpdate, &before, facility)
	return model.ToFacilityView(facility, count), nil
}

// Delete soft-deletes the facility. Its patients are left untouched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var before *model.Facility
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.SoftDelete(ctx, id)
	})
	if err != nil {
		return s.mapError("delete", id, "", err)
	}

	s.auditor.Record(ctx, entityName, id, model.AuditActionDelete, before, nil)
	s.logger.Info().Int64("facility_id", id).Msg("facility deleted")
	return nil
}

// ListWithPatientCountAbove returns active facilities with strictly more than
// threshold active patients.
func (s *Service) ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]model.FacilityView, error) {
	items, err := s.repo.ListWithPatientCountAbove(ctx, threshold)
	if err != nil {
		return nil, s.failure("list", err)
	}
	return model.ToFacilityViews(items), nil
}

func (s *Service) validateInput(in model.FacilityInput) (model.FacilityType, error) {
	if err := s.validate.Struct(in, entityName, inputMessages); err != nil {
		return "", err
	}
	t, ok := model.ParseFacilityType(in.Type)
	if !ok {
		return "", apperrors.Validation("type", "unknown facility type "+in.Type, entityName)
	}
	return t, nil
}

func duplicateName(name string) error {
	return apperrors.DuplicateField("name", name, entityName)
}

// mapError keeps domain errors, maps repository errors and wraps the rest.
func (s *Service) mapError(op string, id int64, name string, err error) error {
	if apperrors.Passthrough(err) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.FacilityNotFound(id)
	}
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		return duplicateName(name)
	}
	return s.failure(op, err)
}

func (s *Service) failure(op string, err error) error {
	s.logger.Error().Err(err).Str("operation", op).Msg("facility operation failed")
	return apperrors.ServiceFailure(op, entityName, err)
}
