package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
	"github.com/jwalitptl/healthcare-api/internal/service/audit"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/validator"
)

const entityName = model.AuditEntityPatient

var inputMessages = validator.Messages{
	"facility_id.required":   "Facility ID is required",
	"first_name.notblank":    "First name is required",
	"first_name.max":         "First name must be less than 100 characters",
	"last_name.notblank":     "Last name is required",
	"last_name.max":          "Last name must be less than 100 characters",
	"date_of_birth.required": "Date of birth is required",
	"gender.notblank":        "Gender is required",
	"phone_number.phone":     "Invalid phone number",
	"email.email":            "Invalid email format",
}

// PatientService is the patient lifecycle contract used by handlers and the
// query router.
type PatientService interface {
	List(ctx context.Context, page model.Pagination, filters model.PatientFilters) (model.Page[model.PatientView], error)
	GetByID(ctx context.Context, id int64) (model.PatientView, error)
	ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) (model.Page[model.PatientView], error)
	Create(ctx context.Context, in model.PatientInput) (model.PatientView, error)
	Update(ctx context.Context, id int64, in model.PatientInput) (model.PatientView, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo       repository.PatientRepository
	facilities repository.FacilityRepository
	tx         repository.Transactor
	auditor    audit.Recorder
	validate   *validator.Validator
	logger     zerolog.Logger
}

func NewService(
	repo repository.PatientRepository,
	facilities repository.FacilityRepository,
	tx repository.Transactor,
	auditor audit.Recorder,
	validate *validator.Validator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		facilities: facilities,
		tx:         tx,
		auditor:    auditor,
		validate:   validate,
		logger:     logger.With().Str("service", "patient").Logger(),
	}
}

// List returns active patients. At most one filter is applied: search wins
// over date of birth, which wins over gender.
func (s *Service) List(ctx context.Context, page model.Pagination, filters model.PatientFilters) (model.Page[model.PatientView], error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, effectiveFilter(filters), page)
	if err != nil {
		return model.Page[model.PatientView]{}, s.failure("retrieve", err)
	}
	return model.NewPage(model.ToPatientViews(items), page, total), nil
}

func effectiveFilter(f model.PatientFilters) model.PatientFilters {
	switch {
	case strings.TrimSpace(f.Search) != "":
		return model.PatientFilters{Search: strings.TrimSpace(f.Search)}
	case f.DateOfBirth != nil:
		return model.PatientFilters{DateOfBirth: f.DateOfBirth}
	case strings.TrimSpace(f.Gender) != "":
		return model.PatientFilters{Gender: strings.TrimSpace(f.Gender)}
	}
	return model.PatientFilters{}
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.PatientView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.PatientView{}, s.mapError("retrieve", id, err)
	}
	return model.ToPatientView(p), nil
}

// ListByFacility returns the active patients of an active facility. An
// unpaged request returns every patient on one page.
func (s *Service) ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) (model.Page[model.PatientView], error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return model.Page[model.PatientView]{}, s.mapError("retrieve", 0, err)
	}
	if !page.IsUnpaged() {
		page = page.Normalize()
	}
	items, total, err := s.repo.ListByFacility(ctx, facilityID, page)
	if err != nil {
		return model.Page[model.PatientView]{}, s.failure("retrieve", err)
	}
	return model.NewPage(model.ToPatientViews(items), page, total), nil
}

func (s *Service) Create(ctx context.Context, in model.PatientInput) (model.PatientView, error) {
	if err := s.validateInput(in); err != nil {
		return model.PatientView{}, err
	}

	patient := &model.Patient{}
	model.ApplyPatientInput(patient, in)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireFacility(ctx, patient.FacilityID); err != nil {
			return err
		}
		if err := s.checkDuplicates(ctx, patient, 0); err != nil {
			return err
		}
		return s.repo.Create(ctx, patient)
	})
	if err != nil {
		return model.PatientView{}, s.mapError("create", 0, err)
	}

	s.auditor.Record(ctx, entityName, patient.ID, model.AuditActionCreate, nil, patient)
	s.logger.Info().Int64("patient_id", patient.ID).Int64("facility_id", patient.FacilityID).Msg("patient created")
	return model.ToPatientView(patient), nil
}

func (s *Service) Update(ctx context.Context, id int64, in model.PatientInput) (model.PatientView, error) {
	if err := s.validateInput(in); err != nil {
		return model.PatientView{}, err
	}

	var before model.Patient
	var patient *model.Patient
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		patient, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before = *patient

		model.ApplyPatientInput(patient, in)

		if err := s.requireFacility(ctx, patient.FacilityID); err != nil {
			return err
		}
		if err := s.checkDuplicates(ctx, patient, id); err != nil {
			return err
		}
		return s.repo.Update(ctx, patient)
	})
	if err != nil {
		return model.PatientView{}, s.mapError("update", id, err)
	}

	s.auditor.Record(ctx, entityName, id, model.AuditActionUpdate, &before, patient)
	return model.ToPatientView(patient), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	var before *model.Patient
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.SoftDelete(ctx, id)
	})
	if err != nil {
		return s.mapError("delete", id, err)
	}

	s.auditor.Record(ctx, entityName, id, model.AuditActionDelete, before, nil)
	s.logger.Info().Int64("patient_id", id).Msg("patient deleted")
	return nil
}

func (s *Service) validateInput(in model.PatientInput) error {
	return s.validate.Struct(in, entityName, inputMessages)
}

func (s *Service) requireFacility(ctx context.Context, facilityID int64) error {
	exists, err := s.facilities.Exists(ctx, facilityID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.FacilityNotFound(facilityID)
	}
	return nil
}

// checkDuplicates looks up every unique value of p among other active
// patients and reports all collisions in one error.
func (s *Service) checkDuplicates(ctx context.Context, p *model.Patient, excludeID int64) error {
	var collisions []model.UniqueValue
	for _, v := range p.UniqueValues() {
		exists, err := s.repo.ExistsByField(ctx, v.Field, v.Value, excludeID)
		if err != nil {
			return err
		}
		if exists {
			collisions = append(collisions, v)
		}
	}
	if len(collisions) == 0 {
		return nil
	}
	return duplicate(collisions)
}

func duplicate(collisions []model.UniqueValue) error {
	parts := make([]string, 0, len(collisions))
	for _, c := range collisions {
		parts = append(parts, fmt.Sprintf("%s '%s'", c.Field.Label(), c.Value))
	}
	return duplicateMessage(joinList(parts))
}

func duplicateMessage(what string) error {
	return apperrors.Duplicate(fmt.Sprintf(
		"Another patient record exists with the same %s. Please verify the patient details or contact support if you need to merge records.",
		what), entityName)
}

// joinList joins with ", " and uses " and " before the last item.
func joinList(parts []string) string {
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func (s *Service) mapError(op string, id int64, err error) error {
	if apperrors.Passthrough(err) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.PatientNotFound(id)
	}
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		// The store does not report the conflicting value, only the index.
		if field, ok := repository.PatientConstraintFields[dup.Constraint]; ok {
			return duplicateMessage(field.Label())
		}
		return duplicateMessage("details")
	}
	return s.failure(op, err)
}

func (s *Service) failure(op string, err error) error {
	s.logger.Error().Err(err).Str("operation", op).Msg("patient operation failed")
	return apperrors.ServiceFailure(op, entityName, err)
}
