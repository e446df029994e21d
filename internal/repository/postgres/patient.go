package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
)

const patientColumns = `id, facility_id, first_name, last_name, date_of_birth, gender, address,
	phone_number, email, insurance_number, deleted, created_at, updated_at`

var uniqueColumns = map[model.UniqueField]string{
	model.UniqueEmail:           "email",
	model.UniquePhoneNumber:     "phone_number",
	model.UniqueInsuranceNumber: "insurance_number",
}

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			facility_id, first_name, last_name, date_of_birth, gender, address,
			phone_number, email, insurance_number, deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
		RETURNING id
	`
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	patient.Deleted = false

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		patient.FacilityID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Address,
		patient.PhoneNumber,
		patient.Email,
		patient.InsuranceNumber,
		patient.CreatedAt,
		patient.UpdatedAt,
	).Scan(&patient.ID)
	return mapError("create patient", err)
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 AND ` + activeOnly("")
	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.conn(ctx), &patient, query, id); err != nil {
		return nil, mapError("get patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			facility_id = $1, first_name = $2, last_name = $3, date_of_birth = $4,
			gender = $5, address = $6, phone_number = $7, email = $8,
			insurance_number = $9, updated_at = $10
		WHERE id = $11 AND ` + activeOnly("")
	patient.UpdatedAt = time.Now().UTC()

	res, err := r.conn(ctx).ExecContext(ctx, query,
		patient.FacilityID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Address,
		patient.PhoneNumber,
		patient.Email,
		patient.InsuranceNumber,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return mapError("update patient", err)
	}
	return requireAffected(res, "update patient")
}

func (r *patientRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE patients SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND ` + activeOnly("")
	res, err := r.conn(ctx).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError("delete patient", err)
	}
	return requireAffected(res, "delete patient")
}

// List applies every filter that is set. Callers choose which filters to pass.
func (r *patientRepository) List(ctx context.Context, filters model.PatientFilters, page model.Pagination) ([]*model.Patient, int64, error) {
	conditions := []string{activeOnly("")}
	var args []interface{}

	if filters.Search != "" {
		args = append(args, likePattern(filters.Search))
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", len(args), len(args)))
	}
	if filters.DateOfBirth != nil {
		args = append(args, *filters.DateOfBirth)
		conditions = append(conditions, fmt.Sprintf("date_of_birth = $%d", len(args)))
	}
	if filters.Gender != "" {
		args = append(args, filters.Gender)
		conditions = append(conditions, fmt.Sprintf("gender = $%d", len(args)))
	}

	return r.page(ctx, conditions, args, page, "list patients")
}

func (r *patientRepository) ListByFacility(ctx context.Context, facilityID int64, page model.Pagination) ([]*model.Patient, int64, error) {
	conditions := []string{"facility_id = $1", activeOnly("")}
	return r.page(ctx, conditions, []interface{}{facilityID}, page, "list facility patients")
}

func (r *patientRepository) ExistsByField(ctx context.Context, field model.UniqueField, value string, excludeID int64) (bool, error) {
	column, ok := uniqueColumns[field]
	if !ok {
		return false, fmt.Errorf("unknown unique field %q", field)
	}
	query := `SELECT EXISTS(SELECT 1 FROM patients WHERE ` + column + ` = $1 AND id <> $2 AND ` + activeOnly("") + `)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, value, excludeID); err != nil {
		return false, mapError("check patient "+column, err)
	}
	return exists, nil
}

func (r *patientRepository) page(ctx context.Context, conditions []string, args []interface{}, page model.Pagination, op string) ([]*model.Patient, int64, error) {
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, "SELECT COUNT(*) FROM patients"+where, args...); err != nil {
		return nil, 0, mapError(op, err)
	}

	query := `SELECT ` + patientColumns + ` FROM patients` + where + ` ORDER BY id ASC`
	if !page.IsUnpaged() {
		args = append(args, page.Limit(), page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var patients []*model.Patient
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &patients, query, args...); err != nil {
		return nil, 0, mapError(op, err)
	}
	return patients, total, nil
}
