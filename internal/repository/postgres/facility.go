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

const facilityColumns = `f.id, f.name, f.type, f.address, f.deleted, f.created_at, f.updated_at`

const patientCountExpr = `(SELECT COUNT(*) FROM patients p WHERE p.facility_id = f.id AND p.deleted = FALSE)`

type facilityRepository struct {
	BaseRepository
}

func NewFacilityRepository(base BaseRepository) repository.FacilityRepository {
	return &facilityRepository{base}
}

func (r *facilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	query := `
		INSERT INTO facilities (name, type, address, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING id
	`
	now := time.Now().UTC()
	facility.CreatedAt = now
	facility.UpdatedAt = now
	facility.Deleted = false

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		facility.Name,
		facility.Type,
		facility.Address,
		facility.CreatedAt,
		facility.UpdatedAt,
	).Scan(&facility.ID)
	return mapError("create facility", err)
}

func (r *facilityRepository) GetByID(ctx context.Context, id int64) (*model.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities f WHERE f.id = $1 AND ` + activeOnly("f")
	var facility model.Facility
	if err := sqlx.GetContext(ctx, r.conn(ctx), &facility, query, id); err != nil {
		return nil, mapError("get facility", err)
	}
	return &facility, nil
}

func (r *facilityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM facilities WHERE id = $1 AND ` + activeOnly("") + `)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, id); err != nil {
		return false, mapError("check facility", err)
	}
	return exists, nil
}

func (r *facilityRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM facilities
			WHERE lower(name) = lower($1) AND id <> $2 AND ` + activeOnly("") + `
		)
	`
	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, strings.TrimSpace(name), excludeID); err != nil {
		return false, mapError("check facility name", err)
	}
	return exists, nil
}

func (r *facilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	query := `
		UPDATE facilities SET name = $1, type = $2, address = $3, updated_at = $4
		WHERE id = $5 AND ` + activeOnly("")
	facility.UpdatedAt = time.Now().UTC()

	res, err := r.conn(ctx).ExecContext(ctx, query,
		facility.Name,
		facility.Type,
		facility.Address,
		facility.UpdatedAt,
		facility.ID,
	)
	if err != nil {
		return mapError("update facility", err)
	}
	return requireAffected(res, "update facility")
}

func (r *facilityRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE facilities SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND ` + activeOnly("")
	res, err := r.conn(ctx).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError("delete facility", err)
	}
	return requireAffected(res, "delete facility")
}

func (r *facilityRepository) CountPatients(ctx context.Context, id int64) (int64, error) {
	query := `SELECT COUNT(*) FROM patients WHERE facility_id = $1 AND ` + activeOnly("")
	var count int64
	if err := sqlx.GetContext(ctx, r.conn(ctx), &count, query, id); err != nil {
		return 0, mapError("count patients", err)
	}
	return count, nil
}

func (r *facilityRepository) List(ctx context.Context, filters model.FacilityFilters, page model.Pagination) ([]*model.FacilityWithCount, int64, error) {
	conditions := []string{activeOnly("f")}
	var args []interface{}

	if filters.Name != "" {
		args = append(args, likePattern(filters.Name))
		conditions = append(conditions, fmt.Sprintf("f.name ILIKE $%d", len(args)))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		conditions = append(conditions, fmt.Sprintf("f.type = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, "SELECT COUNT(*) FROM facilities f"+where, args...); err != nil {
		return nil, 0, mapError("count facilities", err)
	}

	query := `SELECT ` + facilityColumns + `, ` + patientCountExpr + ` AS patient_count FROM facilities f` + where + ` ORDER BY f.id ASC`
	if !page.IsUnpaged() {
		args = append(args, page.Limit(), page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var facilities []*model.FacilityWithCount
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &facilities, query, args...); err != nil {
		return nil, 0, mapError("list facilities", err)
	}
	return facilities, total, nil
}

func (r *facilityRepository) ListWithPatientCountAbove(ctx context.Context, threshold int64) ([]*model.FacilityWithCount, error) {
	query := `
		SELECT * FROM (
			SELECT ` + facilityColumns + `, ` + patientCountExpr + ` AS patient_count
			FROM facilities f
			WHERE ` + activeOnly("f") + `
		) counted
		WHERE counted.patient_count > $1
		ORDER BY counted.patient_count DESC, counted.id ASC
	`
	var facilities []*model.FacilityWithCount
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &facilities, query, threshold); err != nil {
		return nil, mapError("list facilities by patient count", err)
	}
	return facilities, nil
}
