package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, BaseRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewBaseRepository(sqlxDB)
}

var facilityRowColumns = []string{"id", "name", "type", "address", "deleted", "created_at", "updated_at"}

func TestFacilityCreate_ReturnsID(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)

	mock.ExpectQuery(`INSERT INTO facilities`).
		WithArgs("City General Hospital", "HOSPITAL", "123 Main St", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	facility := &model.Facility{Name: "City General Hospital", Type: model.FacilityTypeHospital, Address: "123 Main St"}
	err := repo.Create(context.Background(), facility)

	require.NoError(t, err)
	assert.Equal(t, int64(42), facility.ID)
	assert.False(t, facility.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityCreate_UniqueViolation(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)

	mock.ExpectQuery(`INSERT INTO facilities`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: repository.FacilityNameConstraint})

	err := repo.Create(context.Background(), &model.Facility{Name: "x", Type: model.FacilityTypeClinic, Address: "y"})

	var dup *repository.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, repository.FacilityNameConstraint, dup.Constraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityGetByID_FiltersDeleted(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)

	mock.ExpectQuery(`FROM facilities f WHERE f.id = \$1 AND f.deleted = FALSE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(facilityRowColumns))

	facility, err := repo.GetByID(context.Background(), 7)

	assert.Nil(t, facility)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityGetByID_Found(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)
	now := time.Now()

	mock.ExpectQuery(`FROM facilities f WHERE f.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(facilityRowColumns).
			AddRow(7, "Clinic A", "CLINIC", "1 Road", false, now, now))

	facility, err := repo.GetByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "Clinic A", facility.Name)
	assert.Equal(t, model.FacilityTypeClinic, facility.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityExistsByName_CaseInsensitiveExcludingSelf(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)

	mock.ExpectQuery(`lower\(name\) = lower\(\$1\) AND id <> \$2 AND deleted = FALSE`).
		WithArgs("city general hospital", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByName(context.Background(), " city general hospital ", 3)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilitySoftDelete(t *testing.T) {
	t.Run("flags the row", func(t *testing.T) {
		_, mock, base := setupMockDB(t)
		repo := NewFacilityRepository(base)

		mock.ExpectExec(`UPDATE facilities SET deleted = TRUE`).
			WithArgs(sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SoftDelete(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		_, mock, base := setupMockDB(t)
		repo := NewFacilityRepository(base)

		mock.ExpectExec(`UPDATE facilities SET deleted = TRUE`).
			WithArgs(sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SoftDelete(context.Background(), 5), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFacilityList_FiltersAndPaging(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM facilities f WHERE f.deleted = FALSE AND f.name ILIKE \$1 AND f.type = \$2`).
		WithArgs("%gen\\%%", "HOSPITAL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`AS patient_count FROM facilities f WHERE .* LIMIT \$3 OFFSET \$4`).
		WithArgs("%gen\\%%", "HOSPITAL", 20, 20).
		WillReturnRows(sqlmock.NewRows(append(facilityRowColumns, "patient_count")).
			AddRow(1, "General%", "HOSPITAL", "1 Road", false, now, now, 12))

	items, total, err := repo.List(context.Background(),
		model.FacilityFilters{Name: "gen%", Type: "HOSPITAL"},
		model.Pagination{Page: 2, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(12), items[0].PatientCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityListWithPatientCountAbove(t *testing.T) {
	_, mock, base := setupMockDB(t)
	repo := NewFacilityRepository(base)
	now := time.Now()

	mock.ExpectQuery(`WHERE counted.patient_count > \$1`).
		WithArgs(int64(50)).
		WillReturnRows(sqlmock.NewRows(append(facilityRowColumns, "patient_count")).
			AddRow(2, "Big", "HOSPITAL", "2 Road", false, now, now, 75))

	items, err := repo.ListWithPatientCountAbove(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(75), items[0].PatientCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx(t *testing.T) {
	t.Run("commits and routes queries through the transaction", func(t *testing.T) {
		_, mock, base := setupMockDB(t)
		repo := NewFacilityRepository(base)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE facilities SET deleted = TRUE`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := base.WithinTx(context.Background(), func(ctx context.Context) error {
			return repo.SoftDelete(ctx, 1)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		_, mock, base := setupMockDB(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := base.WithinTx(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls share one transaction", func(t *testing.T) {
		_, mock, base := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := base.WithinTx(context.Background(), func(ctx context.Context) error {
			return base.WithinTx(ctx, func(context.Context) error { return nil })
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
