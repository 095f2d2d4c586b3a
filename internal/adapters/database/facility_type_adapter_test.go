package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	return db, mock
}

var facilityTypeColumns = []string{
	"id", "name", "icon", "marker", "allowed_sub_facilities", "created_at", "updated_at",
}

func TestFacilityTypeAdapter_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM "facility_types" WHERE \("id" = .+\)`).
		WillReturnRows(sqlmock.NewRows(facilityTypeColumns).
			AddRow("type-1", "Kesehatan", "kesehatan_icon.png", nil, `["IGD","Apotek"]`, now, now))

	facilityType, err := adapter.GetByID(context.Background(), "type-1")
	assert.NoError(t, err)
	assert.Equal(t, "Kesehatan", facilityType.Name)
	assert.NotNil(t, facilityType.Icon)
	assert.Equal(t, "kesehatan_icon.png", *facilityType.Icon)
	assert.Nil(t, facilityType.Marker)
	assert.Equal(t, []string{"IGD", "Apotek"}, facilityType.AllowedSubFacilities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityTypeAdapter_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectQuery(`SELECT .+ FROM "facility_types"`).
		WillReturnRows(sqlmock.NewRows(facilityTypeColumns))

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFacilityTypeAdapter_FindByNameFold(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM "facility_types" WHERE \(lower\(name\) = lower\(.+\)\)`).
		WillReturnRows(sqlmock.NewRows(facilityTypeColumns).
			AddRow("type-1", "Kesehatan", nil, nil, `[]`, now, now))

	facilityType, err := adapter.FindByNameFold(context.Background(), "KESEHATAN")
	assert.NoError(t, err)
	assert.Equal(t, "Kesehatan", facilityType.Name)
	assert.Empty(t, facilityType.AllowedSubFacilities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityTypeAdapter_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`INSERT INTO "facility_types"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.FacilityType{
		ID:                   "type-1",
		Name:                 "Pendidikan",
		AllowedSubFacilities: []string{"Perpustakaan"},
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityTypeAdapter_Create_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`INSERT INTO "facility_types"`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Create(context.Background(), &entities.FacilityType{
		ID:   "type-2",
		Name: "pendidikan",
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestFacilityTypeAdapter_Update_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`UPDATE "facility_types" SET .+ WHERE \("id" = .+\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Update(context.Background(), &entities.FacilityType{ID: "missing", Name: "X"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFacilityTypeAdapter_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`DELETE FROM "facility_types" WHERE \("id" = .+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, adapter.Delete(context.Background(), "type-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityTypeAdapter_Delete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`DELETE FROM "facility_types"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Delete(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFacilityTypeAdapter_List(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM "facility_types" ORDER BY "name" ASC`).
		WillReturnRows(sqlmock.NewRows(facilityTypeColumns).
			AddRow("type-2", "Kesehatan", nil, nil, `["IGD"]`, now, now).
			AddRow("type-1", "Pendidikan", nil, nil, `[]`, now, now))

	facilityTypes, err := adapter.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, facilityTypes, 2)
	assert.Equal(t, "Kesehatan", facilityTypes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityTypeAdapter_ListSummaries(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	adapter := NewFacilityTypeAdapter(postgres.NewClientWithDB(db))

	mock.ExpectQuery(`SELECT "id", "name" FROM "facility_types" ORDER BY "name" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("type-2", "Kesehatan").
			AddRow("type-1", "Pendidikan"))

	summaries, err := adapter.ListSummaries(context.Background())
	assert.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "type-2", summaries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
