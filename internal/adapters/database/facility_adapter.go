package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new facility
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	subFacilities, err := json.Marshal(facility.SubFacilities)
	if err != nil {
		return apperrors.NewInternalError("failed to encode sub facilities", err)
	}

	record := goqu.Record{
		"id":             facility.ID,
		"type_id":        facility.TypeID,
		"name":           facility.Name,
		"open_time":      facility.OpenTime,
		"close_time":     facility.CloseTime,
		"address":        facility.Address,
		"photo":          nullString(facility.Photo),
		"latitude":       facility.Location.Latitude,
		"longitude":      facility.Location.Longitude,
		"description":    facility.Description,
		"sub_facilities": string(subFacilities),
		"created_at":     facility.CreatedAt,
		"updated_at":     facility.UpdatedAt,
	}

	query, args, err := a.db.Insert("facilities").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create facility", err)
	}

	return nil
}

var facilityColumns = []interface{}{
	goqu.I("f.id"), goqu.I("f.type_id"), goqu.I("f.name"),
	goqu.I("f.open_time"), goqu.I("f.close_time"), goqu.I("f.address"),
	goqu.I("f.photo"), goqu.I("f.latitude"), goqu.I("f.longitude"),
	goqu.I("f.description"), goqu.I("f.sub_facilities"),
	goqu.I("f.created_at"), goqu.I("f.updated_at"),
	goqu.I("t.name").As("type_name"),
}

func (a *FacilityAdapter) selectFacilities() *goqu.SelectDataset {
	return a.db.Select(facilityColumns...).
		From(goqu.T("facilities").As("f")).
		Join(
			goqu.T("facility_types").As("t"),
			goqu.On(goqu.Ex{"f.type_id": goqu.I("t.id")}),
		)
}

func scanFacility(row rowScanner) (*entities.Facility, error) {
	facility := &entities.Facility{}
	var photo sql.NullString
	var subFacilities []byte
	var typeName string

	err := row.Scan(
		&facility.ID,
		&facility.TypeID,
		&facility.Name,
		&facility.OpenTime,
		&facility.CloseTime,
		&facility.Address,
		&photo,
		&facility.Location.Latitude,
		&facility.Location.Longitude,
		&facility.Description,
		&subFacilities,
		&facility.CreatedAt,
		&facility.UpdatedAt,
		&typeName,
	)
	if err != nil {
		return nil, err
	}

	if photo.Valid {
		value := photo.String
		facility.Photo = &value
	}

	facility.SubFacilities = []string{}
	if len(subFacilities) > 0 {
		if err := json.Unmarshal(subFacilities, &facility.SubFacilities); err != nil {
			return nil, fmt.Errorf("failed to decode sub facilities: %w", err)
		}
	}

	facility.Type = &entities.FacilityType{ID: facility.TypeID, Name: typeName}

	return facility, nil
}

// GetByID retrieves a facility by ID with its type embedded
func (a *FacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	query, args, err := a.selectFacilities().
		Where(goqu.Ex{"f.id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility, err := scanFacility(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility", err)
	}

	return facility, nil
}

// Update updates a facility
func (a *FacilityAdapter) Update(ctx context.Context, facility *entities.Facility) error {
	subFacilities, err := json.Marshal(facility.SubFacilities)
	if err != nil {
		return apperrors.NewInternalError("failed to encode sub facilities", err)
	}

	record := goqu.Record{
		"type_id":        facility.TypeID,
		"name":           facility.Name,
		"open_time":      facility.OpenTime,
		"close_time":     facility.CloseTime,
		"address":        facility.Address,
		"photo":          nullString(facility.Photo),
		"latitude":       facility.Location.Latitude,
		"longitude":      facility.Location.Longitude,
		"description":    facility.Description,
		"sub_facilities": string(subFacilities),
		"updated_at":     facility.UpdatedAt,
	}

	query, args, err := a.db.Update("facilities").
		Set(record).
		Where(goqu.Ex{"id": facility.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update facility", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", facility.ID))
	}

	return nil
}

// Delete deletes a facility. Reviews referencing it are removed by the
// database through the cascading foreign key.
func (a *FacilityAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("facilities").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete facility", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}

	return nil
}

// List retrieves facilities with optional filters
func (a *FacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	ds := a.selectFacilities().Order(goqu.I("f.created_at").Desc())

	if filter.TypeID != "" {
		ds = ds.Where(goqu.Ex{"f.type_id": filter.TypeID})
	}
	if filter.Query != "" {
		ds = ds.Where(goqu.I("f.name").ILike("%" + filter.Query + "%"))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.Facility{}
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read facilities", err)
	}

	return facilities, nil
}

// CountByType returns the number of facilities classified against a type
func (a *FacilityAdapter) CountByType(ctx context.Context, typeID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("facilities").
		Where(goqu.Ex{"type_id": typeID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count facilities", err)
	}

	return count, nil
}
