package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// FacilityTypeAdapter implements the FacilityTypeRepository interface
type FacilityTypeAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilityTypeAdapter creates a new facility type adapter
func NewFacilityTypeAdapter(client *postgres.Client) repositories.FacilityTypeRepository {
	return &FacilityTypeAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// Create creates a new facility type
func (a *FacilityTypeAdapter) Create(ctx context.Context, facilityType *entities.FacilityType) error {
	subFacilities, err := json.Marshal(facilityType.AllowedSubFacilities)
	if err != nil {
		return apperrors.NewInternalError("failed to encode allowed sub facilities", err)
	}

	record := goqu.Record{
		"id":                     facilityType.ID,
		"name":                   facilityType.Name,
		"icon":                   nullString(facilityType.Icon),
		"marker":                 nullString(facilityType.Marker),
		"allowed_sub_facilities": string(subFacilities),
		"created_at":             facilityType.CreatedAt,
		"updated_at":             facilityType.UpdatedAt,
	}

	query, args, err := a.db.Insert("facility_types").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("facility type with name %q already exists", facilityType.Name))
		}
		return apperrors.NewInternalError("failed to create facility type", err)
	}

	return nil
}

// GetByID retrieves a facility type by ID
func (a *FacilityTypeAdapter) GetByID(ctx context.Context, id string) (*entities.FacilityType, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("facility type with id %s not found", id))
}

// GetByName retrieves a facility type by exact name
func (a *FacilityTypeAdapter) GetByName(ctx context.Context, name string) (*entities.FacilityType, error) {
	return a.getOne(ctx, goqu.Ex{"name": name}, fmt.Sprintf("facility type with name %q not found", name))
}

// FindByNameFold retrieves a facility type by case-insensitive name
func (a *FacilityTypeAdapter) FindByNameFold(ctx context.Context, name string) (*entities.FacilityType, error) {
	return a.getOne(ctx,
		goqu.L("lower(name) = lower(?)", name),
		fmt.Sprintf("facility type with name %q not found", name))
}

func (a *FacilityTypeAdapter) getOne(ctx context.Context, where exp.Expression, notFoundMsg string) (*entities.FacilityType, error) {
	query, args, err := a.db.Select(
		"id", "name", "icon", "marker", "allowed_sub_facilities",
		"created_at", "updated_at",
	).From("facility_types").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facilityType, err := scanFacilityType(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility type", err)
	}

	return facilityType, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacilityType(row rowScanner) (*entities.FacilityType, error) {
	facilityType := &entities.FacilityType{}
	var icon, marker sql.NullString
	var subFacilities []byte

	err := row.Scan(
		&facilityType.ID,
		&facilityType.Name,
		&icon,
		&marker,
		&subFacilities,
		&facilityType.CreatedAt,
		&facilityType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if icon.Valid {
		value := icon.String
		facilityType.Icon = &value
	}
	if marker.Valid {
		value := marker.String
		facilityType.Marker = &value
	}

	facilityType.AllowedSubFacilities = []string{}
	if len(subFacilities) > 0 {
		if err := json.Unmarshal(subFacilities, &facilityType.AllowedSubFacilities); err != nil {
			return nil, fmt.Errorf("failed to decode allowed sub facilities: %w", err)
		}
	}

	return facilityType, nil
}

// Update updates a facility type
func (a *FacilityTypeAdapter) Update(ctx context.Context, facilityType *entities.FacilityType) error {
	subFacilities, err := json.Marshal(facilityType.AllowedSubFacilities)
	if err != nil {
		return apperrors.NewInternalError("failed to encode allowed sub facilities", err)
	}

	record := goqu.Record{
		"name":                   facilityType.Name,
		"icon":                   nullString(facilityType.Icon),
		"marker":                 nullString(facilityType.Marker),
		"allowed_sub_facilities": string(subFacilities),
		"updated_at":             facilityType.UpdatedAt,
	}

	query, args, err := a.db.Update("facility_types").
		Set(record).
		Where(goqu.Ex{"id": facilityType.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("facility type with name %q already exists", facilityType.Name))
		}
		return apperrors.NewInternalError("failed to update facility type", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", facilityType.ID))
	}

	return nil
}

// Delete deletes a facility type
func (a *FacilityTypeAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("facility_types").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete facility type", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", id))
	}

	return nil
}

// List retrieves all facility types ordered by name
func (a *FacilityTypeAdapter) List(ctx context.Context) ([]*entities.FacilityType, error) {
	query, args, err := a.db.Select(
		"id", "name", "icon", "marker", "allowed_sub_facilities",
		"created_at", "updated_at",
	).From("facility_types").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facility types", err)
	}
	defer rows.Close()

	facilityTypes := []*entities.FacilityType{}
	for rows.Next() {
		facilityType, err := scanFacilityType(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility type", err)
		}
		facilityTypes = append(facilityTypes, facilityType)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read facility types", err)
	}

	return facilityTypes, nil
}

// ListSummaries retrieves the id and name of all facility types
func (a *FacilityTypeAdapter) ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error) {
	query, args, err := a.db.Select("id", "name").
		From("facility_types").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facility type summaries", err)
	}
	defer rows.Close()

	summaries := []*entities.FacilityTypeSummary{}
	for rows.Next() {
		summary := &entities.FacilityTypeSummary{}
		if err := rows.Scan(&summary.ID, &summary.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility type summary", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read facility type summaries", err)
	}

	return summaries, nil
}

func nullString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
