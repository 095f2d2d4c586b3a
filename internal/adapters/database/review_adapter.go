package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":          review.ID,
		"comment":     review.Comment,
		"user_id":     review.UserID,
		"facility_id": review.FacilityID,
		"created_at":  review.CreatedAt,
		"updated_at":  review.UpdatedAt,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}

	return nil
}

func (a *ReviewAdapter) selectReviews() *goqu.SelectDataset {
	return a.db.Select(
		goqu.I("r.id"), goqu.I("r.comment"), goqu.I("r.user_id"), goqu.I("r.facility_id"),
		goqu.I("r.created_at"), goqu.I("r.updated_at"),
		goqu.I("f.name").As("facility_name"), goqu.I("f.address").As("facility_address"),
		goqu.I("f.type_id").As("facility_type_id"), goqu.I("f.photo").As("facility_photo"),
		goqu.I("u.username"), goqu.I("u.photo").As("user_photo"),
	).From(goqu.T("reviews").As("r")).
		Join(
			goqu.T("facilities").As("f"),
			goqu.On(goqu.Ex{"r.facility_id": goqu.I("f.id")}),
		).
		Join(
			goqu.T("users").As("u"),
			goqu.On(goqu.Ex{"r.user_id": goqu.I("u.id")}),
		)
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	var facilityName, facilityAddress, facilityTypeID, username string
	var facilityPhoto, userPhoto sql.NullString

	err := row.Scan(
		&review.ID,
		&review.Comment,
		&review.UserID,
		&review.FacilityID,
		&review.CreatedAt,
		&review.UpdatedAt,
		&facilityName,
		&facilityAddress,
		&facilityTypeID,
		&facilityPhoto,
		&username,
		&userPhoto,
	)
	if err != nil {
		return nil, err
	}

	facility := &entities.Facility{
		ID:      review.FacilityID,
		TypeID:  facilityTypeID,
		Name:    facilityName,
		Address: facilityAddress,
	}
	if facilityPhoto.Valid {
		value := facilityPhoto.String
		facility.Photo = &value
	}
	review.Facility = facility

	user := &entities.User{
		ID:       review.UserID,
		Username: username,
	}
	if userPhoto.Valid {
		value := userPhoto.String
		user.Photo = &value
	}
	review.User = user

	return review, nil
}

// GetByID retrieves a review by ID with facility and user embedded
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query, args, err := a.selectReviews().
		Where(goqu.Ex{"r.id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}

	return review, nil
}

// Update persists a review's mutable columns. The facility_id column is
// written too, so a re-targeted review ends up under its new facility.
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Update("reviews").
		Set(goqu.Record{
			"comment":     review.Comment,
			"facility_id": review.FacilityID,
			"updated_at":  review.UpdatedAt,
		}).
		Where(goqu.Ex{"id": review.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update review", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", review.ID))
	}

	return nil
}

// Delete deletes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("reviews").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete review", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}

	return nil
}

// List retrieves all reviews with facility and user embedded
func (a *ReviewAdapter) List(ctx context.Context) ([]*entities.Review, error) {
	return a.list(ctx, nil)
}

// ListByFacility retrieves reviews for a facility
func (a *ReviewAdapter) ListByFacility(ctx context.Context, facilityID string) ([]*entities.Review, error) {
	return a.list(ctx, goqu.Ex{"r.facility_id": facilityID})
}

func (a *ReviewAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Review, error) {
	ds := a.selectReviews().Order(goqu.I("r.created_at").Desc())
	if where != nil {
		ds = ds.Where(where)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read reviews", err)
	}

	return reviews, nil
}
