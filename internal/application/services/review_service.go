package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// ReviewService handles business logic for facility reviews
type ReviewService struct {
	repo         repositories.ReviewRepository
	facilityRepo repositories.FacilityRepository
	resolver     *KindResolver
}

// NewReviewService creates a new review service
func NewReviewService(repo repositories.ReviewRepository, facilityRepo repositories.FacilityRepository, resolver *KindResolver) *ReviewService {
	return &ReviewService{
		repo:         repo,
		facilityRepo: facilityRepo,
		resolver:     resolver,
	}
}

// ReviewPatch carries the fields of a partial review update. Nil fields are
// left untouched.
type ReviewPatch struct {
	Comment    *string `json:"comment"`
	FacilityID *string `json:"facilityId"`
}

// Create creates a review against a facility addressed by kind tag and id.
// The tag is checked before the facility.
func (s *ReviewService) Create(ctx context.Context, tag, facilityID, userID string, input ReviewInput) (*entities.Review, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	facility, err := s.resolver.ResolveFacility(ctx, tag, facilityID)
	if err != nil {
		return nil, err
	}

	review := &entities.Review{
		ID:         uuid.New().String(),
		Comment:    input.Comment,
		UserID:     userID,
		FacilityID: facility.ID,
		Facility:   facility,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// CreateForFacility creates a review against a facility addressed by id
// alone. The facility must exist.
func (s *ReviewService) CreateForFacility(ctx context.Context, facilityID, userID string, input ReviewInput) (*entities.Review, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if facilityID == "" {
		return nil, apperrors.NewValidationError("facilityId is required")
	}

	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	review := &entities.Review{
		ID:         uuid.New().String(),
		Comment:    input.Comment,
		UserID:     userID,
		FacilityID: facility.ID,
		Facility:   facility,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// GetByID retrieves a review by ID
func (s *ReviewService) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all reviews
func (s *ReviewService) List(ctx context.Context) ([]*entities.Review, error) {
	return s.repo.List(ctx)
}

// ListByFacility retrieves the reviews of a facility addressed by kind tag
// and id.
func (s *ReviewService) ListByFacility(ctx context.Context, tag, facilityID string) ([]*entities.Review, error) {
	facility, err := s.resolver.ResolveFacility(ctx, tag, facilityID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByFacility(ctx, facility.ID)
}

// Update applies a partial update to a review. Only the author or an admin
// may edit; a re-targeted facility is verified to exist.
func (s *ReviewService) Update(ctx context.Context, id string, actor *entities.User, patch ReviewPatch) (*entities.Review, error) {
	if patch.Comment != nil && *patch.Comment == "" {
		return nil, apperrors.NewValidationError("comment is required")
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canModifyReview(actor, review) {
		return nil, apperrors.NewUnauthorizedError("review can only be edited by its author")
	}

	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	if patch.FacilityID != nil && *patch.FacilityID != review.FacilityID {
		facility, err := s.facilityRepo.GetByID(ctx, *patch.FacilityID)
		if err != nil {
			return nil, err
		}
		review.FacilityID = facility.ID
		review.Facility = facility
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete deletes a review. Only the author or an admin may delete.
func (s *ReviewService) Delete(ctx context.Context, id string, actor *entities.User) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !canModifyReview(actor, review) {
		return apperrors.NewUnauthorizedError("review can only be deleted by its author")
	}

	return s.repo.Delete(ctx, id)
}

func canModifyReview(actor *entities.User, review *entities.Review) bool {
	if actor == nil {
		return false
	}
	return actor.Role == entities.RoleAdmin || actor.ID == review.UserID
}
