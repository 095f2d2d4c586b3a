package repositories

import (
	"context"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations. Read paths
// embed the related facility and user via read-time joins.
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review by ID with facility and user embedded
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// Update updates a review
	Update(ctx context.Context, review *entities.Review) error

	// Delete deletes a review
	Delete(ctx context.Context, id string) error

	// List retrieves all reviews with facility and user embedded
	List(ctx context.Context) ([]*entities.Review, error)

	// ListByFacility retrieves reviews for a facility
	ListByFacility(ctx context.Context, facilityID string) ([]*entities.Review, error)
}
