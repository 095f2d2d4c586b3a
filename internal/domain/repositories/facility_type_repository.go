package repositories

import (
	"context"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// FacilityTypeRepository defines the interface for facility taxonomy operations
type FacilityTypeRepository interface {
	// Create creates a new facility type
	Create(ctx context.Context, facilityType *entities.FacilityType) error

	// GetByID retrieves a facility type by ID
	GetByID(ctx context.Context, id string) (*entities.FacilityType, error)

	// GetByName retrieves a facility type by exact name match. This is the
	// kind-resolution lookup; it is case-sensitive.
	GetByName(ctx context.Context, name string) (*entities.FacilityType, error)

	// FindByNameFold retrieves a facility type whose name matches
	// case-insensitively. Used for duplicate checks.
	FindByNameFold(ctx context.Context, name string) (*entities.FacilityType, error)

	// Update updates a facility type
	Update(ctx context.Context, facilityType *entities.FacilityType) error

	// Delete deletes a facility type
	Delete(ctx context.Context, id string) error

	// List retrieves all facility types
	List(ctx context.Context) ([]*entities.FacilityType, error)

	// ListSummaries retrieves the id+name projection of all facility types
	ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error)
}
