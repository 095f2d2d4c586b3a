package repositories

import (
	"context"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// FacilityRepository defines the interface for facility data operations
type FacilityRepository interface {
	// Create creates a new facility
	Create(ctx context.Context, facility *entities.Facility) error

	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// Update updates a facility
	Update(ctx context.Context, facility *entities.Facility) error

	// Delete deletes a facility
	Delete(ctx context.Context, id string) error

	// List retrieves facilities with filters. An empty result is an empty
	// slice, never an error.
	List(ctx context.Context, filter FacilityFilter) ([]*entities.Facility, error)

	// CountByType returns the number of facilities classified against a type
	CountByType(ctx context.Context, typeID string) (int, error)
}

// FacilitySearchRepository defines the interface for the facility search
// index (Typesense).
type FacilitySearchRepository interface {
	// Search queries the index
	Search(ctx context.Context, params SearchParams) ([]*entities.Facility, error)

	// Index upserts a facility document
	Index(ctx context.Context, facility *entities.Facility) error

	// Delete removes a facility document
	Delete(ctx context.Context, id string) error
}

// FacilityFilter defines filters for listing facilities
type FacilityFilter struct {
	TypeID string
	Query  string
	Limit  int
	Offset int
}

// SearchParams defines parameters for facility search
type SearchParams struct {
	Query  string
	TypeID string
	Limit  int
	Offset int
}
