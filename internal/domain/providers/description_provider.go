package providers

import (
	"context"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// DescriptionProvider generates a facility description from its details
type DescriptionProvider interface {
	// Describe generates a short description for a facility
	Describe(ctx context.Context, req entities.DescriptionRequest) (string, error)
}
