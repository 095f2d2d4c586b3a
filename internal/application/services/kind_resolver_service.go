package services

import (
	"context"
	"fmt"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// KindResolver maps URL kind tags onto the facility taxonomy. A tag is the
// exact name of a facility type; resolution checks the tag before the
// facility, so an unknown tag is always reported as an unknown kind even
// when the facility id is also bad.
type KindResolver struct {
	typeRepo     repositories.FacilityTypeRepository
	facilityRepo repositories.FacilityRepository
}

// NewKindResolver creates a new kind resolver
func NewKindResolver(typeRepo repositories.FacilityTypeRepository, facilityRepo repositories.FacilityRepository) *KindResolver {
	return &KindResolver{
		typeRepo:     typeRepo,
		facilityRepo: facilityRepo,
	}
}

// ResolveKind resolves a kind tag to its facility type
func (r *KindResolver) ResolveKind(ctx context.Context, tag string) (*entities.FacilityType, error) {
	facilityType, err := r.typeRepo.GetByName(ctx, tag)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnknownKindError(tag)
		}
		return nil, err
	}
	return facilityType, nil
}

// ResolveFacility resolves a kind tag and a facility id to a facility that
// is classified under that kind.
func (r *KindResolver) ResolveFacility(ctx context.Context, tag, facilityID string) (*entities.Facility, error) {
	facilityType, err := r.ResolveKind(ctx, tag)
	if err != nil {
		return nil, err
	}

	facility, err := r.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found for kind %q", facilityID, tag))
		}
		return nil, err
	}

	if facility.TypeID != facilityType.ID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found for kind %q", facilityID, tag))
	}

	return facility, nil
}
