package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// AssetUpload carries the raw bytes of an uploaded image
type AssetUpload struct {
	Filename string
	Data     []byte
}

// FacilityTypePatch carries the fields of a partial facility type update.
// Nil fields are left untouched.
type FacilityTypePatch struct {
	Name                 *string
	AllowedSubFacilities []string
}

// FacilityTypeService handles business logic for the facility taxonomy
type FacilityTypeService struct {
	repo         repositories.FacilityTypeRepository
	facilityRepo repositories.FacilityRepository
	icons        providers.AssetStore
	markers      providers.AssetStore
}

// NewFacilityTypeService creates a new facility type service
func NewFacilityTypeService(
	repo repositories.FacilityTypeRepository,
	facilityRepo repositories.FacilityRepository,
	icons providers.AssetStore,
	markers providers.AssetStore,
) *FacilityTypeService {
	return &FacilityTypeService{
		repo:         repo,
		facilityRepo: facilityRepo,
		icons:        icons,
		markers:      markers,
	}
}

// Create creates a new facility type. Name uniqueness is case-insensitive.
func (s *FacilityTypeService) Create(ctx context.Context, input FacilityTypeInput, icon, marker *AssetUpload) (*entities.FacilityType, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByNameFold(ctx, input.Name)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("facility type with name %q already exists", existing.Name))
	}

	facilityType := &entities.FacilityType{
		ID:                   uuid.New().String(),
		Name:                 input.Name,
		AllowedSubFacilities: input.AllowedSubFacilities,
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}
	if facilityType.AllowedSubFacilities == nil {
		facilityType.AllowedSubFacilities = []string{}
	}

	cleanup := func() {
		if facilityType.Icon != nil {
			s.releaseIconBestEffort(ctx, *facilityType.Icon)
		}
		if facilityType.Marker != nil {
			s.releaseMarkerBestEffort(ctx, *facilityType.Marker)
		}
	}

	// Assets are tied to the type's name at upload time. A later rename
	// keeps the old asset names, which stay valid.
	if icon != nil {
		name, err := s.icons.SaveNamed(ctx, facilityType.Name+"_icon", icon.Filename, icon.Data)
		if err != nil {
			return nil, err
		}
		facilityType.Icon = &name
	}
	if marker != nil {
		name, err := s.markers.SaveNamed(ctx, facilityType.Name+"_marker", marker.Filename, marker.Data)
		if err != nil {
			cleanup()
			return nil, err
		}
		facilityType.Marker = &name
	}

	if err := s.repo.Create(ctx, facilityType); err != nil {
		cleanup()
		return nil, err
	}

	return facilityType, nil
}

// GetByID retrieves a facility type by ID
func (s *FacilityTypeService) GetByID(ctx context.Context, id string) (*entities.FacilityType, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all facility types
func (s *FacilityTypeService) List(ctx context.Context) ([]*entities.FacilityType, error) {
	return s.repo.List(ctx)
}

// ListSummaries retrieves the id and name of all facility types
func (s *FacilityTypeService) ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error) {
	return s.repo.ListSummaries(ctx)
}

// ListWithCounts retrieves all facility types with their facility counts and
// public icon URLs. Used by the admin dashboard.
func (s *FacilityTypeService) ListWithCounts(ctx context.Context) ([]*entities.FacilityTypeCount, error) {
	facilityTypes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := []*entities.FacilityTypeCount{}
	for _, facilityType := range facilityTypes {
		count, err := s.facilityRepo.CountByType(ctx, facilityType.ID)
		if err != nil {
			return nil, err
		}

		summary := &entities.FacilityTypeCount{
			ID:            facilityType.ID,
			Name:          facilityType.Name,
			FacilityCount: count,
		}
		if facilityType.Icon != nil {
			url := s.icons.URL(*facilityType.Icon)
			summary.Icon = &url
		}
		counts = append(counts, summary)
	}

	return counts, nil
}

// Update applies a partial update to a facility type. Only supplied fields
// change; a supplied icon or marker replaces and releases the previous asset.
func (s *FacilityTypeService) Update(ctx context.Context, id string, patch FacilityTypePatch, icon, marker *AssetUpload) (*entities.FacilityType, error) {
	facilityType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, apperrors.NewValidationError("name is required")
		}
		existing, err := s.repo.FindByNameFold(ctx, *patch.Name)
		if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperrors.NewConflictError(fmt.Sprintf("facility type with name %q already exists", existing.Name))
		}
		facilityType.Name = *patch.Name
	}
	if patch.AllowedSubFacilities != nil {
		facilityType.AllowedSubFacilities = patch.AllowedSubFacilities
	}

	var oldIcon, oldMarker *string
	if icon != nil {
		name, err := s.icons.SaveNamed(ctx, facilityType.Name+"_icon", icon.Filename, icon.Data)
		if err != nil {
			return nil, err
		}
		oldIcon = facilityType.Icon
		facilityType.Icon = &name
	}
	if marker != nil {
		name, err := s.markers.SaveNamed(ctx, facilityType.Name+"_marker", marker.Filename, marker.Data)
		if err != nil {
			return nil, err
		}
		oldMarker = facilityType.Marker
		facilityType.Marker = &name
	}

	facilityType.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, facilityType); err != nil {
		return nil, err
	}

	if oldIcon != nil && (facilityType.Icon == nil || *oldIcon != *facilityType.Icon) {
		s.releaseIconBestEffort(ctx, *oldIcon)
	}
	if oldMarker != nil && (facilityType.Marker == nil || *oldMarker != *facilityType.Marker) {
		s.releaseMarkerBestEffort(ctx, *oldMarker)
	}

	return facilityType, nil
}

// Delete removes a facility type together with its icon and marker assets.
// A type still referenced by facilities cannot be deleted.
func (s *FacilityTypeService) Delete(ctx context.Context, id string) error {
	facilityType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.facilityRepo.CountByType(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError(fmt.Sprintf("facility type %q is referenced by %d facilities", facilityType.Name, count))
	}

	// Assets are released before the row goes away. A release failure
	// aborts the delete so the row never references an unresolved cleanup.
	if facilityType.Icon != nil {
		if err := s.icons.Release(ctx, *facilityType.Icon); err != nil {
			return err
		}
	}
	if facilityType.Marker != nil {
		if err := s.markers.Release(ctx, *facilityType.Marker); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, id)
}

// IconURL resolves a stored icon name to its public URL
func (s *FacilityTypeService) IconURL(name *string) *string {
	if name == nil {
		return nil
	}
	url := s.icons.URL(*name)
	return &url
}

// MarkerURL resolves a stored marker name to its public URL
func (s *FacilityTypeService) MarkerURL(name *string) *string {
	if name == nil {
		return nil
	}
	url := s.markers.URL(*name)
	return &url
}

func (s *FacilityTypeService) releaseIconBestEffort(ctx context.Context, name string) {
	if err := s.icons.Release(ctx, name); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("asset", name).Msg("failed to release icon asset")
	}
}

func (s *FacilityTypeService) releaseMarkerBestEffort(ctx context.Context, name string) {
	if err := s.markers.Release(ctx, name); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("asset", name).Msg("failed to release marker asset")
	}
}
