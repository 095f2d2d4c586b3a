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

// FacilityPatch carries the fields of a partial facility update. Nil fields
// are left untouched.
type FacilityPatch struct {
	Name          *string
	OpenTime      *string
	CloseTime     *string
	Address       *string
	Latitude      *float64
	Longitude     *float64
	Description   *string
	TypeID        *string
	SubFacilities []string
}

// FacilityService handles business logic for facilities
type FacilityService struct {
	repo        repositories.FacilityRepository
	typeRepo    repositories.FacilityTypeRepository
	searchRepo  repositories.FacilitySearchRepository
	photos      providers.AssetStore
	eventBus    providers.EventBus
	description providers.DescriptionProvider
}

// NewFacilityService creates a new facility service
func NewFacilityService(
	repo repositories.FacilityRepository,
	typeRepo repositories.FacilityTypeRepository,
	searchRepo repositories.FacilitySearchRepository,
	photos providers.AssetStore,
	eventBus providers.EventBus,
	description providers.DescriptionProvider,
) *FacilityService {
	return &FacilityService{
		repo:        repo,
		typeRepo:    typeRepo,
		searchRepo:  searchRepo,
		photos:      photos,
		eventBus:    eventBus,
		description: description,
	}
}

// Create creates a new facility, stores its photo and indexes it
func (s *FacilityService) Create(ctx context.Context, input FacilityInput, photo *AssetUpload) (*entities.Facility, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	facilityType, err := s.typeRepo.GetByID(ctx, input.TypeID)
	if err != nil {
		return nil, err
	}

	if err := checkSubFacilities(facilityType, input.SubFacilities); err != nil {
		return nil, err
	}

	facility := &entities.Facility{
		ID:          uuid.New().String(),
		TypeID:      input.TypeID,
		Name:        input.Name,
		OpenTime:    input.OpenTime,
		CloseTime:   input.CloseTime,
		Address:     input.Address,
		Description: input.Description,
		Location: entities.Location{
			Latitude:  *input.Latitude,
			Longitude: *input.Longitude,
		},
		SubFacilities: input.SubFacilities,
		Type:          facilityType,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if facility.SubFacilities == nil {
		facility.SubFacilities = []string{}
	}

	if photo != nil {
		name, err := s.photos.Save(ctx, photo.Filename, photo.Data)
		if err != nil {
			return nil, err
		}
		facility.Photo = &name
	}

	if err := s.repo.Create(ctx, facility); err != nil {
		if facility.Photo != nil {
			s.releasePhotoBestEffort(ctx, *facility.Photo)
		}
		return nil, err
	}

	s.indexBestEffort(ctx, facility)
	s.publishBestEffort(ctx, facility, entities.FacilityEventTypeCreated)

	return facility, nil
}

// GetByID retrieves a facility by ID
func (s *FacilityService) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves facilities with optional filters
func (s *FacilityService) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	return s.repo.List(ctx, filter)
}

// ListByType retrieves the facilities classified against a type. An unknown
// or unused type yields an empty slice.
func (s *FacilityService) ListByType(ctx context.Context, typeID string) ([]*entities.Facility, error) {
	return s.repo.List(ctx, repositories.FacilityFilter{TypeID: typeID})
}

// Update applies a partial update to a facility. Only supplied fields
// change; a supplied photo replaces and releases the previous asset.
func (s *FacilityService) Update(ctx context.Context, id string, patch FacilityPatch, photo *AssetUpload) (*entities.Facility, error) {
	facility, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkPatch(patch); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		facility.Name = *patch.Name
	}
	if patch.OpenTime != nil {
		facility.OpenTime = *patch.OpenTime
	}
	if patch.CloseTime != nil {
		facility.CloseTime = *patch.CloseTime
	}
	if patch.Address != nil {
		facility.Address = *patch.Address
	}
	if patch.Latitude != nil {
		facility.Location.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		facility.Location.Longitude = *patch.Longitude
	}
	if patch.Description != nil {
		facility.Description = *patch.Description
	}
	if patch.TypeID != nil {
		facility.TypeID = *patch.TypeID
	}
	if patch.SubFacilities != nil {
		facility.SubFacilities = patch.SubFacilities
	}

	facilityType, err := s.typeRepo.GetByID(ctx, facility.TypeID)
	if err != nil {
		return nil, err
	}
	facility.Type = facilityType

	if err := checkSubFacilities(facilityType, facility.SubFacilities); err != nil {
		return nil, err
	}

	var oldPhoto *string
	if photo != nil {
		name, err := s.photos.Save(ctx, photo.Filename, photo.Data)
		if err != nil {
			return nil, err
		}
		oldPhoto = facility.Photo
		facility.Photo = &name
	}

	facility.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, facility); err != nil {
		return nil, err
	}

	if oldPhoto != nil && (facility.Photo == nil || *oldPhoto != *facility.Photo) {
		s.releasePhotoBestEffort(ctx, *oldPhoto)
	}

	s.indexBestEffort(ctx, facility)
	s.publishBestEffort(ctx, facility, entities.FacilityEventTypeUpdated)

	return facility, nil
}

// Delete removes a facility. Its reviews cascade in the database and its
// photo is released best effort.
func (s *FacilityService) Delete(ctx context.Context, id string) error {
	facility, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if facility.Photo != nil {
		s.releasePhotoBestEffort(ctx, *facility.Photo)
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", id).Msg("failed to remove facility from search index")
		}
	}
	s.publishBestEffort(ctx, facility, entities.FacilityEventTypeDeleted)

	return nil
}

// Search queries facilities through the search index
func (s *FacilityService) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Facility, error) {
	if s.searchRepo == nil {
		return s.repo.List(ctx, repositories.FacilityFilter{
			TypeID: params.TypeID,
			Query:  params.Query,
			Limit:  params.Limit,
			Offset: params.Offset,
		})
	}
	return s.searchRepo.Search(ctx, params)
}

// Describe generates a description for a facility from its details
func (s *FacilityService) Describe(ctx context.Context, req entities.DescriptionRequest) (string, error) {
	if s.description == nil {
		return "", apperrors.NewExternalError("description generation is not configured", nil)
	}
	text, err := s.description.Describe(ctx, req)
	if err != nil {
		return "", apperrors.NewExternalError("failed to generate description", err)
	}
	return text, nil
}

// PhotoURL resolves a stored photo name to its public URL
func (s *FacilityService) PhotoURL(name *string) *string {
	if name == nil {
		return nil
	}
	url := s.photos.URL(*name)
	return &url
}

func checkSubFacilities(facilityType *entities.FacilityType, subFacilities []string) error {
	for _, sub := range subFacilities {
		if !facilityType.AllowsSubFacility(sub) {
			return apperrors.NewValidationError(
				fmt.Sprintf("sub facility %q is not allowed for type %q", sub, facilityType.Name))
		}
	}
	return nil
}

// checkPatch rejects supplied-but-empty fields, reported in the same order
// as create validation.
func checkPatch(patch FacilityPatch) error {
	checks := []struct {
		field string
		value *string
	}{
		{"name", patch.Name},
		{"openTime", patch.OpenTime},
		{"closeTime", patch.CloseTime},
		{"address", patch.Address},
	}
	for _, check := range checks {
		if check.value != nil && *check.value == "" {
			return apperrors.NewValidationError(check.field + " is required")
		}
	}
	if patch.Description != nil && *patch.Description == "" {
		return apperrors.NewValidationError("description is required")
	}
	if patch.TypeID != nil && *patch.TypeID == "" {
		return apperrors.NewValidationError("typeId is required")
	}
	return nil
}

func (s *FacilityService) indexBestEffort(ctx context.Context, facility *entities.Facility) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, facility); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to index facility")
	}
}

func (s *FacilityService) publishBestEffort(ctx context.Context, facility *entities.Facility, eventType entities.FacilityEventType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewFacilityEvent(facility, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelFacilityUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to publish facility event")
	}
}

func (s *FacilityService) releasePhotoBestEffort(ctx context.Context, name string) {
	if err := s.photos.Release(ctx, name); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("asset", name).Msg("failed to release photo asset")
	}
}
