package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
)

// CachedFacilityTypeAdapter wraps a FacilityTypeRepository with caching.
// The taxonomy is small and read-heavy, so reads come from Redis and every
// write invalidates.
type CachedFacilityTypeAdapter struct {
	adapter repositories.FacilityTypeRepository
	cache   providers.CacheProvider
}

// NewCachedFacilityTypeAdapter creates a new cached facility type adapter
func NewCachedFacilityTypeAdapter(adapter repositories.FacilityTypeRepository, cache providers.CacheProvider) repositories.FacilityTypeRepository {
	return &CachedFacilityTypeAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	facilityTypeByIDTTL = 600 // 10 minutes for single type
	facilityTypeListTTL = 300 // 5 minutes for the full taxonomy
)

func facilityTypeCacheKey(id string) string {
	return fmt.Sprintf("facility_type:%s", id)
}

const facilityTypeListCacheKey = "facility_types:list"

// GetByID retrieves a facility type by ID with caching
func (a *CachedFacilityTypeAdapter) GetByID(ctx context.Context, id string) (*entities.FacilityType, error) {
	cacheKey := facilityTypeCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var facilityType entities.FacilityType
		if err := json.Unmarshal(cached, &facilityType); err == nil {
			return &facilityType, nil
		}
		log.Printf("Failed to unmarshal cached facility type %s: %v", id, err)
	}

	facilityType, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(facilityType); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, facilityTypeByIDTTL); err != nil {
				log.Printf("Failed to cache facility type %s: %v", id, err)
			}
		}
	}()

	return facilityType, nil
}

// GetByName passes through. Kind resolution must observe taxonomy changes
// immediately, so the exact-name lookup is never cached.
func (a *CachedFacilityTypeAdapter) GetByName(ctx context.Context, name string) (*entities.FacilityType, error) {
	return a.adapter.GetByName(ctx, name)
}

// FindByNameFold passes through, duplicate checks need current data
func (a *CachedFacilityTypeAdapter) FindByNameFold(ctx context.Context, name string) (*entities.FacilityType, error) {
	return a.adapter.FindByNameFold(ctx, name)
}

// List retrieves all facility types with caching
func (a *CachedFacilityTypeAdapter) List(ctx context.Context) ([]*entities.FacilityType, error) {
	if cached, err := a.cache.Get(ctx, facilityTypeListCacheKey); err == nil {
		var facilityTypes []*entities.FacilityType
		if err := json.Unmarshal(cached, &facilityTypes); err == nil {
			return facilityTypes, nil
		}
		log.Printf("Failed to unmarshal cached facility type list: %v", err)
	}

	facilityTypes, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(facilityTypes); err == nil {
			if err := a.cache.Set(bgCtx, facilityTypeListCacheKey, data, facilityTypeListTTL); err != nil {
				log.Printf("Failed to cache facility type list: %v", err)
			}
		}
	}()

	return facilityTypes, nil
}

// ListSummaries passes through, the projection is already cheap
func (a *CachedFacilityTypeAdapter) ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error) {
	return a.adapter.ListSummaries(ctx)
}

// Create creates a facility type and invalidates list caches
func (a *CachedFacilityTypeAdapter) Create(ctx context.Context, facilityType *entities.FacilityType) error {
	if err := a.adapter.Create(ctx, facilityType); err != nil {
		return err
	}
	a.invalidate(ctx, facilityType.ID)
	return nil
}

// Update updates a facility type and invalidates its caches
func (a *CachedFacilityTypeAdapter) Update(ctx context.Context, facilityType *entities.FacilityType) error {
	if err := a.adapter.Update(ctx, facilityType); err != nil {
		return err
	}
	a.invalidate(ctx, facilityType.ID)
	return nil
}

// Delete deletes a facility type and invalidates its caches
func (a *CachedFacilityTypeAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

func (a *CachedFacilityTypeAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, facilityTypeCacheKey(id)); err != nil {
		log.Printf("Failed to invalidate facility type cache %s: %v", id, err)
	}
	if err := a.cache.Delete(ctx, facilityTypeListCacheKey); err != nil {
		log.Printf("Failed to invalidate facility type list cache: %v", err)
	}
}
