package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	tsclient "github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements facility search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements FacilitySearchRepository
var _ repositories.FacilitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a facility document
func (a *TypesenseAdapter) Index(ctx context.Context, facility *entities.Facility) error {
	typeName := ""
	if facility.Type != nil {
		typeName = facility.Type.Name
	}

	document := map[string]interface{}{
		"id":             facility.ID,
		"name":           facility.Name,
		"type_id":        facility.TypeID,
		"type_name":      typeName,
		"address":        facility.Address,
		"location":       []float64{facility.Location.Latitude, facility.Location.Longitude},
		"sub_facilities": facility.SubFacilities,
		"created_at":     facility.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index facility: %w", err)
	}

	return nil
}

// Delete removes a facility from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete facility from index: %w", err)
	}
	return nil
}

// Search queries facilities by name, address and sub facilities
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Facility, error) {
	query := params.Query
	if query == "" {
		query = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,address,sub_facilities"),
		Page:    pointer.Int(params.Offset/limit + 1),
		PerPage: pointer.Int(limit),
	}
	if params.TypeID != "" {
		searchParams.FilterBy = pointer.String(fmt.Sprintf("type_id:=%s", params.TypeID))
	}

	result, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}

	facilities := []*entities.Facility{}
	if result.Hits == nil {
		return facilities, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		facility := &entities.Facility{
			ID:      stringField(doc, "id"),
			Name:    stringField(doc, "name"),
			TypeID:  stringField(doc, "type_id"),
			Address: stringField(doc, "address"),
		}

		if typeName := stringField(doc, "type_name"); typeName != "" {
			facility.Type = &entities.FacilityType{ID: facility.TypeID, Name: typeName}
		}

		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			if lat, ok := loc[0].(float64); ok {
				facility.Location.Latitude = lat
			}
			if lng, ok := loc[1].(float64); ok {
				facility.Location.Longitude = lng
			}
		}

		if subs, ok := doc["sub_facilities"].([]interface{}); ok {
			for _, sub := range subs {
				if s, ok := sub.(string); ok {
					facility.SubFacilities = append(facility.SubFacilities, s)
				}
			}
		}

		facilities = append(facilities, facility)
	}

	return facilities, nil
}

func stringField(doc map[string]interface{}, key string) string {
	if value, ok := doc[key].(string); ok {
		return value
	}
	return ""
}
