package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
)

// FacilityHandler handles facility HTTP requests
type FacilityHandler struct {
	service  *services.FacilityService
	resolver *services.KindResolver
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(service *services.FacilityService, resolver *services.KindResolver) *FacilityHandler {
	return &FacilityHandler{
		service:  service,
		resolver: resolver,
	}
}

type facilityResponse struct {
	ID            string                        `json:"id"`
	TypeID        string                        `json:"typeId"`
	Type          *entities.FacilityTypeSummary `json:"type,omitempty"`
	Name          string                        `json:"name"`
	OpenTime      string                        `json:"openTime"`
	CloseTime     string                        `json:"closeTime"`
	Address       string                        `json:"address"`
	Photo         *string                       `json:"photo"`
	Latitude      float64                       `json:"lat"`
	Longitude     float64                       `json:"lng"`
	Description   string                        `json:"description"`
	SubFacilities []string                      `json:"subFacilities"`
	CreatedAt     time.Time                     `json:"createdAt"`
	UpdatedAt     time.Time                     `json:"updatedAt"`
}

func (h *FacilityHandler) toResponse(facility *entities.Facility) facilityResponse {
	response := facilityResponse{
		ID:            facility.ID,
		TypeID:        facility.TypeID,
		Name:          facility.Name,
		OpenTime:      facility.OpenTime,
		CloseTime:     facility.CloseTime,
		Address:       facility.Address,
		Photo:         h.service.PhotoURL(facility.Photo),
		Latitude:      facility.Location.Latitude,
		Longitude:     facility.Location.Longitude,
		Description:   facility.Description,
		SubFacilities: facility.SubFacilities,
		CreatedAt:     facility.CreatedAt,
		UpdatedAt:     facility.UpdatedAt,
	}
	if facility.Type != nil {
		response.Type = &entities.FacilityTypeSummary{
			ID:   facility.Type.ID,
			Name: facility.Type.Name,
		}
	}
	return response
}

func (h *FacilityHandler) respondWithFacilities(w http.ResponseWriter, facilities []*entities.Facility) {
	responses := []facilityResponse{}
	for _, facility := range facilities {
		responses = append(responses, h.toResponse(facility))
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": responses,
		"count":      len(responses),
	})
}

// CreateFacility handles POST /api/facilities. Accepts JSON or multipart
// form data with an optional photo image.
func (h *FacilityHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var input services.FacilityInput
	var photo *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		input.Name, _ = formString(r, "name")
		input.OpenTime, _ = formString(r, "openTime")
		input.CloseTime, _ = formString(r, "closeTime")
		input.Address, _ = formString(r, "address")
		input.Description, _ = formString(r, "description")
		input.TypeID, _ = formString(r, "typeId")
		input.SubFacilities = formStrings(r, "subFacilities")

		if raw, ok := formString(r, "lat"); ok {
			if lat, err := strconv.ParseFloat(raw, 64); err == nil {
				input.Latitude = &lat
			}
		}
		if raw, ok := formString(r, "lng"); ok {
			if lng, err := strconv.ParseFloat(raw, 64); err == nil {
				input.Longitude = &lng
			}
		}

		var err error
		if photo, err = formFile(r, "photo"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid photo upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	facility, err := h.service.Create(r.Context(), input, photo)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.toResponse(facility))
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(facility))
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.FacilityFilter{
		TypeID: query.Get("typeId"),
		Query:  query.Get("q"),
		Limit:  parseIntParam(query.Get("limit"), 30),
		Offset: parseIntParam(query.Get("offset"), 0),
	}

	facilities, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.respondWithFacilities(w, facilities)
}

// ListFacilitiesByType handles GET /api/facility-types/{id}/facilities. A
// type with no facilities yields an empty list.
func (h *FacilityHandler) ListFacilitiesByType(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("id")
	if typeID == "" {
		respondWithError(w, http.StatusBadRequest, "facility type ID is required")
		return
	}

	facilities, err := h.service.ListByType(r.Context(), typeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.respondWithFacilities(w, facilities)
}

// ListFacilitiesByKind handles GET /api/kinds/{tag}/facilities. The tag
// must name a facility type exactly.
func (h *FacilityHandler) ListFacilitiesByKind(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")

	facilityType, err := h.resolver.ResolveKind(r.Context(), tag)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	facilities, err := h.service.ListByType(r.Context(), facilityType.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.respondWithFacilities(w, facilities)
}

// SearchFacilities handles GET /api/facilities/search
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := repositories.SearchParams{
		Query:  query.Get("q"),
		TypeID: query.Get("typeId"),
		Limit:  parseIntParam(query.Get("limit"), 20),
		Offset: parseIntParam(query.Get("offset"), 0),
	}

	facilities, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.respondWithFacilities(w, facilities)
}

// UpdateFacility handles PATCH /api/facilities/{id}. Absent fields are
// left untouched.
func (h *FacilityHandler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	var patch services.FacilityPatch
	var photo *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		patch = facilityPatchFromForm(r)

		var err error
		if photo, err = formFile(r, "photo"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid photo upload")
			return
		}
	} else {
		var body facilityPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		patch = services.FacilityPatch{
			Name:          body.Name,
			OpenTime:      body.OpenTime,
			CloseTime:     body.CloseTime,
			Address:       body.Address,
			Latitude:      body.Latitude,
			Longitude:     body.Longitude,
			Description:   body.Description,
			TypeID:        body.TypeID,
			SubFacilities: body.SubFacilities,
		}
	}

	facility, err := h.service.Update(r.Context(), id, patch, photo)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(facility))
}

// DeleteFacility handles DELETE /api/facilities/{id}
func (h *FacilityHandler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "facility deleted",
	})
}

// DescribeFacility handles POST /api/facilities/describe, generating a
// description text from facility details.
func (h *FacilityHandler) DescribeFacility(w http.ResponseWriter, r *http.Request) {
	var req entities.DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	description, err := h.service.Describe(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"description": description,
	})
}

type facilityPatchRequest struct {
	Name          *string  `json:"name"`
	OpenTime      *string  `json:"openTime"`
	CloseTime     *string  `json:"closeTime"`
	Address       *string  `json:"address"`
	Latitude      *float64 `json:"lat"`
	Longitude     *float64 `json:"lng"`
	Description   *string  `json:"description"`
	TypeID        *string  `json:"typeId"`
	SubFacilities []string `json:"subFacilities"`
}

func facilityPatchFromForm(r *http.Request) services.FacilityPatch {
	var patch services.FacilityPatch

	if value, ok := formString(r, "name"); ok {
		patch.Name = &value
	}
	if value, ok := formString(r, "openTime"); ok {
		patch.OpenTime = &value
	}
	if value, ok := formString(r, "closeTime"); ok {
		patch.CloseTime = &value
	}
	if value, ok := formString(r, "address"); ok {
		patch.Address = &value
	}
	if value, ok := formString(r, "description"); ok {
		patch.Description = &value
	}
	if value, ok := formString(r, "typeId"); ok {
		patch.TypeID = &value
	}
	if raw, ok := formString(r, "lat"); ok {
		if lat, err := strconv.ParseFloat(raw, 64); err == nil {
			patch.Latitude = &lat
		}
	}
	if raw, ok := formString(r, "lng"); ok {
		if lng, err := strconv.ParseFloat(raw, 64); err == nil {
			patch.Longitude = &lng
		}
	}
	patch.SubFacilities = formStrings(r, "subFacilities")

	return patch
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
