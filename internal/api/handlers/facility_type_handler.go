package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// FacilityTypeHandler handles facility taxonomy HTTP requests
type FacilityTypeHandler struct {
	service *services.FacilityTypeService
}

// NewFacilityTypeHandler creates a new facility type handler
func NewFacilityTypeHandler(service *services.FacilityTypeService) *FacilityTypeHandler {
	return &FacilityTypeHandler{service: service}
}

type facilityTypeResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Icon                 *string   `json:"icon"`
	Marker               *string   `json:"marker"`
	AllowedSubFacilities []string  `json:"allowedSubFacilities"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (h *FacilityTypeHandler) toResponse(facilityType *entities.FacilityType) facilityTypeResponse {
	return facilityTypeResponse{
		ID:                   facilityType.ID,
		Name:                 facilityType.Name,
		Icon:                 h.service.IconURL(facilityType.Icon),
		Marker:               h.service.MarkerURL(facilityType.Marker),
		AllowedSubFacilities: facilityType.AllowedSubFacilities,
		CreatedAt:            facilityType.CreatedAt,
		UpdatedAt:            facilityType.UpdatedAt,
	}
}

// CreateFacilityType handles POST /api/facility-types. Accepts JSON or
// multipart form data with optional icon and marker images.
func (h *FacilityTypeHandler) CreateFacilityType(w http.ResponseWriter, r *http.Request) {
	var input services.FacilityTypeInput
	var icon, marker *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		input.Name, _ = formString(r, "name")
		input.AllowedSubFacilities = formStrings(r, "allowedSubFacilities")

		var err error
		if icon, err = formFile(r, "icon"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid icon upload")
			return
		}
		if marker, err = formFile(r, "marker"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid marker upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	facilityType, err := h.service.Create(r.Context(), input, icon, marker)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.toResponse(facilityType))
}

// GetFacilityType handles GET /api/facility-types/{id}
func (h *FacilityTypeHandler) GetFacilityType(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility type ID is required")
		return
	}

	facilityType, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(facilityType))
}

// ListFacilityTypes handles GET /api/facility-types
func (h *FacilityTypeHandler) ListFacilityTypes(w http.ResponseWriter, r *http.Request) {
	facilityTypes, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	responses := []facilityTypeResponse{}
	for _, facilityType := range facilityTypes {
		responses = append(responses, h.toResponse(facilityType))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilityTypes": responses,
		"count":         len(responses),
	})
}

// ListFacilityTypeSummaries handles GET /api/facility-types/summaries
func (h *FacilityTypeHandler) ListFacilityTypeSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListSummaries(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilityTypes": summaries,
		"count":         len(summaries),
	})
}

// GetDashboard handles GET /api/admin/dashboard, facility counts per type
func (h *FacilityTypeHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.ListWithCounts(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilityTypes": counts,
	})
}

type facilityTypePatchRequest struct {
	Name                 *string  `json:"name"`
	AllowedSubFacilities []string `json:"allowedSubFacilities"`
}

// UpdateFacilityType handles PATCH /api/facility-types/{id}. Absent fields
// are left untouched.
func (h *FacilityTypeHandler) UpdateFacilityType(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility type ID is required")
		return
	}

	var patch services.FacilityTypePatch
	var icon, marker *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if name, ok := formString(r, "name"); ok {
			patch.Name = &name
		}
		patch.AllowedSubFacilities = formStrings(r, "allowedSubFacilities")

		var err error
		if icon, err = formFile(r, "icon"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid icon upload")
			return
		}
		if marker, err = formFile(r, "marker"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid marker upload")
			return
		}
	} else {
		var body facilityTypePatchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		patch.Name = body.Name
		patch.AllowedSubFacilities = body.AllowedSubFacilities
	}

	facilityType, err := h.service.Update(r.Context(), id, patch, icon, marker)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(facilityType))
}

// DeleteFacilityType handles DELETE /api/facility-types/{id}
func (h *FacilityTypeHandler) DeleteFacilityType(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "facility type ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "facility type deleted",
	})
}
