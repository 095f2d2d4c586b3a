package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/api/middleware"
	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type reviewFacilityResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	TypeID  string  `json:"typeId"`
	Photo   *string `json:"photo,omitempty"`
}

type reviewUserResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Photo    *string `json:"photo,omitempty"`
}

type reviewResponse struct {
	ID         string                  `json:"id"`
	Comment    string                  `json:"comment"`
	UserID     string                  `json:"userId"`
	FacilityID string                  `json:"facilityId"`
	Facility   *reviewFacilityResponse `json:"facility,omitempty"`
	User       *reviewUserResponse     `json:"user,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
}

func toReviewResponse(review *entities.Review) reviewResponse {
	response := reviewResponse{
		ID:         review.ID,
		Comment:    review.Comment,
		UserID:     review.UserID,
		FacilityID: review.FacilityID,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
	if review.Facility != nil {
		response.Facility = &reviewFacilityResponse{
			ID:      review.Facility.ID,
			Name:    review.Facility.Name,
			Address: review.Facility.Address,
			TypeID:  review.Facility.TypeID,
			Photo:   review.Facility.Photo,
		}
	}
	if review.User != nil {
		response.User = &reviewUserResponse{
			ID:       review.User.ID,
			Username: review.User.Username,
			Photo:    review.User.Photo,
		}
	}
	return response
}

func respondWithReviews(w http.ResponseWriter, reviews []*entities.Review) {
	responses := []reviewResponse{}
	for _, review := range reviews {
		responses = append(responses, toReviewResponse(review))
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": responses,
		"count":   len(responses),
	})
}

// CreateReview handles POST /api/kinds/{tag}/facilities/{facilityId}/reviews.
// The kind tag is resolved before the facility is checked.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	facilityID := r.PathValue("facilityId")

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input services.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.service.Create(r.Context(), tag, facilityID, user.ID, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toReviewResponse(review))
}

type createReviewRequest struct {
	FacilityID string `json:"facilityId"`
	Comment    string `json:"comment"`
}

// CreateReviewForFacility handles POST /api/reviews, the kind-agnostic
// creation path.
func (h *ReviewHandler) CreateReviewForFacility(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.service.CreateForFacility(r.Context(), req.FacilityID, user.ID,
		services.ReviewInput{Comment: req.Comment})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toReviewResponse(review))
}

// ListFacilityReviews handles GET /api/kinds/{tag}/facilities/{facilityId}/reviews
func (h *ReviewHandler) ListFacilityReviews(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	facilityID := r.PathValue("facilityId")

	reviews, err := h.service.ListByFacility(r.Context(), tag, facilityID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithReviews(w, reviews)
}

// ListReviews handles GET /api/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithReviews(w, reviews)
}

// GetReview handles GET /api/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	review, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toReviewResponse(review))
}

// UpdateReview handles PATCH /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	var patch services.ReviewPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.service.Update(r.Context(), id, middleware.UserFromContext(r.Context()), patch)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toReviewResponse(review))
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id, middleware.UserFromContext(r.Context())); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "review deleted",
	})
}
