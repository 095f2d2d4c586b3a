package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/api/middleware"
	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

// UserHandler handles user account HTTP requests
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Photo     *string   `json:"photo"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *UserHandler) toResponse(user *entities.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Photo:     h.service.PhotoURL(user.Photo),
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// RegisterUser handles POST /api/users. Accounts register with the User
// role; admins are created through the admin route.
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	input, photo, ok := h.decodeUserInput(w, r)
	if !ok {
		return
	}

	user, err := h.service.Create(r.Context(), input, photo)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.toResponse(user))
}

// CreateAdmin handles POST /api/admin/users
func (h *UserHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	input, photo, ok := h.decodeUserInput(w, r)
	if !ok {
		return
	}

	user, err := h.service.CreateAdmin(r.Context(), input, photo)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.toResponse(user))
}

func (h *UserHandler) decodeUserInput(w http.ResponseWriter, r *http.Request) (services.UserInput, *services.AssetUpload, bool) {
	var input services.UserInput
	var photo *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return input, nil, false
		}
		input.Username, _ = formString(r, "username")
		input.Email, _ = formString(r, "email")
		input.Password, _ = formString(r, "password")

		var err error
		if photo, err = formFile(r, "photo"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid photo upload")
			return input, nil, false
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return input, nil, false
		}
	}

	return input, photo, true
}

// GetUser handles GET /api/users/{id}. Users may read themselves; admins
// may read anyone.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	actor := middleware.UserFromContext(r.Context())
	if actor == nil || (actor.Role != entities.RoleAdmin && actor.ID != id) {
		respondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(user))
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	responses := []userResponse{}
	for _, user := range users {
		responses = append(responses, h.toResponse(user))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": responses,
		"count": len(responses),
	})
}

type userPatchRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateUser handles PATCH /api/users/{id}. Users may edit themselves;
// only admins may edit others or change roles.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	actor := middleware.UserFromContext(r.Context())
	if actor == nil || (actor.Role != entities.RoleAdmin && actor.ID != id) {
		respondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	var patch services.UserPatch
	var photo *services.AssetUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if value, ok := formString(r, "username"); ok {
			patch.Username = &value
		}
		if value, ok := formString(r, "email"); ok {
			patch.Email = &value
		}
		if value, ok := formString(r, "password"); ok {
			patch.Password = &value
		}
		if value, ok := formString(r, "role"); ok {
			role := entities.Role(value)
			patch.Role = &role
		}

		var err error
		if photo, err = formFile(r, "photo"); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid photo upload")
			return
		}
	} else {
		var body userPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		patch.Username = body.Username
		patch.Email = body.Email
		patch.Password = body.Password
		if body.Role != nil {
			role := entities.Role(*body.Role)
			patch.Role = &role
		}
	}

	if patch.Role != nil && actor.Role != entities.RoleAdmin {
		respondWithError(w, http.StatusForbidden, "only admins may change roles")
		return
	}
	if patch.Role != nil && *patch.Role != entities.RoleAdmin && *patch.Role != entities.RoleUser {
		respondWithError(w, http.StatusBadRequest, "role must be Admin or User")
		return
	}

	user, err := h.service.Update(r.Context(), id, patch, photo)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.toResponse(user))
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "user deleted",
	})
}
