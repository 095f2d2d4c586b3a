package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// UserPatch carries the fields of a partial user update. Nil fields are
// left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Role     *entities.Role
}

// UserService handles business logic for user accounts
type UserService struct {
	repo   repositories.UserRepository
	photos providers.AssetStore
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository, photos providers.AssetStore) *UserService {
	return &UserService{
		repo:   repo,
		photos: photos,
	}
}

// Create registers a new user account with the User role
func (s *UserService) Create(ctx context.Context, input UserInput, photo *AssetUpload) (*entities.User, error) {
	return s.create(ctx, input, photo, entities.RoleUser)
}

// CreateAdmin registers a new user account with the Admin role
func (s *UserService) CreateAdmin(ctx context.Context, input UserInput, photo *AssetUpload) (*entities.User, error) {
	return s.create(ctx, input, photo, entities.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, input UserInput, photo *AssetUpload, role entities.Role) (*entities.User, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	user := &entities.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if photo != nil {
		name, err := s.photos.Save(ctx, photo.Filename, photo.Data)
		if err != nil {
			return nil, err
		}
		user.Photo = &name
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if user.Photo != nil {
			s.releasePhotoBestEffort(ctx, *user.Photo)
		}
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all users
func (s *UserService) List(ctx context.Context) ([]*entities.User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update to a user
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch, photo *AssetUpload) (*entities.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		if *patch.Username == "" {
			return nil, apperrors.NewValidationError("username is required")
		}
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			return nil, apperrors.NewValidationError("email is required")
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		if len(*patch.Password) < 6 {
			return nil, apperrors.NewValidationError("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	var oldPhoto *string
	if photo != nil {
		name, err := s.photos.Save(ctx, photo.Filename, photo.Data)
		if err != nil {
			return nil, err
		}
		oldPhoto = user.Photo
		user.Photo = &name
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldPhoto != nil && (user.Photo == nil || *oldPhoto != *user.Photo) {
		s.releasePhotoBestEffort(ctx, *oldPhoto)
	}

	return user, nil
}

// Delete removes a user account and releases its photo
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if user.Photo != nil {
		s.releasePhotoBestEffort(ctx, *user.Photo)
	}

	return nil
}

// PhotoURL resolves a stored photo name to its public URL
func (s *UserService) PhotoURL(name *string) *string {
	if name == nil {
		return nil
	}
	url := s.photos.URL(*name)
	return &url
}

func (s *UserService) releasePhotoBestEffort(ctx context.Context, name string) {
	if err := s.photos.Release(ctx, name); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("asset", name).Msg("failed to release user photo")
	}
}
