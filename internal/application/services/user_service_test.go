package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

func TestUserService_Create(t *testing.T) {
	repo := newStubUserRepo()
	service := NewUserService(repo, &stubAssetStore{})

	user, err := service.Create(context.Background(), UserInput{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "rahasia1",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, entities.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("rahasia1")))
}

func TestUserService_CreateAdmin(t *testing.T) {
	repo := newStubUserRepo()
	service := NewUserService(repo, &stubAssetStore{})

	user, err := service.CreateAdmin(context.Background(), UserInput{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "rahasia1",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, user.Role)
}

func TestUserService_Create_Validation(t *testing.T) {
	service := NewUserService(newStubUserRepo(), &stubAssetStore{})

	_, err := service.Create(context.Background(), UserInput{
		Username: "budi",
		Email:    "not-an-email",
		Password: "rahasia1",
	}, nil)
	assert.Equal(t, "VALIDATION: email must be a valid address", err.Error())

	_, err = service.Create(context.Background(), UserInput{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "abc",
	}, nil)
	assert.Equal(t, "VALIDATION: password must be at least 6 characters", err.Error())
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo(&entities.User{ID: "user-1", Email: "budi@example.com"})
	service := NewUserService(repo, &stubAssetStore{})

	_, err := service.Create(context.Background(), UserInput{
		Username: "budi",
		Email:    "BUDI@example.com",
		Password: "rahasia1",
	}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestUserService_Create_ReleasesPhotoOnFailure(t *testing.T) {
	repo := newStubUserRepo(&entities.User{ID: "user-1", Email: "budi@example.com"})
	photos := &stubAssetStore{}
	service := NewUserService(repo, photos)

	_, err := service.Create(context.Background(), UserInput{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "rahasia1",
	}, &AssetUpload{Filename: "me.png", Data: []byte("img")})
	assert.Error(t, err)
	assert.Contains(t, photos.released, "stored-me.png")
}

func TestUserService_Update_Partial(t *testing.T) {
	repo := newStubUserRepo(&entities.User{ID: "user-1", Username: "budi", Email: "budi@example.com"})
	service := NewUserService(repo, &stubAssetStore{})

	username := "budi-baru"
	updated, err := service.Update(context.Background(), "user-1", UserPatch{Username: &username}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "budi-baru", updated.Username)
	assert.Equal(t, "budi@example.com", updated.Email)

	empty := ""
	_, err = service.Update(context.Background(), "user-1", UserPatch{Username: &empty}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestUserService_Delete_ReleasesPhoto(t *testing.T) {
	photo := "me.png"
	repo := newStubUserRepo(&entities.User{ID: "user-1", Email: "budi@example.com", Photo: &photo})
	photos := &stubAssetStore{}
	service := NewUserService(repo, photos)

	assert.NoError(t, service.Delete(context.Background(), "user-1"))
	assert.Contains(t, photos.released, "me.png")
	assert.Empty(t, repo.users)
}
