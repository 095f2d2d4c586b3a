package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

func newReviewFixture(reviews ...*entities.Review) (*ReviewService, *stubReviewRepo) {
	typeRepo := newStubTypeRepo(
		&entities.FacilityType{ID: "type-1", Name: "Kesehatan"},
		&entities.FacilityType{ID: "type-2", Name: "Pendidikan"},
	)
	facilityRepo := newStubFacilityRepo(
		&entities.Facility{ID: "fac-1", TypeID: "type-1", Name: "RSUP"},
		&entities.Facility{ID: "fac-2", TypeID: "type-2", Name: "SMA Negeri 1"},
	)
	repo := newStubReviewRepo(reviews...)
	resolver := NewKindResolver(typeRepo, facilityRepo)
	return NewReviewService(repo, facilityRepo, resolver), repo
}

func TestReviewService_Create(t *testing.T) {
	service, repo := newReviewFixture()

	review, err := service.Create(context.Background(), "Kesehatan", "fac-1", "user-1",
		ReviewInput{Comment: "Pelayanan cepat"})
	assert.NoError(t, err)
	assert.Equal(t, "fac-1", review.FacilityID)
	assert.Equal(t, "user-1", review.UserID)
	assert.Len(t, repo.reviews, 1)
}

func TestReviewService_Create_UnknownKind(t *testing.T) {
	service, _ := newReviewFixture()

	_, err := service.Create(context.Background(), "Transportasi", "fac-1", "user-1",
		ReviewInput{Comment: "Bagus"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnknownKind))
}

func TestReviewService_Create_KindMismatch(t *testing.T) {
	service, _ := newReviewFixture()

	// fac-1 is a Kesehatan facility, addressed under the wrong kind.
	_, err := service.Create(context.Background(), "Pendidikan", "fac-1", "user-1",
		ReviewInput{Comment: "Bagus"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestReviewService_Create_MissingComment(t *testing.T) {
	service, _ := newReviewFixture()

	_, err := service.Create(context.Background(), "Kesehatan", "fac-1", "user-1", ReviewInput{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, "VALIDATION: comment is required", err.Error())
}

func TestReviewService_CreateForFacility(t *testing.T) {
	service, repo := newReviewFixture()

	review, err := service.CreateForFacility(context.Background(), "fac-2", "user-1",
		ReviewInput{Comment: "Perpustakaan lengkap"})
	assert.NoError(t, err)
	assert.Equal(t, "fac-2", review.FacilityID)
	assert.Len(t, repo.reviews, 1)
}

func TestReviewService_CreateForFacility_MissingFacility(t *testing.T) {
	service, repo := newReviewFixture()

	_, err := service.CreateForFacility(context.Background(), "fac-999", "user-1",
		ReviewInput{Comment: "Bagus"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Empty(t, repo.reviews)
}

func TestReviewService_ListByFacility(t *testing.T) {
	service, _ := newReviewFixture(
		&entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"},
		&entities.Review{ID: "rev-2", FacilityID: "fac-other", UserID: "user-1", Comment: "Lain"},
	)

	reviews, err := service.ListByFacility(context.Background(), "Kesehatan", "fac-1")
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, "rev-1", reviews[0].ID)
}

func TestReviewService_Update_AuthorOnly(t *testing.T) {
	service, _ := newReviewFixture(
		&entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"},
	)

	author := &entities.User{ID: "user-1", Role: entities.RoleUser}
	other := &entities.User{ID: "user-2", Role: entities.RoleUser}
	admin := &entities.User{ID: "user-3", Role: entities.RoleAdmin}

	comment := "Diubah"
	_, err := service.Update(context.Background(), "rev-1", other, ReviewPatch{Comment: &comment})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	updated, err := service.Update(context.Background(), "rev-1", author, ReviewPatch{Comment: &comment})
	assert.NoError(t, err)
	assert.Equal(t, "Diubah", updated.Comment)

	// Admins may edit any review.
	moderated := "Moderasi"
	_, err = service.Update(context.Background(), "rev-1", admin, ReviewPatch{Comment: &moderated})
	assert.NoError(t, err)
}

func TestReviewService_Update_RetargetsFacility(t *testing.T) {
	service, _ := newReviewFixture(
		&entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"},
	)
	author := &entities.User{ID: "user-1", Role: entities.RoleUser}

	target := "fac-2"
	updated, err := service.Update(context.Background(), "rev-1", author, ReviewPatch{FacilityID: &target})
	assert.NoError(t, err)
	assert.Equal(t, "fac-2", updated.FacilityID)
	assert.Equal(t, "Bagus", updated.Comment)

	missing := "fac-999"
	_, err = service.Update(context.Background(), "rev-1", author, ReviewPatch{FacilityID: &missing})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestReviewService_Update_EmptyComment(t *testing.T) {
	service, _ := newReviewFixture(
		&entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"},
	)
	author := &entities.User{ID: "user-1", Role: entities.RoleUser}

	empty := ""
	_, err := service.Update(context.Background(), "rev-1", author, ReviewPatch{Comment: &empty})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestReviewService_Delete(t *testing.T) {
	service, repo := newReviewFixture(
		&entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"},
	)

	other := &entities.User{ID: "user-2", Role: entities.RoleUser}
	err := service.Delete(context.Background(), "rev-1", other)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	author := &entities.User{ID: "user-1", Role: entities.RoleUser}
	assert.NoError(t, service.Delete(context.Background(), "rev-1", author))
	assert.Empty(t, repo.reviews)
}

func TestReviewService_Delete_NotFound(t *testing.T) {
	service, _ := newReviewFixture()

	admin := &entities.User{ID: "user-1", Role: entities.RoleAdmin}
	err := service.Delete(context.Background(), "missing", admin)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
