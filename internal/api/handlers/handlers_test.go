package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdsetiawan/facility-directory/internal/adapters/storage"
	"github.com/mdsetiawan/facility-directory/internal/api/middleware"
	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

type fakeTypeRepo struct {
	types map[string]*entities.FacilityType
}

func (r *fakeTypeRepo) Create(ctx context.Context, t *entities.FacilityType) error {
	r.types[t.ID] = t
	return nil
}

func (r *fakeTypeRepo) GetByID(ctx context.Context, id string) (*entities.FacilityType, error) {
	if t, ok := r.types[id]; ok {
		return t, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", id))
}

func (r *fakeTypeRepo) GetByName(ctx context.Context, name string) (*entities.FacilityType, error) {
	for _, t := range r.types {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with name %q not found", name))
}

func (r *fakeTypeRepo) FindByNameFold(ctx context.Context, name string) (*entities.FacilityType, error) {
	for _, t := range r.types {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with name %q not found", name))
}

func (r *fakeTypeRepo) Update(ctx context.Context, t *entities.FacilityType) error {
	if _, ok := r.types[t.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", t.ID))
	}
	r.types[t.ID] = t
	return nil
}

func (r *fakeTypeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.types[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", id))
	}
	delete(r.types, id)
	return nil
}

func (r *fakeTypeRepo) List(ctx context.Context) ([]*entities.FacilityType, error) {
	result := []*entities.FacilityType{}
	for _, t := range r.types {
		result = append(result, t)
	}
	return result, nil
}

func (r *fakeTypeRepo) ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error) {
	result := []*entities.FacilityTypeSummary{}
	for _, t := range r.types {
		result = append(result, &entities.FacilityTypeSummary{ID: t.ID, Name: t.Name})
	}
	return result, nil
}

type fakeFacilityRepo struct {
	facilities map[string]*entities.Facility
}

func (r *fakeFacilityRepo) Create(ctx context.Context, f *entities.Facility) error {
	r.facilities[f.ID] = f
	return nil
}

func (r *fakeFacilityRepo) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	if f, ok := r.facilities[id]; ok {
		return f, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
}

func (r *fakeFacilityRepo) Update(ctx context.Context, f *entities.Facility) error {
	if _, ok := r.facilities[f.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", f.ID))
	}
	r.facilities[f.ID] = f
	return nil
}

func (r *fakeFacilityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.facilities[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	delete(r.facilities, id)
	return nil
}

func (r *fakeFacilityRepo) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	result := []*entities.Facility{}
	for _, f := range r.facilities {
		if filter.TypeID != "" && f.TypeID != filter.TypeID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(filter.Query)) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (r *fakeFacilityRepo) CountByType(ctx context.Context, typeID string) (int, error) {
	count := 0
	for _, f := range r.facilities {
		if f.TypeID == typeID {
			count++
		}
	}
	return count, nil
}

type fakeReviewRepo struct {
	reviews map[string]*entities.Review
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	if review, ok := r.reviews[id]; ok {
		return review, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *entities.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) List(ctx context.Context) ([]*entities.Review, error) {
	result := []*entities.Review{}
	for _, review := range r.reviews {
		result = append(result, review)
	}
	return result, nil
}

func (r *fakeReviewRepo) ListByFacility(ctx context.Context, facilityID string) ([]*entities.Review, error) {
	result := []*entities.Review{}
	for _, review := range r.reviews {
		if review.FacilityID == facilityID {
			result = append(result, review)
		}
	}
	return result, nil
}

type fixture struct {
	mux        *http.ServeMux
	typeRepo   *fakeTypeRepo
	repo       *fakeFacilityRepo
	reviewRepo *fakeReviewRepo
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		typeRepo: &fakeTypeRepo{types: map[string]*entities.FacilityType{
			"type-1": {ID: "type-1", Name: "Kesehatan", AllowedSubFacilities: []string{"IGD", "Apotek"}},
			"type-2": {ID: "type-2", Name: "Pendidikan", AllowedSubFacilities: []string{"Perpustakaan"}},
		}},
		repo: &fakeFacilityRepo{facilities: map[string]*entities.Facility{
			"fac-1": {ID: "fac-1", TypeID: "type-1", Name: "RSUP Dr. Sardjito", Address: "Jl. Kesehatan No.1", SubFacilities: []string{"IGD"}},
		}},
		reviewRepo: &fakeReviewRepo{reviews: map[string]*entities.Review{}},
	}

	newStore := func(family string) *storage.LocalStore {
		store, err := storage.NewLocalStore(t.TempDir(), "/uploads/"+family)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		return store
	}

	typeService := services.NewFacilityTypeService(f.typeRepo, f.repo, newStore("icons"), newStore("markers"))
	facilityService := services.NewFacilityService(f.repo, f.typeRepo, nil, newStore("facilities"), nil, nil)
	resolver := services.NewKindResolver(f.typeRepo, f.repo)
	reviewService := services.NewReviewService(f.reviewRepo, f.repo, resolver)

	typeHandler := NewFacilityTypeHandler(typeService)
	facilityHandler := NewFacilityHandler(facilityService, resolver)
	reviewHandler := NewReviewHandler(reviewService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/facility-types", typeHandler.CreateFacilityType)
	mux.HandleFunc("GET /api/facility-types", typeHandler.ListFacilityTypes)
	mux.HandleFunc("GET /api/facility-types/{id}", typeHandler.GetFacilityType)
	mux.HandleFunc("PATCH /api/facility-types/{id}", typeHandler.UpdateFacilityType)
	mux.HandleFunc("DELETE /api/facility-types/{id}", typeHandler.DeleteFacilityType)
	mux.HandleFunc("GET /api/facility-types/{id}/facilities", facilityHandler.ListFacilitiesByType)
	mux.HandleFunc("POST /api/facilities", facilityHandler.CreateFacility)
	mux.HandleFunc("GET /api/facilities/{id}", facilityHandler.GetFacility)
	mux.HandleFunc("POST /api/facilities/describe", facilityHandler.DescribeFacility)
	mux.HandleFunc("GET /api/kinds/{tag}/facilities", facilityHandler.ListFacilitiesByKind)
	mux.HandleFunc("GET /api/kinds/{tag}/facilities/{facilityId}/reviews", reviewHandler.ListFacilityReviews)
	mux.HandleFunc("POST /api/kinds/{tag}/facilities/{facilityId}/reviews", reviewHandler.CreateReview)
	mux.HandleFunc("POST /api/reviews", reviewHandler.CreateReviewForFacility)
	mux.HandleFunc("PATCH /api/reviews/{id}", reviewHandler.UpdateReview)

	f.mux = mux
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestCreateFacilityType(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facility-types", map[string]interface{}{
		"name":                 "Keibadatan",
		"allowedSubFacilities": []string{"Parkir"},
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Keibadatan", body["name"])
	assert.Equal(t, []interface{}{"Parkir"}, body["allowedSubFacilities"])
}

func TestCreateFacilityType_DuplicateName(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facility-types", map[string]interface{}{
		"name": "KESEHATAN",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateFacilityType_MissingName(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facility-types", map[string]interface{}{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decodeBody(t, rec)["error"])
}

func TestGetFacilityType_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/facility-types/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFacilityType_Partial(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPatch, "/api/facility-types/type-1", map[string]interface{}{
		"allowedSubFacilities": []string{"IGD", "Apotek", "Ambulans"},
	}))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Kesehatan", body["name"])
	assert.Len(t, body["allowedSubFacilities"], 3)
}

func TestDeleteFacilityType_Referenced(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/facility-types/type-1", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteFacilityType(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/facility-types/type-2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/facility-types/type-2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFacility(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facilities", map[string]interface{}{
		"name":          "Puskesmas Gondokusuman",
		"openTime":      "08:00",
		"closeTime":     "16:00",
		"address":       "Jl. Urip Sumoharjo",
		"lat":           -7.7829,
		"lng":           110.3861,
		"description":   "Puskesmas kecamatan",
		"typeId":        "type-1",
		"subFacilities": []string{"Apotek"},
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Puskesmas Gondokusuman", body["name"])
	assert.Equal(t, -7.7829, body["lat"])
	if assert.NotNil(t, body["type"]) {
		assert.Equal(t, "Kesehatan", body["type"].(map[string]interface{})["name"])
	}
}

func TestCreateFacility_ValidationOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facilities", map[string]interface{}{
		"name": "Puskesmas",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "openTime is required", decodeBody(t, rec)["error"])
}

func TestCreateFacility_MultipartPhotoRejected(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name": "Puskesmas", "openTime": "08:00", "closeTime": "16:00",
		"address": "Jl. Urip", "lat": "-7.78", "lng": "110.38",
		"description": "Puskesmas", "typeId": "type-1",
	}
	for key, value := range fields {
		form.WriteField(key, value)
	}
	part, err := form.CreateFormFile("photo", "document.pdf")
	assert.NoError(t, err)
	part.Write([]byte("%PDF-1.4"))
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/facilities", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := f.do(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_type", decodeBody(t, rec)["reason"])
}

func TestListFacilitiesByType_Empty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/facility-types/type-2/facilities", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["facilities"])
}

func TestListFacilitiesByKind(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/kinds/Kesehatan/facilities", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestListFacilitiesByKind_UnknownTag(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/kinds/Transportasi/facilities", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "unknown facility kind")
}

func TestDescribeFacility_MissingName(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/facilities/describe", map[string]interface{}{
		"address": "Jl. Urip",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReview_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/kinds/Kesehatan/facilities/fac-1/reviews", map[string]interface{}{
		"comment": "Bagus",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func asUser(req *http.Request, user *entities.User) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestCreateReview(t *testing.T) {
	f := newFixture(t)

	req := asUser(
		jsonRequest(http.MethodPost, "/api/kinds/Kesehatan/facilities/fac-1/reviews", map[string]interface{}{
			"comment": "Pelayanan cepat",
		}),
		&entities.User{ID: "user-1", Role: entities.RoleUser},
	)

	rec := f.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Pelayanan cepat", body["comment"])
	assert.Equal(t, "user-1", body["userId"])
	assert.Equal(t, "fac-1", body["facilityId"])
}

func TestCreateReviewForFacility(t *testing.T) {
	f := newFixture(t)

	req := asUser(
		jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
			"facilityId": "fac-1",
			"comment":    "Antrian teratur",
		}),
		&entities.User{ID: "user-1", Role: entities.RoleUser},
	)

	rec := f.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fac-1", decodeBody(t, rec)["facilityId"])
}

func TestCreateReviewForFacility_MissingFacility(t *testing.T) {
	f := newFixture(t)

	req := asUser(
		jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
			"facilityId": "fac-404",
			"comment":    "Bagus",
		}),
		&entities.User{ID: "user-1", Role: entities.RoleUser},
	)

	rec := f.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReview_WrongKind(t *testing.T) {
	f := newFixture(t)

	req := asUser(
		jsonRequest(http.MethodPost, "/api/kinds/Pendidikan/facilities/fac-1/reviews", map[string]interface{}{
			"comment": "Bagus",
		}),
		&entities.User{ID: "user-1", Role: entities.RoleUser},
	)

	rec := f.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFacilityReviews(t *testing.T) {
	f := newFixture(t)
	f.reviewRepo.reviews["rev-1"] = &entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/kinds/Kesehatan/facilities/fac-1/reviews", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestUpdateReview_NotAuthor(t *testing.T) {
	f := newFixture(t)
	f.reviewRepo.reviews["rev-1"] = &entities.Review{ID: "rev-1", FacilityID: "fac-1", UserID: "user-1", Comment: "Bagus"}

	req := asUser(
		jsonRequest(http.MethodPatch, "/api/reviews/rev-1", map[string]interface{}{"comment": "Diubah"}),
		&entities.User{ID: "user-2", Role: entities.RoleUser},
	)

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
