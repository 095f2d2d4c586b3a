package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

type stubTypeRepo struct {
	types map[string]*entities.FacilityType
}

func newStubTypeRepo(types ...*entities.FacilityType) *stubTypeRepo {
	repo := &stubTypeRepo{types: map[string]*entities.FacilityType{}}
	for _, t := range types {
		repo.types[t.ID] = t
	}
	return repo
}

func (r *stubTypeRepo) Create(ctx context.Context, facilityType *entities.FacilityType) error {
	r.types[facilityType.ID] = facilityType
	return nil
}

func (r *stubTypeRepo) GetByID(ctx context.Context, id string) (*entities.FacilityType, error) {
	if t, ok := r.types[id]; ok {
		return t, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", id))
}

func (r *stubTypeRepo) GetByName(ctx context.Context, name string) (*entities.FacilityType, error) {
	for _, t := range r.types {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with name %q not found", name))
}

func (r *stubTypeRepo) FindByNameFold(ctx context.Context, name string) (*entities.FacilityType, error) {
	for _, t := range r.types {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility type with name %q not found", name))
}

func (r *stubTypeRepo) Update(ctx context.Context, facilityType *entities.FacilityType) error {
	if _, ok := r.types[facilityType.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", facilityType.ID))
	}
	r.types[facilityType.ID] = facilityType
	return nil
}

func (r *stubTypeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.types[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility type with id %s not found", id))
	}
	delete(r.types, id)
	return nil
}

func (r *stubTypeRepo) List(ctx context.Context) ([]*entities.FacilityType, error) {
	result := []*entities.FacilityType{}
	for _, t := range r.types {
		result = append(result, t)
	}
	return result, nil
}

func (r *stubTypeRepo) ListSummaries(ctx context.Context) ([]*entities.FacilityTypeSummary, error) {
	result := []*entities.FacilityTypeSummary{}
	for _, t := range r.types {
		result = append(result, &entities.FacilityTypeSummary{ID: t.ID, Name: t.Name})
	}
	return result, nil
}

type stubFacilityRepo struct {
	facilities map[string]*entities.Facility
}

func newStubFacilityRepo(facilities ...*entities.Facility) *stubFacilityRepo {
	repo := &stubFacilityRepo{facilities: map[string]*entities.Facility{}}
	for _, f := range facilities {
		repo.facilities[f.ID] = f
	}
	return repo
}

func (r *stubFacilityRepo) Create(ctx context.Context, facility *entities.Facility) error {
	r.facilities[facility.ID] = facility
	return nil
}

func (r *stubFacilityRepo) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	if f, ok := r.facilities[id]; ok {
		return f, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
}

func (r *stubFacilityRepo) Update(ctx context.Context, facility *entities.Facility) error {
	if _, ok := r.facilities[facility.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", facility.ID))
	}
	r.facilities[facility.ID] = facility
	return nil
}

func (r *stubFacilityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.facilities[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	delete(r.facilities, id)
	return nil
}

func (r *stubFacilityRepo) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
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

func (r *stubFacilityRepo) CountByType(ctx context.Context, typeID string) (int, error) {
	count := 0
	for _, f := range r.facilities {
		if f.TypeID == typeID {
			count++
		}
	}
	return count, nil
}

type stubSearchRepo struct {
	indexed map[string]*entities.Facility
	deleted []string
}

func newStubSearchRepo() *stubSearchRepo {
	return &stubSearchRepo{indexed: map[string]*entities.Facility{}}
}

func (r *stubSearchRepo) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Facility, error) {
	result := []*entities.Facility{}
	for _, f := range r.indexed {
		if params.TypeID != "" && f.TypeID != params.TypeID {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (r *stubSearchRepo) Index(ctx context.Context, facility *entities.Facility) error {
	r.indexed[facility.ID] = facility
	return nil
}

func (r *stubSearchRepo) Delete(ctx context.Context, facilityID string) error {
	delete(r.indexed, facilityID)
	r.deleted = append(r.deleted, facilityID)
	return nil
}

type stubReviewRepo struct {
	reviews map[string]*entities.Review
}

func newStubReviewRepo(reviews ...*entities.Review) *stubReviewRepo {
	repo := &stubReviewRepo{reviews: map[string]*entities.Review{}}
	for _, review := range reviews {
		repo.reviews[review.ID] = review
	}
	return repo
}

func (r *stubReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *stubReviewRepo) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	if review, ok := r.reviews[id]; ok {
		return review, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
}

func (r *stubReviewRepo) Update(ctx context.Context, review *entities.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", review.ID))
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *stubReviewRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) List(ctx context.Context) ([]*entities.Review, error) {
	result := []*entities.Review{}
	for _, review := range r.reviews {
		result = append(result, review)
	}
	return result, nil
}

func (r *stubReviewRepo) ListByFacility(ctx context.Context, facilityID string) ([]*entities.Review, error) {
	result := []*entities.Review{}
	for _, review := range r.reviews {
		if review.FacilityID == facilityID {
			result = append(result, review)
		}
	}
	return result, nil
}

type stubUserRepo struct {
	users map[string]*entities.User
}

func newStubUserRepo(users ...*entities.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[string]*entities.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) Create(ctx context.Context, user *entities.User) error {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.NewConflictError(fmt.Sprintf("user with email %q already exists", user.Email))
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %q not found", email))
}

func (r *stubUserRepo) Update(ctx context.Context, user *entities.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(ctx context.Context) ([]*entities.User, error) {
	result := []*entities.User{}
	for _, user := range r.users {
		result = append(result, user)
	}
	return result, nil
}

// stubAssetStore records saves and releases. Stored names are the original
// filename prefixed, which keeps assertions readable.
type stubAssetStore struct {
	mu         sync.Mutex
	saved      []string
	released   []string
	saveErr    error
	releaseErr error
}

func (s *stubAssetStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	name := "stored-" + filename
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubAssetStore) SaveNamed(ctx context.Context, base, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	name := base + strings.ToLower(filepath.Ext(filename))
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubAssetStore) Release(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.releaseErr != nil {
		return s.releaseErr
	}
	s.released = append(s.released, name)
	return nil
}

func (s *stubAssetStore) URL(name string) string {
	return "/uploads/test/" + name
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok := c.values[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("cache miss for key %s", key)
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}

type stubMailer struct {
	mu    sync.Mutex
	sent  []string
	codes map[string]string
}

func newStubMailer() *stubMailer {
	return &stubMailer{codes: map[string]string{}}
}

func (m *stubMailer) SendOTP(ctx context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	m.codes[email] = code
	return nil
}

type stubEventBus struct {
	mu        sync.Mutex
	published []*entities.FacilityEvent
}

func (b *stubEventBus) Publish(ctx context.Context, channel string, event *entities.FacilityEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

func (b *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FacilityEvent, error) {
	ch := make(chan *entities.FacilityEvent)
	close(ch)
	return ch, nil
}

func (b *stubEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *stubEventBus) Close() error { return nil }
