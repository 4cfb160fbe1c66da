package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type mentorStoreStub struct {
	byID        map[string]*models.Mentor
	approved    []models.Mentor
	phoneTaken  bool
	listCalls   int
	lastProfile *models.MentorProfile
}

func (s *mentorStoreStub) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	if m, ok := s.byID[id]; ok {
		out := *m
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

func (s *mentorStoreStub) ListApproved(ctx context.Context) ([]models.Mentor, error) {
	s.listCalls++
	return s.approved, nil
}

func (s *mentorStoreStub) UpdateProfile(ctx context.Context, id string, profile models.MentorProfile) error {
	m, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.MentorProfile = profile
	s.lastProfile = &profile
	return nil
}

func (s *mentorStoreStub) ExistsByPhone(ctx context.Context, phone string, excludeID string) (bool, error) {
	return s.phoneTaken, nil
}

// memoryCache is an in-process stand-in for the Redis cache repository.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func pendingMentorFixture(id string) *models.Mentor {
	return &models.Mentor{
		ID:                 id,
		Email:              id + "@example.com",
		MentorProfile:      models.MentorProfile{Name: "Mentor " + id, AvailableHours: "5"},
		VerificationStatus: models.VerificationPending,
	}
}

func TestMentorServicePublicProfileHidesUnapproved(t *testing.T) {
	store := &mentorStoreStub{byID: map[string]*models.Mentor{"m-1": pendingMentorFixture("m-1")}}
	svc := NewMentorService(store, nil, nil, zap.NewNop())

	_, err := svc.PublicProfile(context.Background(), "m-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.PublicProfile(context.Background(), "m-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMentorServiceOwnProfileVisibleWhenRejected(t *testing.T) {
	rejected := pendingMentorFixture("m-1")
	rejected.VerificationStatus = models.VerificationRejected
	store := &mentorStoreStub{byID: map[string]*models.Mentor{"m-1": rejected}}
	svc := NewMentorService(store, nil, nil, zap.NewNop())

	mentor, err := svc.OwnProfile(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, mentor.VerificationStatus)
}

func TestMentorServiceDirectoryCachesListing(t *testing.T) {
	store := &mentorStoreStub{approved: []models.Mentor{*pendingMentorFixture("m-1")}}
	cacheSvc := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc := NewMentorService(store, cacheSvc, nil, zap.NewNop())

	first, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, store.listCalls)
}

func TestMentorServiceUpdateProfileInvalidatesDirectory(t *testing.T) {
	approved := pendingMentorFixture("m-1")
	approved.VerificationStatus = models.VerificationApproved
	store := &mentorStoreStub{
		byID:     map[string]*models.Mentor{"m-1": approved},
		approved: []models.Mentor{*approved},
	}
	cache := newMemoryCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, zap.NewNop(), true)
	svc := NewMentorService(store, cacheSvc, nil, zap.NewNop())

	_, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	name := "Renamed Mentor"
	_, err = svc.UpdateProfile(context.Background(), "m-1", UpdateMentorProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
	require.NotNil(t, store.lastProfile)
	assert.Equal(t, "Renamed Mentor", store.lastProfile.Name)
	// untouched fields survive the partial update
	assert.Equal(t, "5", store.lastProfile.AvailableHours)
}

func TestMentorServiceUpdateProfilePhoneConflict(t *testing.T) {
	store := &mentorStoreStub{
		byID:       map[string]*models.Mentor{"m-1": pendingMentorFixture("m-1")},
		phoneTaken: true,
	}
	svc := NewMentorService(store, nil, nil, zap.NewNop())

	phone := "555-0101"
	_, err := svc.UpdateProfile(context.Background(), "m-1", UpdateMentorProfileRequest{Phone: &phone})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMentorServiceUpdateAvailabilityRequiresFlag(t *testing.T) {
	store := &mentorStoreStub{byID: map[string]*models.Mentor{"m-1": pendingMentorFixture("m-1")}}
	svc := NewMentorService(store, nil, nil, zap.NewNop())

	_, err := svc.UpdateAvailability(context.Background(), "m-1", UpdateAvailabilityRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	available := true
	mentor, err := svc.UpdateAvailability(context.Background(), "m-1", UpdateAvailabilityRequest{IsCurrentlyAvailable: &available})
	require.NoError(t, err)
	assert.True(t, mentor.IsCurrentlyAvailable)
}
