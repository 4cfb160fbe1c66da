package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

// directoryCacheKey stores the approved mentor listing. Invalidation uses the
// prefix pattern so future per-mentor keys are swept too.
const (
	directoryCacheKey     = "directory:mentors"
	directoryCachePattern = "directory:*"
)

type mentorStore interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	ListApproved(ctx context.Context) ([]models.Mentor, error)
	UpdateProfile(ctx context.Context, id string, profile models.MentorProfile) error
	ExistsByPhone(ctx context.Context, phone string, excludeID string) (bool, error)
}

// UpdateMentorProfileRequest carries a partial profile update. Nil fields are
// left untouched. Verification and reputation are not updatable here.
type UpdateMentorProfileRequest struct {
	Name                 *string  `json:"name"`
	Phone                *string  `json:"phone"`
	Bio                  *string  `json:"bio"`
	Expertise            []string `json:"expertise"`
	Service              *string  `json:"service"`
	AvailableHours       *string  `json:"availableHours"`
	IsCurrentlyAvailable *bool    `json:"isCurrentlyAvailable"`
}

// UpdateAvailabilityRequest toggles the mentor's availability flag.
type UpdateAvailabilityRequest struct {
	IsCurrentlyAvailable *bool `json:"isCurrentlyAvailable" validate:"required"`
}

// MentorService serves the public mentor directory and mentor self-service.
type MentorService struct {
	repo      mentorStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMentorService constructs a MentorService instance.
func NewMentorService(repo mentorStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MentorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Directory returns approved mentors ordered by rating, cache-first when the
// directory cache is enabled.
func (s *MentorService) Directory(ctx context.Context) ([]models.Mentor, error) {
	var mentors []models.Mentor
	if hit, err := s.cache.Get(ctx, directoryCacheKey, &mentors); err == nil && hit {
		return mentors, nil
	}

	mentors, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}

	if err := s.cache.Set(ctx, directoryCacheKey, mentors, 0); err != nil {
		s.logger.Warn("failed to cache mentor directory", zap.Error(err))
	}
	return mentors, nil
}

// PublicProfile returns a single approved mentor. Pending and rejected mentors
// are indistinguishable from absent ones.
func (s *MentorService) PublicProfile(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch mentor")
	}
	if mentor.VerificationStatus != models.VerificationApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
	}
	return mentor, nil
}

// OwnProfile returns the caller's mentor record regardless of verification
// status. A rejected mentor can still see their own profile.
func (s *MentorService) OwnProfile(ctx context.Context, mentorID string) (*models.Mentor, error) {
	mentor, err := s.repo.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch mentor")
	}
	return mentor, nil
}

// UpdateProfile applies a partial update to the mentor-writable fields and
// returns the refreshed record.
func (s *MentorService) UpdateProfile(ctx context.Context, mentorID string, req UpdateMentorProfileRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	mentor, err := s.repo.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch mentor")
	}

	profile := mentor.MentorProfile
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			profile.Phone = nil
		} else {
			if exists, err := s.repo.ExistsByPhone(ctx, *req.Phone, mentorID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate phone")
			} else if exists {
				return nil, appErrors.Clone(appErrors.ErrValidation, "phone already registered")
			}
			profile.Phone = req.Phone
		}
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Expertise != nil {
		profile.Expertise = pq.StringArray(req.Expertise)
	}
	if req.Service != nil {
		profile.Service = *req.Service
	}
	if req.AvailableHours != nil {
		profile.AvailableHours = *req.AvailableHours
	}
	if req.IsCurrentlyAvailable != nil {
		profile.IsCurrentlyAvailable = *req.IsCurrentlyAvailable
	}

	if err := s.repo.UpdateProfile(ctx, mentorID, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	mentor.MentorProfile = profile

	s.invalidateDirectory(ctx)
	s.logger.Info("mentor profile updated", zap.String("mentor_id", mentorID))
	return mentor, nil
}

// UpdateAvailability flips the availability flag without touching the rest of
// the profile.
func (s *MentorService) UpdateAvailability(ctx context.Context, mentorID string, req UpdateAvailabilityRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "isCurrentlyAvailable is required")
	}
	return s.UpdateProfile(ctx, mentorID, UpdateMentorProfileRequest{IsCurrentlyAvailable: req.IsCurrentlyAvailable})
}

// invalidateDirectory drops the cached listing after any write that changes
// what the public directory shows.
func (s *MentorService) invalidateDirectory(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, directoryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate mentor directory cache", zap.Error(err))
	}
}

// InvalidateDirectory exposes cache invalidation to collaborating services
// that mutate mentor visibility or reputation.
func (s *MentorService) InvalidateDirectory(ctx context.Context) {
	s.invalidateDirectory(ctx)
}
