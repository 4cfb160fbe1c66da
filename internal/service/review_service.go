package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type completionStore interface {
	CompleteAndReview(ctx context.Context, requestID, studentID string, rating int, comment string) (*models.Request, *models.Review, error)
}

type directoryInvalidator interface {
	InvalidateDirectory(ctx context.Context)
}

// CompleteRequestRequest carries the student's closing review.
type CompleteRequestRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CompletionResult is the combined outcome of a completion.
type CompletionResult struct {
	Request *models.Request `json:"request"`
	Review  *models.Review  `json:"review"`
}

// ReviewService closes accepted requests with a review and keeps mentor
// reputation in sync.
type ReviewService struct {
	repo      completionStore
	directory directoryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(repo completionStore, directory directoryInvalidator, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{repo: repo, directory: directory, validator: validate, logger: logger}
}

// Complete transitions the student's ACCEPTED request to COMPLETED, records
// the review, and recomputes the mentor's aggregates atomically. A request
// that is missing or belongs to another student yields the same not-found
// error.
func (s *ReviewService) Complete(ctx context.Context, studentID, requestID string, req CompleteRequestRequest) (*CompletionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	request, review, err := s.repo.CompleteAndReview(ctx, requestID, studentID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		if errors.Is(err, repository.ErrNotAccepted) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request must be accepted before completion")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete request")
	}

	// Directory ordering depends on rating averages.
	if s.directory != nil {
		s.directory.InvalidateDirectory(ctx)
	}

	s.logger.Info("request completed",
		zap.String("request_id", request.ID),
		zap.String("student_id", studentID),
		zap.String("mentor_id", request.MentorID),
		zap.Int("rating", review.Rating))
	return &CompletionResult{Request: request, Review: review}, nil
}
