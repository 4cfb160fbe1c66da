package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type completionStoreStub struct {
	request *models.Request
	review  *models.Review
	err     error

	gotRequestID string
	gotStudentID string
	gotRating    int
}

func (s *completionStoreStub) CompleteAndReview(ctx context.Context, requestID, studentID string, rating int, comment string) (*models.Request, *models.Review, error) {
	s.gotRequestID = requestID
	s.gotStudentID = studentID
	s.gotRating = rating
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.request, s.review, nil
}

type invalidatorStub struct {
	calls int
}

func (s *invalidatorStub) InvalidateDirectory(ctx context.Context) { s.calls++ }

func TestReviewServiceComplete(t *testing.T) {
	reviewID := "rev-1"
	store := &completionStoreStub{
		request: &models.Request{ID: "r-1", StudentID: "s-1", MentorID: "m-1", Status: models.RequestCompleted, ReviewID: &reviewID},
		review:  &models.Review{ID: reviewID, RequestID: "r-1", Rating: 5},
	}
	invalidator := &invalidatorStub{}
	svc := NewReviewService(store, invalidator, nil, zap.NewNop())

	result, err := svc.Complete(context.Background(), "s-1", "r-1", CompleteRequestRequest{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, result.Request.Status)
	assert.Equal(t, 5, result.Review.Rating)
	assert.Equal(t, "r-1", store.gotRequestID)
	assert.Equal(t, "s-1", store.gotStudentID)
	assert.Equal(t, 1, invalidator.calls)
}

func TestReviewServiceCompleteRatingOutOfRange(t *testing.T) {
	store := &completionStoreStub{}
	svc := NewReviewService(store, nil, nil, zap.NewNop())

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Complete(context.Background(), "s-1", "r-1", CompleteRequestRequest{Rating: rating})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, store.gotRequestID)
}

func TestReviewServiceCompleteNotFound(t *testing.T) {
	svc := NewReviewService(&completionStoreStub{err: sql.ErrNoRows}, nil, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s-1", "r-404", CompleteRequestRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReviewServiceCompleteNotAccepted(t *testing.T) {
	svc := NewReviewService(&completionStoreStub{err: repository.ErrNotAccepted}, nil, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s-1", "r-1", CompleteRequestRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
