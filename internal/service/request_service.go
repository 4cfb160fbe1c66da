package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.Request) error
	FindByID(ctx context.Context, id string) (*models.Request, error)
	TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus) (*models.Request, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentRequestView, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.MentorRequestView, error)
}

type requestMentorStore interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

type requestNotifier interface {
	RequestCreated(request *models.Request)
	RequestResolved(request *models.Request)
}

// CreateRequestRequest is the student-facing payload for a new request.
type CreateRequestRequest struct {
	MentorID    string     `json:"mentorId" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// UpdateRequestStatusRequest is the mentor-facing decision payload.
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required"`
}

// RequestService owns the mentoring request lifecycle up to, but not
// including, completion.
type RequestService struct {
	requests  requestStore
	mentors   requestMentorStore
	notifier  requestNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs a RequestService instance.
func NewRequestService(requests requestStore, mentors requestMentorStore, notifier requestNotifier, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{requests: requests, mentors: mentors, notifier: notifier, validator: validate, logger: logger}
}

// Create opens a PENDING request from the student to an approved mentor.
func (s *RequestService) Create(ctx context.Context, studentID string, req CreateRequestRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	mentor, err := s.mentors.FindByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch mentor")
	}
	if mentor.VerificationStatus != models.VerificationApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mentor is not accepting requests")
	}

	request := &models.Request{
		StudentID:   studentID,
		MentorID:    mentor.ID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		Status:      models.RequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	if s.notifier != nil {
		s.notifier.RequestCreated(request)
	}
	s.logger.Info("request created",
		zap.String("request_id", request.ID),
		zap.String("student_id", studentID),
		zap.String("mentor_id", mentor.ID))
	return request, nil
}

// UpdateStatus applies the mentor's decision on a pending request. Only the
// assigned mentor may decide, only from PENDING, and only to ACCEPTED or
// DECLINED. Ownership is checked before state so a wrong mentor gets 403 even
// on an already-resolved request.
func (s *RequestService) UpdateStatus(ctx context.Context, mentorID, requestID string, req UpdateRequestStatusRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status is required")
	}
	if req.Status != models.RequestAccepted && req.Status != models.RequestDeclined {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be ACCEPTED or DECLINED")
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	if request.MentorID != mentorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is assigned to another mentor")
	}
	if request.Status != models.RequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been resolved")
	}

	updated, err := s.requests.TransitionStatus(ctx, requestID, models.RequestPending, req.Status)
	if err != nil {
		// A concurrent decision won the race between the read above and
		// this conditional update.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been resolved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}

	if s.notifier != nil {
		s.notifier.RequestResolved(updated)
	}
	s.logger.Info("request resolved",
		zap.String("request_id", updated.ID),
		zap.String("mentor_id", mentorID),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// ListMine returns the student's requests with mentor contact and any review.
func (s *RequestService) ListMine(ctx context.Context, studentID string) ([]models.StudentRequestView, error) {
	views, err := s.requests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return views, nil
}

// ListAssigned returns the requests addressed to the mentor with student
// contact details. Available to the mentor regardless of verification status.
func (s *RequestService) ListAssigned(ctx context.Context, mentorID string) ([]models.MentorRequestView, error) {
	views, err := s.requests.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return views, nil
}
