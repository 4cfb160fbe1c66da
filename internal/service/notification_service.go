package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/config"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/jobs"
)

const (
	notificationRequestCreated  = "request.created"
	notificationRequestResolved = "request.resolved"
)

type mentorNotification struct {
	RequestID string
	StudentID string
	MentorID  string
	Status    models.RequestStatus
}

// NotificationService dispatches best-effort notifications about request
// lifecycle events through an in-process worker queue. Delivery failures never
// affect the request itself.
type NotificationService struct {
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService constructs a notification service. When disabled all
// operations are no-ops.
func NewNotificationService(cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{logger: logger, enabled: cfg.Enabled}
	if !cfg.Enabled {
		return s
	}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.Options{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.queue == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *NotificationService) Stop() {
	if s == nil || s.queue == nil {
		return
	}
	s.queue.Stop()
}

// RequestCreated notifies the mentor about a new incoming request.
func (s *NotificationService) RequestCreated(request *models.Request) {
	s.enqueue(notificationRequestCreated, request)
}

// RequestResolved notifies the student that the mentor accepted, declined, or
// that the request was completed.
func (s *NotificationService) RequestResolved(request *models.Request) {
	s.enqueue(notificationRequestResolved, request)
}

func (s *NotificationService) enqueue(event string, request *models.Request) {
	if s == nil || s.queue == nil || request == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: event,
		Payload: mentorNotification{
			RequestID: request.ID,
			StudentID: request.StudentID,
			MentorID:  request.MentorID,
			Status:    request.Status,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("event", event), zap.Error(err))
	}
}

// deliver is the queue handler. There is no external channel wired yet, so
// delivery is a structured log line consumed by the ops pipeline.
func (s *NotificationService) deliver(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(mentorNotification)
	if !ok {
		s.logger.Warn("dropping notification with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	s.logger.Info("notification dispatched",
		zap.String("event", job.Type),
		zap.String("request_id", payload.RequestID),
		zap.String("student_id", payload.StudentID),
		zap.String("mentor_id", payload.MentorID),
		zap.String("status", string(payload.Status)),
	)
	return nil
}
