package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

// RequestRepository manages persistence for mentoring requests and their
// enriched listings.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request in PENDING state.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO requests (id, student_id, mentor_id, title, description, status, scheduled_at, review_id, created_at, updated_at)
        VALUES (:id, :student_id, :mentor_id, :title, :description, :status, :scheduled_at, :review_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID fetches a request by ID.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	var request models.Request
	if err := r.db.GetContext(ctx, &request, "SELECT * FROM requests WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &request, nil
}

// TransitionStatus atomically moves a request from one status to another.
// Returns sql.ErrNoRows when the request is no longer in the expected state,
// so racing transitions cannot double-apply.
func (r *RequestRepository) TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus) (*models.Request, error) {
	const query = `UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2 RETURNING *`
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id, from, to, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByStudent returns the student's own requests newest first, each with the
// mentor summary and its review once completed.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentRequestView, error) {
	const query = `SELECT q.id, q.student_id, q.mentor_id, q.title, q.description, q.status, q.scheduled_at, q.review_id, q.created_at, q.updated_at,
        m.id AS "mentor.id", m.name AS "mentor.name", m.email AS "mentor.email", m.phone AS "mentor.phone"
        FROM requests q
        JOIN mentors m ON m.id = q.mentor_id
        WHERE q.student_id = $1
        ORDER BY q.created_at DESC`
	var views []models.StudentRequestView
	if err := r.db.SelectContext(ctx, &views, query, studentID); err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}

	reviews, err := r.reviewsForRequests(ctx, collectRequestIDs(views))
	if err != nil {
		return nil, err
	}
	for i := range views {
		if rev, ok := reviews[views[i].ID]; ok {
			views[i].Review = rev
		}
	}
	return views, nil
}

// ListByMentor returns requests addressed to the mentor newest first, each
// with the student contact.
func (r *RequestRepository) ListByMentor(ctx context.Context, mentorID string) ([]models.MentorRequestView, error) {
	const query = `SELECT q.id, q.student_id, q.mentor_id, q.title, q.description, q.status, q.scheduled_at, q.review_id, q.created_at, q.updated_at,
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email", s.phone AS "student.phone"
        FROM requests q
        JOIN students s ON s.id = q.student_id
        WHERE q.mentor_id = $1
        ORDER BY q.created_at DESC`
	var views []models.MentorRequestView
	if err := r.db.SelectContext(ctx, &views, query, mentorID); err != nil {
		return nil, fmt.Errorf("list mentor requests: %w", err)
	}
	return views, nil
}

// ListAll returns every request newest first with both party summaries, for
// admin moderation.
func (r *RequestRepository) ListAll(ctx context.Context) ([]models.AdminRequestView, error) {
	const query = `SELECT q.id, q.student_id, q.mentor_id, q.title, q.description, q.status, q.scheduled_at, q.review_id, q.created_at, q.updated_at,
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email", s.phone AS "student.phone",
        m.id AS "mentor.id", m.name AS "mentor.name", m.email AS "mentor.email", m.phone AS "mentor.phone"
        FROM requests q
        JOIN students s ON s.id = q.student_id
        JOIN mentors m ON m.id = q.mentor_id
        ORDER BY q.created_at DESC`
	var views []models.AdminRequestView
	if err := r.db.SelectContext(ctx, &views, query); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	ids := make([]string, 0, len(views))
	for _, v := range views {
		if v.ReviewID != nil {
			ids = append(ids, v.ID)
		}
	}
	reviews, err := r.reviewsForRequests(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if rev, ok := reviews[views[i].ID]; ok {
			views[i].Review = rev
		}
	}
	return views, nil
}

// Count returns the total number of requests.
func (r *RequestRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests"); err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return total, nil
}

func (r *RequestRepository) reviewsForRequests(ctx context.Context, requestIDs []string) (map[string]*models.Review, error) {
	out := make(map[string]*models.Review, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In("SELECT * FROM reviews WHERE request_id IN (?)", requestIDs)
	if err != nil {
		return nil, fmt.Errorf("build review lookup: %w", err)
	}
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	for i := range reviews {
		out[reviews[i].RequestID] = &reviews[i]
	}
	return out, nil
}

func collectRequestIDs(views []models.StudentRequestView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		if v.ReviewID != nil {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
