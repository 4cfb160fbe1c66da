package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

// ErrNotAccepted is returned when a completion is attempted on a request that
// is not in ACCEPTED state.
var ErrNotAccepted = errors.New("request is not in accepted state")

// ReviewRepository owns the completion workflow: review creation plus the full
// reputation recomputation, in a single transaction.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CompleteAndReview transitions the student's request from ACCEPTED to
// COMPLETED, creates the review, and recomputes the mentor's reputation over
// the full set of completed requests. The request row is selected by
// (id, student_id) so a missing request and someone else's request are
// indistinguishable (both sql.ErrNoRows). The mentor row is locked for the
// duration of the recomputation, serializing concurrent completions per
// mentor.
func (r *ReviewRepository) CompleteAndReview(ctx context.Context, requestID, studentID string, rating int, comment string) (*models.Request, *models.Review, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin completion: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var request models.Request
	if err := tx.GetContext(ctx, &request,
		"SELECT * FROM requests WHERE id = $1 AND student_id = $2 FOR UPDATE", requestID, studentID); err != nil {
		return nil, nil, err
	}
	if request.Status != models.RequestAccepted {
		return nil, nil, ErrNotAccepted
	}

	var mentorID string
	if err := tx.GetContext(ctx, &mentorID, "SELECT id FROM mentors WHERE id = $1 FOR UPDATE", request.MentorID); err != nil {
		return nil, nil, fmt.Errorf("lock mentor: %w", err)
	}

	now := time.Now().UTC()
	review := &models.Review{
		ID:        uuid.NewString(),
		RequestID: request.ID,
		StudentID: studentID,
		MentorID:  request.MentorID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	}
	const insertReview = `INSERT INTO reviews (id, request_id, student_id, mentor_id, rating, comment, created_at)
        VALUES (:id, :request_id, :student_id, :mentor_id, :rating, :comment, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertReview, review); err != nil {
		return nil, nil, fmt.Errorf("create review: %w", err)
	}

	const completeRequest = `UPDATE requests SET status = $2, review_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, completeRequest, request.ID, models.RequestCompleted, review.ID, now); err != nil {
		return nil, nil, fmt.Errorf("complete request: %w", err)
	}
	request.Status = models.RequestCompleted
	request.ReviewID = &review.ID
	request.UpdatedAt = now

	snapshot, err := recomputeReputation(ctx, tx, request.MentorID)
	if err != nil {
		return nil, nil, err
	}

	const updateReputation = `UPDATE mentors SET rating_avg = $2, rating_count = $3, students_mentored = $4, updated_at = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateReputation,
		request.MentorID, snapshot.RatingAvg, snapshot.RatingCount, snapshot.StudentsMentored, now); err != nil {
		return nil, nil, fmt.Errorf("update mentor reputation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit completion: %w", err)
	}
	return &request, review, nil
}

// recomputeReputation derives the mentor aggregates from scratch: mean rating
// and count over reviews of completed requests, plus the number of distinct
// students with at least one completed request. Full recomputation, never an
// incremental patch, so the stored values cannot drift from the review set.
func recomputeReputation(ctx context.Context, tx *sqlx.Tx, mentorID string) (models.ReputationSnapshot, error) {
	var snapshot models.ReputationSnapshot

	const aggregate = `SELECT COALESCE(AVG(r.rating), 0), COUNT(r.id)
        FROM reviews r
        JOIN requests q ON q.id = r.request_id
        WHERE r.mentor_id = $1 AND q.status = $2`
	if err := tx.QueryRowContext(ctx, aggregate, mentorID, models.RequestCompleted).
		Scan(&snapshot.RatingAvg, &snapshot.RatingCount); err != nil {
		return snapshot, fmt.Errorf("aggregate ratings: %w", err)
	}

	const mentees = `SELECT COUNT(DISTINCT student_id) FROM requests WHERE mentor_id = $1 AND status = $2`
	if err := tx.QueryRowContext(ctx, mentees, mentorID, models.RequestCompleted).
		Scan(&snapshot.StudentsMentored); err != nil {
		return snapshot, fmt.Errorf("count mentees: %w", err)
	}

	return snapshot, nil
}
