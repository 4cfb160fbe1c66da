package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

// MentorRepository manages persistence for mentor accounts.
//
// Profile columns and reputation columns are written through separate methods
// so the write-authority boundary of the model holds at the persistence layer
// too: UpdateProfile never touches verification or reputation, and reputation
// is only written by the review aggregation transaction.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// Create inserts a new mentor record with pending verification.
func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	if mentor.VerificationStatus == "" {
		mentor.VerificationStatus = models.VerificationPending
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	const query = `INSERT INTO mentors (id, name, email, password_hash, phone, bio, expertise, service, id_card_url,
        verification_status, available_hours, is_currently_available, students_mentored, rating_avg, rating_count, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :phone, :bio, :expertise, :service, :id_card_url,
        :verification_status, :available_hours, :is_currently_available, :students_mentored, :rating_avg, :rating_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, "SELECT * FROM mentors WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// FindByEmail fetches a mentor by email.
func (r *MentorRepository) FindByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, "SELECT * FROM mentors WHERE email = $1", email); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// ExistsByEmail checks whether a mentor with the given email exists.
func (r *MentorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM mentors WHERE email = $1 LIMIT 1", email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check mentor email: %w", err)
	}
	return true, nil
}

// ExistsByPhone checks whether another mentor already uses the phone number.
func (r *MentorRepository) ExistsByPhone(ctx context.Context, phone string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM mentors WHERE phone = $1"
	args := []interface{}{phone}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check mentor phone: %w", err)
	}
	return true, nil
}

// ListApproved returns approved mentors ordered by rating, best first.
func (r *MentorRepository) ListApproved(ctx context.Context) ([]models.Mentor, error) {
	var mentors []models.Mentor
	const query = "SELECT * FROM mentors WHERE verification_status = $1 ORDER BY rating_avg DESC, created_at DESC"
	if err := r.db.SelectContext(ctx, &mentors, query, models.VerificationApproved); err != nil {
		return nil, fmt.Errorf("list approved mentors: %w", err)
	}
	return mentors, nil
}

// ListAll returns mentors newest first, optionally filtered by verification
// status.
func (r *MentorRepository) ListAll(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error) {
	query := "SELECT * FROM mentors"
	args := []interface{}{}
	if filter.Status != "" {
		query += " WHERE verification_status = $1"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC"

	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query, args...); err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	return mentors, nil
}

// UpdateProfile overwrites the mentor-writable columns only.
func (r *MentorRepository) UpdateProfile(ctx context.Context, id string, profile models.MentorProfile) error {
	const query = `UPDATE mentors SET name = :name, phone = :phone, bio = :bio, expertise = :expertise,
        service = :service, available_hours = :available_hours, is_currently_available = :is_currently_available,
        updated_at = :updated_at WHERE id = :id`
	arg := struct {
		models.MentorProfile
		ID        string    `db:"id"`
		UpdatedAt time.Time `db:"updated_at"`
	}{MentorProfile: profile, ID: id, UpdatedAt: time.Now().UTC()}
	res, err := r.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("update mentor profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateVerification overwrites the moderation status. The overwrite is
// idempotent and unrestricted: a rejected mentor can later be approved.
func (r *MentorRepository) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) error {
	const query = `UPDATE mentors SET verification_status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update mentor verification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of mentors, optionally narrowed to one status.
func (r *MentorRepository) Count(ctx context.Context, status models.VerificationStatus) (int, error) {
	query := "SELECT COUNT(*) FROM mentors"
	args := []interface{}{}
	if status != "" {
		query += " WHERE verification_status = $1"
		args = append(args, status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count mentors: %w", err)
	}
	return total, nil
}
