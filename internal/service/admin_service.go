package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/export"
)

type adminStudentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	Count(ctx context.Context) (int, error)
}

type adminMentorStore interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	ListAll(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error)
	UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) error
	Count(ctx context.Context, status models.VerificationStatus) (int, error)
}

type adminRequestStore interface {
	ListAll(ctx context.Context) ([]models.AdminRequestView, error)
	Count(ctx context.Context) (int, error)
}

// ExportFormat names a supported request ledger export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

type exportArchiver interface {
	Save(filename string, data []byte) (string, error)
}

// AdminService covers moderation, platform oversight, and exports.
type AdminService struct {
	students  adminStudentStore
	mentors   adminMentorStore
	requests  adminRequestStore
	directory directoryInvalidator
	archive   exportArchiver
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService instance. The archive is
// optional; when set, every rendered export is also written to it.
func NewAdminService(students adminStudentStore, mentors adminMentorStore, requests adminRequestStore, directory directoryInvalidator, archive exportArchiver, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{students: students, mentors: mentors, requests: requests, directory: directory, archive: archive, logger: logger}
}

// SetMentorVerification moderates a mentor application. The overwrite is
// idempotent and reversible: a rejected mentor can be approved later.
func (s *AdminService) SetMentorVerification(ctx context.Context, mentorID string, status models.VerificationStatus) (*models.Mentor, error) {
	if status != models.VerificationApproved && status != models.VerificationRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}

	if err := s.mentors.UpdateVerification(ctx, mentorID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mentor")
	}

	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch mentor")
	}

	if s.directory != nil {
		s.directory.InvalidateDirectory(ctx)
	}
	s.logger.Info("mentor verification updated",
		zap.String("mentor_id", mentorID),
		zap.String("status", string(status)))
	return mentor, nil
}

// ListStudents returns every student, newest first.
func (s *AdminService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListMentors returns mentors of any verification state, optionally filtered.
func (s *AdminService) ListMentors(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error) {
	switch filter.Status {
	case "", models.VerificationPending, models.VerificationApproved, models.VerificationRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown verification status filter")
	}

	mentors, err := s.mentors.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}
	return mentors, nil
}

// ListRequests returns the full request ledger with both parties and reviews.
func (s *AdminService) ListRequests(ctx context.Context) ([]models.AdminRequestView, error) {
	views, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return views, nil
}

// ListUsers returns students and mentors merged into one role-tagged listing,
// newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	mentors, err := s.mentors.ListAll(ctx, models.MentorStatusFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}

	users := make([]models.UserSummary, 0, len(students)+len(mentors))
	for _, st := range students {
		users = append(users, models.UserSummary{
			ID:        st.ID,
			Name:      st.Name,
			Email:     st.Email,
			Role:      models.RoleStudent,
			CreatedAt: st.CreatedAt,
		})
	}
	for _, m := range mentors {
		users = append(users, models.UserSummary{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Role:      models.RoleMentor,
			CreatedAt: m.CreatedAt,
		})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// Stats aggregates platform-wide counters.
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	totalMentors, err := s.mentors.Count(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mentors")
	}
	approvedMentors, err := s.mentors.Count(ctx, models.VerificationApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved mentors")
	}
	pendingMentors, err := s.mentors.Count(ctx, models.VerificationPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending mentors")
	}
	totalRequests, err := s.requests.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
	}

	return &models.PlatformStats{
		TotalUsers:      totalStudents + totalMentors,
		TotalStudents:   totalStudents,
		TotalMentors:    totalMentors,
		ApprovedMentors: approvedMentors,
		PendingMentors:  pendingMentors,
		TotalRequests:   totalRequests,
	}, nil
}

// ExportRequests renders the request ledger as CSV or PDF.
func (s *AdminService) ExportRequests(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	views, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	table := requestLedgerTable(views)
	stamp := time.Now().UTC().Format("20060102-150405")

	var file *ExportFile
	switch format {
	case ExportCSV:
		content, err := export.CSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		file = &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("requests-%s.csv", stamp),
		}
	case ExportPDF:
		content, err := export.PDF(table, "Mentoring Requests")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		file = &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("requests-%s.pdf", stamp),
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	// Archiving is best effort, a full disk must not block the download.
	if s.archive != nil {
		if _, err := s.archive.Save(file.Filename, file.Content); err != nil {
			s.logger.Warn("failed to archive export", zap.String("filename", file.Filename), zap.Error(err))
		}
	}

	return file, nil
}

func requestLedgerTable(views []models.AdminRequestView) export.Table {
	table := export.Table{
		Headers: []string{"ID", "Student", "Mentor", "Title", "Status", "Rating", "Scheduled At", "Created At"},
	}
	for _, v := range views {
		rating := ""
		if v.Review != nil {
			rating = strconv.Itoa(v.Review.Rating)
		}
		scheduled := ""
		if v.ScheduledAt != nil {
			scheduled = v.ScheduledAt.UTC().Format(time.RFC3339)
		}
		table.Rows = append(table.Rows, map[string]string{
			"ID":           v.ID,
			"Student":      v.Student.Name,
			"Mentor":       v.Mentor.Name,
			"Title":        v.Title,
			"Status":       string(v.Status),
			"Rating":       rating,
			"Scheduled At": scheduled,
			"Created At":   v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return table
}
