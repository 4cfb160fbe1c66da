package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type adminStudentStoreStub struct {
	students []models.Student
}

func (s *adminStudentStoreStub) ListAll(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

func (s *adminStudentStoreStub) Count(ctx context.Context) (int, error) {
	return len(s.students), nil
}

type adminMentorStoreStub struct {
	byID       map[string]*models.Mentor
	lastStatus models.VerificationStatus
}

func (s *adminMentorStoreStub) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	if m, ok := s.byID[id]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (s *adminMentorStoreStub) ListAll(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error) {
	out := make([]models.Mentor, 0, len(s.byID))
	for _, m := range s.byID {
		if filter.Status != "" && m.VerificationStatus != filter.Status {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *adminMentorStoreStub) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus) error {
	m, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.VerificationStatus = status
	s.lastStatus = status
	return nil
}

func (s *adminMentorStoreStub) Count(ctx context.Context, status models.VerificationStatus) (int, error) {
	if status == "" {
		return len(s.byID), nil
	}
	n := 0
	for _, m := range s.byID {
		if m.VerificationStatus == status {
			n++
		}
	}
	return n, nil
}

type adminRequestStoreStub struct {
	views []models.AdminRequestView
}

func (s *adminRequestStoreStub) ListAll(ctx context.Context) ([]models.AdminRequestView, error) {
	return s.views, nil
}

func (s *adminRequestStoreStub) Count(ctx context.Context) (int, error) {
	return len(s.views), nil
}

func TestAdminServiceApproveMentor(t *testing.T) {
	mentors := &adminMentorStoreStub{byID: map[string]*models.Mentor{
		"m-1": {ID: "m-1", VerificationStatus: models.VerificationPending},
	}}
	invalidator := &invalidatorStub{}
	svc := NewAdminService(&adminStudentStoreStub{}, mentors, &adminRequestStoreStub{}, invalidator, nil, zap.NewNop())

	mentor, err := svc.SetMentorVerification(context.Background(), "m-1", models.VerificationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, mentor.VerificationStatus)
	assert.Equal(t, 1, invalidator.calls)
}

func TestAdminServiceRejectAfterApproveIsAllowed(t *testing.T) {
	mentors := &adminMentorStoreStub{byID: map[string]*models.Mentor{
		"m-1": {ID: "m-1", VerificationStatus: models.VerificationApproved},
	}}
	svc := NewAdminService(&adminStudentStoreStub{}, mentors, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	mentor, err := svc.SetMentorVerification(context.Background(), "m-1", models.VerificationRejected)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, mentor.VerificationStatus)
}

func TestAdminServiceSetVerificationMissingMentor(t *testing.T) {
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	_, err := svc.SetMentorVerification(context.Background(), "m-404", models.VerificationApproved)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceSetVerificationRejectsPendingTarget(t *testing.T) {
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	_, err := svc.SetMentorVerification(context.Background(), "m-1", models.VerificationPending)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceStats(t *testing.T) {
	students := &adminStudentStoreStub{students: []models.Student{{ID: "s-1"}, {ID: "s-2"}}}
	mentors := &adminMentorStoreStub{byID: map[string]*models.Mentor{
		"m-1": {ID: "m-1", VerificationStatus: models.VerificationApproved},
		"m-2": {ID: "m-2", VerificationStatus: models.VerificationPending},
		"m-3": {ID: "m-3", VerificationStatus: models.VerificationRejected},
	}}
	requests := &adminRequestStoreStub{views: []models.AdminRequestView{{}, {}, {}, {}}}
	svc := NewAdminService(students, mentors, requests, nil, nil, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalMentors)
	assert.Equal(t, 1, stats.ApprovedMentors)
	assert.Equal(t, 1, stats.PendingMentors)
	assert.Equal(t, 4, stats.TotalRequests)
}

func TestAdminServiceListUsersMergedNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	students := &adminStudentStoreStub{students: []models.Student{
		{ID: "s-1", Name: "Asha", CreatedAt: now.Add(-2 * time.Hour)},
	}}
	mentors := &adminMentorStoreStub{byID: map[string]*models.Mentor{
		"m-1": {ID: "m-1", MentorProfile: models.MentorProfile{Name: "Ravi"}, CreatedAt: now},
	}}
	svc := NewAdminService(students, mentors, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "m-1", users[0].ID)
	assert.Equal(t, models.RoleMentor, users[0].Role)
	assert.Equal(t, models.RoleStudent, users[1].Role)
}

func TestAdminServiceListMentorsUnknownFilter(t *testing.T) {
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	_, err := svc.ListMentors(context.Background(), models.MentorStatusFilter{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceExportRequestsCSV(t *testing.T) {
	requests := &adminRequestStoreStub{views: []models.AdminRequestView{
		{
			Request: models.Request{ID: "r-1", Title: "Help with Go", Status: models.RequestCompleted, CreatedAt: time.Now()},
			Student: models.PartySummary{Name: "Asha"},
			Mentor:  models.PartySummary{Name: "Ravi"},
			Review:  &models.Review{Rating: 5},
		},
	}}
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, requests, nil, nil, zap.NewNop())

	file, err := svc.ExportRequests(context.Background(), ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	content := string(file.Content)
	assert.Contains(t, content, "ID,Student,Mentor,Title,Status,Rating")
	assert.Contains(t, content, "r-1,Asha,Ravi,Help with Go,COMPLETED,5")
}

type archiverStub struct {
	saved map[string][]byte
}

func (a *archiverStub) Save(filename string, data []byte) (string, error) {
	if a.saved == nil {
		a.saved = map[string][]byte{}
	}
	a.saved[filename] = data
	return filename, nil
}

func TestAdminServiceExportRequestsArchivesCopy(t *testing.T) {
	requests := &adminRequestStoreStub{views: []models.AdminRequestView{
		{
			Request: models.Request{ID: "r-1", Title: "Help with Go", Status: models.RequestPending, CreatedAt: time.Now()},
			Student: models.PartySummary{Name: "Asha"},
			Mentor:  models.PartySummary{Name: "Ravi"},
		},
	}}
	archive := &archiverStub{}
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, requests, nil, archive, zap.NewNop())

	file, err := svc.ExportRequests(context.Background(), ExportCSV)
	require.NoError(t, err)
	require.Len(t, archive.saved, 1)
	assert.Equal(t, file.Content, archive.saved[file.Filename])
}

func TestAdminServiceExportRequestsUnknownFormat(t *testing.T) {
	svc := NewAdminService(&adminStudentStoreStub{}, &adminMentorStoreStub{}, &adminRequestStoreStub{}, nil, nil, zap.NewNop())

	_, err := svc.ExportRequests(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
