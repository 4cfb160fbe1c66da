package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
)

type adminServiceMock struct {
	mentor     *models.Mentor
	mentorErr  error
	export     *service.ExportFile
	exportErr  error
	lastStatus models.VerificationStatus
	lastFilter models.MentorStatusFilter
	lastFormat service.ExportFormat
}

func (m *adminServiceMock) SetMentorVerification(ctx context.Context, mentorID string, status models.VerificationStatus) (*models.Mentor, error) {
	m.lastStatus = status
	return m.mentor, m.mentorErr
}

func (m *adminServiceMock) ListStudents(ctx context.Context) ([]models.Student, error) {
	return nil, nil
}

func (m *adminServiceMock) ListMentors(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error) {
	m.lastFilter = filter
	return nil, nil
}

func (m *adminServiceMock) ListRequests(ctx context.Context) ([]models.AdminRequestView, error) {
	return nil, nil
}

func (m *adminServiceMock) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return nil, nil
}

func (m *adminServiceMock) Stats(ctx context.Context) (*models.PlatformStats, error) {
	return &models.PlatformStats{}, nil
}

func (m *adminServiceMock) ExportRequests(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error) {
	m.lastFormat = format
	return m.export, m.exportErr
}

func TestAdminHandlerApproveMentor(t *testing.T) {
	mockSvc := &adminServiceMock{mentor: &models.Mentor{ID: "m-1", VerificationStatus: models.VerificationApproved}}
	handler := NewAdminHandler(mockSvc)

	c, w := testContext(t, http.MethodPut, "/admin/mentors/m-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-1"}}

	handler.ApproveMentor(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VerificationApproved, mockSvc.lastStatus)
}

func TestAdminHandlerRejectMissingMentor(t *testing.T) {
	mockSvc := &adminServiceMock{mentorErr: appErrors.Clone(appErrors.ErrNotFound, "mentor not found")}
	handler := NewAdminHandler(mockSvc)

	c, w := testContext(t, http.MethodPut, "/admin/mentors/m-404/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-404"}}

	handler.RejectMentor(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.VerificationRejected, mockSvc.lastStatus)
}

func TestAdminHandlerListMentorsPassesFilter(t *testing.T) {
	mockSvc := &adminServiceMock{}
	handler := NewAdminHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/admin/mentors?status=pending", nil)

	handler.ListMentors(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VerificationPending, mockSvc.lastFilter.Status)
}

func TestAdminHandlerExportRequestsDefaultsToCSV(t *testing.T) {
	mockSvc := &adminServiceMock{
		export: &service.ExportFile{
			Content:     []byte("ID,Student\n"),
			ContentType: "text/csv",
			Filename:    "requests-20260831.csv",
		},
	}
	handler := NewAdminHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/admin/exports/requests", nil)

	handler.ExportRequests(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportCSV, mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "requests-20260831.csv")
}
