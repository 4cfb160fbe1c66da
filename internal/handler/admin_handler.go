package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/response"
)

type adminService interface {
	SetMentorVerification(ctx context.Context, mentorID string, status models.VerificationStatus) (*models.Mentor, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListMentors(ctx context.Context, filter models.MentorStatusFilter) ([]models.Mentor, error)
	ListRequests(ctx context.Context) ([]models.AdminRequestView, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
	ExportRequests(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// AdminHandler exposes moderation and oversight endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ApproveMentor godoc
// @Summary Approve a mentor application
// @Tags Admin
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/mentors/{id}/approve [put]
func (h *AdminHandler) ApproveMentor(c *gin.Context) {
	mentor, err := h.service.SetMentorVerification(c.Request.Context(), c.Param("id"), models.VerificationApproved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// RejectMentor godoc
// @Summary Reject a mentor application
// @Tags Admin
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/mentors/{id}/reject [put]
func (h *AdminHandler) RejectMentor(c *gin.Context) {
	mentor, err := h.service.SetMentorVerification(c.Request.Context(), c.Param("id"), models.VerificationRejected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// ListStudents godoc
// @Summary List all students
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ListMentors godoc
// @Summary List all mentors
// @Tags Admin
// @Produce json
// @Param status query string false "Verification status filter"
// @Success 200 {object} response.Envelope
// @Router /admin/mentors [get]
func (h *AdminHandler) ListMentors(c *gin.Context) {
	filter := models.MentorStatusFilter{Status: models.VerificationStatus(c.Query("status"))}
	mentors, err := h.service.ListMentors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// ListRequests godoc
// @Summary List all mentoring requests
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/requests [get]
func (h *AdminHandler) ListRequests(c *gin.Context) {
	requests, err := h.service.ListRequests(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// ListUsers godoc
// @Summary List all platform users
// @Description Students and mentors merged into one role-tagged listing
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// Stats godoc
// @Summary Platform statistics
// @Description Live counters, never cached
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportRequests godoc
// @Summary Export the request ledger
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/exports/requests [get]
func (h *AdminHandler) ExportRequests(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))

	file, err := h.service.ExportRequests(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
