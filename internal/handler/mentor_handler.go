package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	appErrors "github.com/bodhmantraa/bodhmantraa-api/pkg/errors"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/response"
)

type mentorService interface {
	Directory(ctx context.Context) ([]models.Mentor, error)
	PublicProfile(ctx context.Context, id string) (*models.Mentor, error)
	OwnProfile(ctx context.Context, mentorID string) (*models.Mentor, error)
	UpdateProfile(ctx context.Context, mentorID string, req service.UpdateMentorProfileRequest) (*models.Mentor, error)
	UpdateAvailability(ctx context.Context, mentorID string, req service.UpdateAvailabilityRequest) (*models.Mentor, error)
}

// MentorHandler exposes the public directory and mentor self-service
// endpoints.
type MentorHandler struct {
	service mentorService
}

// NewMentorHandler builds a new handler.
func NewMentorHandler(service mentorService) *MentorHandler {
	return &MentorHandler{service: service}
}

// List godoc
// @Summary List approved mentors
// @Description Public directory of approved mentors, highest rated first
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.service.Directory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// Get godoc
// @Summary Get an approved mentor
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id} [get]
func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.service.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// MyProfile godoc
// @Summary Get own mentor profile
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /mentors/me/profile [get]
func (h *MentorHandler) MyProfile(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	mentor, err := h.service.OwnProfile(c.Request.Context(), principal.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// UpdateProfile godoc
// @Summary Update own mentor profile
// @Description Updates the mentor-writable fields only
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body service.UpdateMentorProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /mentors/me/profile [put]
func (h *MentorHandler) UpdateProfile(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateMentorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	mentor, err := h.service.UpdateProfile(c.Request.Context(), principal.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}

// UpdateAvailability godoc
// @Summary Toggle own availability
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body service.UpdateAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /mentors/me/availability [put]
func (h *MentorHandler) UpdateAvailability(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}

	mentor, err := h.service.UpdateAvailability(c.Request.Context(), principal.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor, nil)
}
