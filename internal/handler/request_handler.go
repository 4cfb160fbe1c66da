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

type requestService interface {
	Create(ctx context.Context, studentID string, req service.CreateRequestRequest) (*models.Request, error)
	UpdateStatus(ctx context.Context, mentorID, requestID string, req service.UpdateRequestStatusRequest) (*models.Request, error)
	ListMine(ctx context.Context, studentID string) ([]models.StudentRequestView, error)
	ListAssigned(ctx context.Context, mentorID string) ([]models.MentorRequestView, error)
}

type reviewService interface {
	Complete(ctx context.Context, studentID, requestID string, req service.CompleteRequestRequest) (*service.CompletionResult, error)
}

// RequestHandler exposes the mentoring request lifecycle endpoints.
type RequestHandler struct {
	requests requestService
	reviews  reviewService
}

// NewRequestHandler builds a new handler.
func NewRequestHandler(requests requestService, reviews reviewService) *RequestHandler {
	return &RequestHandler{requests: requests, reviews: reviews}
}

// Create godoc
// @Summary Create a mentoring request
// @Description Opens a PENDING request against an approved mentor
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	request, err := h.requests.Create(c.Request.Context(), principal.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListMine godoc
// @Summary List own requests
// @Description Student's requests with mentor contact and reviews, newest first
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/me [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.requests.ListMine(c.Request.Context(), principal.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// ListAssigned godoc
// @Summary List requests assigned to the mentor
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/mentor/me [get]
func (h *RequestHandler) ListAssigned(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.requests.ListAssigned(c.Request.Context(), principal.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// UpdateStatus godoc
// @Summary Accept or decline a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateRequestStatusRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/status [patch]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	request, err := h.requests.UpdateStatus(c.Request.Context(), principal.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Complete godoc
// @Summary Complete an accepted request with a review
// @Description Transitions the request to COMPLETED and recomputes the mentor's reputation
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.CompleteRequestRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CompleteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	result, err := h.reviews.Complete(c.Request.Context(), principal.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
