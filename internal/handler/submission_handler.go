package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
	"github.com/bicired/bicired-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, userID string, req dto.CreateSubmissionRequest) (*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	GetByUser(ctx context.Context, userID string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	Reassign(ctx context.Context, id string, req dto.ReassignSubmissionRequest) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionHandler exposes loan application endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler builds a new handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Create godoc
// @Summary Apply for a bicycle model
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Requested model"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}

	submission, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List pending submissions, oldest first
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	out, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Get godoc
// @Summary Get a submission by id
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Mine godoc
// @Summary Get the caller's pending submission
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/mine [get]
func (h *SubmissionHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	submission, err := h.service.GetByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Reassign godoc
// @Summary Move a submission to another model
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body dto.ReassignSubmissionRequest true "New model"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/reassign [put]
func (h *SubmissionHandler) Reassign(c *gin.Context) {
	var req dto.ReassignSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reassign payload"))
		return
	}

	submission, err := h.service.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Delete godoc
// @Summary Withdraw a submission
// @Tags Submissions
// @Param id path string true "Submission id"
// @Success 204
// @Security BearerAuth
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
