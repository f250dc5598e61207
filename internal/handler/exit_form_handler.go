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

type exitFormService interface {
	Upsert(ctx context.Context, req dto.UpsertExitFormRequest) (*models.ExitForm, error)
	Get(ctx context.Context, id string) (*models.ExitForm, error)
	GetByBooking(ctx context.Context, bookingID string) (*models.ExitForm, error)
	ListByUser(ctx context.Context, userID string) ([]models.ExitForm, error)
}

// ExitFormHandler exposes end-of-loan survey endpoints.
type ExitFormHandler struct {
	service exitFormService
}

// NewExitFormHandler builds a new handler.
func NewExitFormHandler(service exitFormService) *ExitFormHandler {
	return &ExitFormHandler{service: service}
}

// Upsert godoc
// @Summary Create or replace the exit form for a booking
// @Tags ExitForms
// @Accept json
// @Produce json
// @Param payload body dto.UpsertExitFormRequest true "Survey answers"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exit-forms [put]
func (h *ExitFormHandler) Upsert(c *gin.Context) {
	var req dto.UpsertExitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid exit form payload"))
		return
	}

	form, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Get godoc
// @Summary Get an exit form by id
// @Tags ExitForms
// @Produce json
// @Param id path string true "Exit form id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exit-forms/{id} [get]
func (h *ExitFormHandler) Get(c *gin.Context) {
	form, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// GetByBooking godoc
// @Summary Get the exit form attached to a booking
// @Tags ExitForms
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exit-forms/booking/{id} [get]
func (h *ExitFormHandler) GetByBooking(c *gin.Context) {
	form, err := h.service.GetByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// ListByUser godoc
// @Summary List the exit forms filed by a rider
// @Tags ExitForms
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exit-forms/user/{id} [get]
func (h *ExitFormHandler) ListByUser(c *gin.Context) {
	forms, err := h.service.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, forms, nil)
}
