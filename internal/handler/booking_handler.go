package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
	"github.com/bicired/bicired-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (*models.Booking, error)
	Terminate(ctx context.Context, req dto.TerminateBookingRequest) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
}

// BookingHandler exposes loan endpoints.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler builds a new handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param user_id query string false "Filter by rider"
// @Param active query bool false "Only open or only closed loans"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		UserID: c.Query("user_id"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a booking by id
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Mine godoc
// @Summary Get the caller's open loan
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/mine [get]
func (h *BookingHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	booking, err := h.service.GetActiveByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Create godoc
// @Summary Open a loan from a submission
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Loan payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid booking payload"))
		return
	}

	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Update godoc
// @Summary Update an open loan
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param payload body dto.UpdateBookingRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid booking payload"))
		return
	}

	booking, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Terminate godoc
// @Summary Close the open loan holding a bicycle
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.TerminateBookingRequest true "Bicycle QR code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/terminate [post]
func (h *BookingHandler) Terminate(c *gin.Context) {
	var req dto.TerminateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid terminate payload"))
		return
	}

	booking, err := h.service.Terminate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Delete godoc
// @Summary Delete a booking record
// @Tags Bookings
// @Param id path string true "Booking id"
// @Success 204
// @Security BearerAuth
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
