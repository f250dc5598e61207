package handler

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
	"github.com/bicired/bicired-api/pkg/response"
)

type scheduleService interface {
	GetTemplate(ctx context.Context) (*dto.ScheduleResponse, error)
	UpdateTemplate(ctx context.Context, req dto.UpdateScheduleRequest, updatedBy string) (*dto.ScheduleResponse, error)
	AvailableDates(ctx context.Context, userID string) (*dto.AvailableDatesResponse, error)
	ChooseDate(ctx context.Context, userID string, req dto.ChooseDateRequest) error
	Agenda(ctx context.Context, kind models.AgendaKind, year, month int) ([]models.AgendaEntry, error)
	RequestExport(ctx context.Context, req dto.CreateExportRequest, requestedBy string) (*models.ExportJob, error)
	ExportStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error)
	OpenExportFile(token string) (string, error)
}

// ScheduleHandler exposes the weekly template and availability endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Get godoc
// @Summary Get the weekly availability template
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	resp, err := h.service.GetTemplate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Update godoc
// @Summary Replace the weekly availability template
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.UpdateScheduleRequest true "Weekly grid, 6 rows of 8 booleans"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrMalformedSchedule)
		return
	}

	var updatedBy string
	if claims := claimsFromContext(c); claims != nil {
		updatedBy = claims.UserID
	}

	resp, err := h.service.UpdateTemplate(c.Request.Context(), req, updatedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Available godoc
// @Summary List the instants the caller may schedule
// @Description Returns pickup instants for riders with a pending submission
// @Description and return instants for riders holding a bicycle.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedule/available [get]
func (h *ScheduleHandler) Available(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resp, err := h.service.AvailableDates(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ChooseDate godoc
// @Summary Commit a pickup or return instant
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ChooseDateRequest true "Chosen instant"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /schedule/date [put]
func (h *ScheduleHandler) ChooseDate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ChooseDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrInvalidDate)
		return
	}

	if err := h.service.ChooseDate(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BookingAgenda godoc
// @Summary Monthly calendar of scheduled returns
// @Tags Schedule
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month 1-12, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /schedule/booking [get]
func (h *ScheduleHandler) BookingAgenda(c *gin.Context) {
	h.agenda(c, models.AgendaReturns)
}

// SubmissionAgenda godoc
// @Summary Monthly calendar of scheduled pickups
// @Tags Schedule
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month 1-12, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /schedule/submission [get]
func (h *ScheduleHandler) SubmissionAgenda(c *gin.Context) {
	h.agenda(c, models.AgendaPickups)
}

func (h *ScheduleHandler) agenda(c *gin.Context, kind models.AgendaKind) {
	var query dto.AgendaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid agenda query"))
		return
	}

	entries, err := h.service.Agenda(c.Request.Context(), kind, query.Year, query.Month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// CreateExport godoc
// @Summary Enqueue an agenda export
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /schedule/exports [post]
func (h *ScheduleHandler) CreateExport(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export payload"))
		return
	}

	var requestedBy string
	if claims := claimsFromContext(c); claims != nil {
		requestedBy = claims.UserID
	}

	job, err := h.service.RequestExport(c.Request.Context(), req, requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Check an agenda export job
// @Tags Schedule
// @Produce json
// @Param id path string true "Export job id"
// @Success 200 {object} response.Envelope
// @Router /schedule/exports/{id} [get]
func (h *ScheduleHandler) ExportStatus(c *gin.Context) {
	resp, err := h.service.ExportStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// DownloadExport godoc
// @Summary Download a finished agenda export
// @Tags Schedule
// @Param token query string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /schedule/exports/download [get]
func (h *ScheduleHandler) DownloadExport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	path, err := h.service.OpenExportFile(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
