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

type bicycleService interface {
	Get(ctx context.Context, id string) (*models.Bicycle, error)
	GetByQRCode(ctx context.Context, qrCode string) (*models.Bicycle, error)
	List(ctx context.Context, filter models.BicycleFilter) ([]models.Bicycle, int, error)
	Create(ctx context.Context, req dto.CreateBicycleRequest) (*models.Bicycle, error)
	Update(ctx context.Context, id string, req dto.UpdateBicycleRequest) (*models.Bicycle, error)
	AddHistory(ctx context.Context, bicycleID, description string) (*models.BicycleHistory, error)
	History(ctx context.Context, bicycleID string, limit, offset int) ([]models.BicycleHistory, error)
}

// BicycleHandler exposes fleet endpoints.
type BicycleHandler struct {
	service bicycleService
}

// NewBicycleHandler builds a new handler.
func NewBicycleHandler(service bicycleService) *BicycleHandler {
	return &BicycleHandler{service: service}
}

// List godoc
// @Summary List fleet units
// @Tags Bicycles
// @Produce json
// @Param status query string false "Filter by status"
// @Param model_id query string false "Filter by model"
// @Success 200 {object} response.Envelope
// @Router /bicycles [get]
func (h *BicycleHandler) List(c *gin.Context) {
	filter := models.BicycleFilter{ModelID: c.Query("model_id")}
	if status := c.Query("status"); status != "" {
		s := models.BicycleStatus(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bikes, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bikes, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Get a fleet unit by id
// @Tags Bicycles
// @Produce json
// @Param id path string true "Bicycle id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bicycles/{id} [get]
func (h *BicycleHandler) Get(c *gin.Context) {
	bike, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bike, nil)
}

// GetByQRCode godoc
// @Summary Look a fleet unit up by QR code
// @Tags Bicycles
// @Produce json
// @Param code path string true "QR code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bicycles/qr/{code} [get]
func (h *BicycleHandler) GetByQRCode(c *gin.Context) {
	bike, err := h.service.GetByQRCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bike, nil)
}

// Create godoc
// @Summary Register a fleet unit
// @Tags Bicycles
// @Accept json
// @Produce json
// @Param payload body dto.CreateBicycleRequest true "Bicycle payload"
// @Success 201 {object} response.Envelope
// @Router /bicycles [post]
func (h *BicycleHandler) Create(c *gin.Context) {
	var req dto.CreateBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bicycle payload"))
		return
	}

	bike, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bike)
}

// Update godoc
// @Summary Update a fleet unit
// @Tags Bicycles
// @Accept json
// @Produce json
// @Param id path string true "Bicycle id"
// @Param payload body dto.UpdateBicycleRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /bicycles/{id} [put]
func (h *BicycleHandler) Update(c *gin.Context) {
	var req dto.UpdateBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bicycle payload"))
		return
	}

	bike, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bike, nil)
}

// AddHistory godoc
// @Summary Append a note to a bicycle's record
// @Tags Bicycles
// @Accept json
// @Produce json
// @Param id path string true "Bicycle id"
// @Param payload body dto.CreateHistoryRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /bicycles/{id}/history [post]
func (h *BicycleHandler) AddHistory(c *gin.Context) {
	var req dto.CreateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid history payload"))
		return
	}

	entry, err := h.service.AddHistory(c.Request.Context(), c.Param("id"), req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// History godoc
// @Summary List the notes on a bicycle's record
// @Tags Bicycles
// @Produce json
// @Param id path string true "Bicycle id"
// @Success 200 {object} response.Envelope
// @Router /bicycles/{id}/history [get]
func (h *BicycleHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.service.History(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
