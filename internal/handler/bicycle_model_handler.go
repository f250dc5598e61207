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

type bicycleModelService interface {
	Get(ctx context.Context, id string) (*models.BicycleModel, error)
	List(ctx context.Context) ([]models.BicycleModel, error)
	ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error)
	Create(ctx context.Context, req dto.CreateBicycleModelRequest) (*models.BicycleModel, error)
	Update(ctx context.Context, id string, req dto.UpdateBicycleModelRequest) (*models.BicycleModel, error)
	Delete(ctx context.Context, id string) error
}

// BicycleModelHandler exposes catalog endpoints.
type BicycleModelHandler struct {
	service bicycleModelService
}

// NewBicycleModelHandler builds a new handler.
func NewBicycleModelHandler(service bicycleModelService) *BicycleModelHandler {
	return &BicycleModelHandler{service: service}
}

// List godoc
// @Summary List the model catalog
// @Tags BicycleModels
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bicycle-models [get]
func (h *BicycleModelHandler) List(c *gin.Context) {
	out, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// ListAvailable godoc
// @Summary List models with availability counts
// @Tags BicycleModels
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bicycle-models/available [get]
func (h *BicycleModelHandler) ListAvailable(c *gin.Context) {
	out, err := h.service.ListAvailable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Get godoc
// @Summary Get a model by id
// @Tags BicycleModels
// @Produce json
// @Param id path string true "Model id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bicycle-models/{id} [get]
func (h *BicycleModelHandler) Get(c *gin.Context) {
	model, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model, nil)
}

// Create godoc
// @Summary Register a model
// @Tags BicycleModels
// @Accept json
// @Produce json
// @Param payload body dto.CreateBicycleModelRequest true "Model payload"
// @Success 201 {object} response.Envelope
// @Router /bicycle-models [post]
func (h *BicycleModelHandler) Create(c *gin.Context) {
	var req dto.CreateBicycleModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid model payload"))
		return
	}

	model, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, model)
}

// Update godoc
// @Summary Update a model
// @Tags BicycleModels
// @Accept json
// @Produce json
// @Param id path string true "Model id"
// @Param payload body dto.UpdateBicycleModelRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /bicycle-models/{id} [put]
func (h *BicycleModelHandler) Update(c *gin.Context) {
	var req dto.UpdateBicycleModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid model payload"))
		return
	}

	model, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model, nil)
}

// Delete godoc
// @Summary Remove a model from the catalog
// @Tags BicycleModels
// @Param id path string true "Model id"
// @Success 204
// @Router /bicycle-models/{id} [delete]
func (h *BicycleModelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
