package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/pkg/response"
)

type kpiService interface {
	Emissions(ctx context.Context) (*dto.EmissionsReport, error)
}

// KPIHandler exposes program-level indicators.
type KPIHandler struct {
	service kpiService
}

// NewKPIHandler builds a new handler.
func NewKPIHandler(service kpiService) *KPIHandler {
	return &KPIHandler{service: service}
}

// Emissions godoc
// @Summary Estimate the CO2 saved by open loans
// @Tags KPI
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /kpi/emissions [get]
func (h *KPIHandler) Emissions(c *gin.Context) {
	report, err := h.service.Emissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
