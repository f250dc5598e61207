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

type userService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Me(ctx context.Context, userID string) (*dto.CurrentUserResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest, staffEdit bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
	AddHistory(ctx context.Context, userID, description string) (*models.UserHistory, error)
	History(ctx context.Context, userID string, limit, offset int) ([]models.UserHistory, error)
}

// UserHandler exposes user management endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler builds a new handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// Signup godoc
// @Summary Register a rider account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid signup payload"))
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Me godoc
// @Summary Describe the caller and their lending state
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resp, err := h.service.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search email or name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Get a user by id
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Update godoc
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user payload"))
		return
	}

	staffEdit := false
	if claims := claimsFromContext(c); claims != nil {
		staffEdit = claims.Role.IsStaff()
	}

	user, err := h.service.Update(c.Request.Context(), c.Param("id"), req, staffEdit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Deactivate a user
// @Tags Users
// @Param id path string true "User id"
// @Success 204
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddHistory godoc
// @Summary Append a staff note to a user's record
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body dto.CreateHistoryRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /users/{id}/history [post]
func (h *UserHandler) AddHistory(c *gin.Context) {
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
// @Summary List the staff notes on a user's record
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/history [get]
func (h *UserHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.service.History(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
