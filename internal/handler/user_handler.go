package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, actorID, id string, req models.UserUpdateRequest) (*models.User, error)
	Deactivate(ctx context.Context, actorID, id string) error
}

// UserHandler lets admins manage operator accounts.
type UserHandler struct {
	users userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param role query string false "admin, staff or viewer"
// @Param active query bool false "Active filter"
// @Param search query string false "Username or email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if role := strings.ToLower(strings.TrimSpace(c.Query("role"))); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Update godoc
// @Summary Change a user's email, role or active flag
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.UserUpdateRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Deactivate user
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Deactivate(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
