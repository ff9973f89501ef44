package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type routeService interface {
	List(ctx context.Context) ([]models.RouteDetail, error)
	Get(ctx context.Context, id string) (*models.RouteDetail, error)
	Create(ctx context.Context, req models.RouteRequest) (*models.Route, error)
	Update(ctx context.Context, id string, req models.RouteRequest) (*models.Route, error)
	Delete(ctx context.Context, id string) error
	AssignBus(ctx context.Context, req models.AssignBusRequest) (*models.BusRoute, error)
}

// RouteHandler exposes pickup routes and bus assignments.
type RouteHandler struct {
	routes routeService
}

// NewRouteHandler constructs RouteHandler.
func NewRouteHandler(routes routeService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// List godoc
// @Summary List routes with their current bus
// @Tags Routes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /routes [get]
func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, routes, nil)
}

// Get godoc
// @Summary Get a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /routes/{id} [get]
func (h *RouteHandler) Get(c *gin.Context) {
	route, err := h.routes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Create godoc
// @Summary Create a route
// @Tags Routes
// @Accept json
// @Produce json
// @Param payload body models.RouteRequest true "Route"
// @Success 201 {object} response.Envelope
// @Router /routes [post]
func (h *RouteHandler) Create(c *gin.Context) {
	var req models.RouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, route)
}

// Update godoc
// @Summary Update a route
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param payload body models.RouteRequest true "Route"
// @Success 200 {object} response.Envelope
// @Router /routes/{id} [put]
func (h *RouteHandler) Update(c *gin.Context) {
	var req models.RouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Delete godoc
// @Summary Delete a route
// @Tags Routes
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Router /routes/{id} [delete]
func (h *RouteHandler) Delete(c *gin.Context) {
	if err := h.routes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Route deleted successfully")
}

// AssignBus godoc
// @Summary Put a bus on a route for the current academic year
// @Tags Routes
// @Accept json
// @Produce json
// @Param payload body models.AssignBusRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /routes/assign-bus [post]
func (h *RouteHandler) AssignBus(c *gin.Context) {
	var req models.AssignBusRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.routes.AssignBus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}
