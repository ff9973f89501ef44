package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type busService interface {
	List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.BusDetail, error)
	Create(ctx context.Context, req models.BusRequest) (*models.Bus, error)
	Update(ctx context.Context, id string, req models.BusRequest) (*models.Bus, error)
	Delete(ctx context.Context, id string) error
	Expenses(ctx context.Context, id string) ([]models.ExpenseDetail, error)
}

type fleetOverviewService interface {
	Overview(ctx context.Context) (*models.FleetOverview, error)
}

// BusHandler exposes the bus register and fleet headline.
type BusHandler struct {
	buses busService
	fleet fleetOverviewService
}

// NewBusHandler constructs BusHandler.
func NewBusHandler(buses busService, fleet fleetOverviewService) *BusHandler {
	return &BusHandler{buses: buses, fleet: fleet}
}

// List godoc
// @Summary List buses
// @Tags Fleet
// @Produce json
// @Param status query string false "active, maintenance or retired"
// @Param ownershipType query string false "SCHOOL_OWNED or PRIVATE_OWNED"
// @Param search query string false "Registration or chassis number"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fleet/buses [get]
func (h *BusHandler) List(c *gin.Context) {
	filter := models.BusFilter{
		Status:        models.BusStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		OwnershipType: models.OwnershipType(strings.ToUpper(strings.TrimSpace(c.Query("ownershipType")))),
		Search:        strings.TrimSpace(c.Query("search")),
		Page:          parseQueryInt(c, "page", 1),
		PageSize:      parseQueryInt(c, "pageSize", 50),
	}
	buses, pagination, err := h.buses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buses, pagination)
}

// Get godoc
// @Summary Get bus detail
// @Tags Fleet
// @Produce json
// @Param id path string true "Bus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fleet/buses/{id} [get]
func (h *BusHandler) Get(c *gin.Context) {
	bus, err := h.buses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bus, nil)
}

// Create godoc
// @Summary Register a bus
// @Tags Fleet
// @Accept json
// @Produce json
// @Param payload body models.BusRequest true "Bus"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fleet/buses [post]
func (h *BusHandler) Create(c *gin.Context) {
	var req models.BusRequest
	if !bindJSON(c, &req) {
		return
	}
	bus, err := h.buses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bus)
}

// Update godoc
// @Summary Update a bus
// @Tags Fleet
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body models.BusRequest true "Bus"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fleet/buses/{id} [put]
func (h *BusHandler) Update(c *gin.Context) {
	var req models.BusRequest
	if !bindJSON(c, &req) {
		return
	}
	bus, err := h.buses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bus, nil)
}

// Delete godoc
// @Summary Delete a bus
// @Tags Fleet
// @Param id path string true "Bus ID"
// @Success 200 {object} response.Envelope
// @Router /fleet/buses/{id} [delete]
func (h *BusHandler) Delete(c *gin.Context) {
	if err := h.buses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Bus deleted successfully")
}

// Expenses godoc
// @Summary Expenses logged against a bus
// @Tags Fleet
// @Produce json
// @Param id path string true "Bus ID"
// @Success 200 {object} response.Envelope
// @Router /fleet/buses/{id}/expenses [get]
func (h *BusHandler) Expenses(c *gin.Context) {
	expenses, err := h.buses.Expenses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expenses, nil)
}

// Overview godoc
// @Summary Fleet headline counts, monthly spend and stock
// @Tags Fleet
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fleet/overview [get]
func (h *BusHandler) Overview(c *gin.Context) {
	overview, err := h.fleet.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
