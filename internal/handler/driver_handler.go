package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type driverService interface {
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error)
	Get(ctx context.Context, id string) (*models.DriverDetail, error)
	Create(ctx context.Context, req models.DriverRequest) (*models.Driver, error)
	Update(ctx context.Context, id string, req models.DriverRequest) (*models.Driver, error)
	Delete(ctx context.Context, id string) error
}

// DriverHandler exposes driver and conductor records.
type DriverHandler struct {
	drivers driverService
}

// NewDriverHandler constructs DriverHandler.
func NewDriverHandler(drivers driverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

// List godoc
// @Summary List drivers and conductors
// @Tags Drivers
// @Produce json
// @Param role query string false "driver or conductor"
// @Param status query string false "active, inactive or suspended"
// @Param search query string false "Name or phone"
// @Success 200 {object} response.Envelope
// @Router /drivers [get]
func (h *DriverHandler) List(c *gin.Context) {
	filter := models.DriverFilter{
		Role:   models.DriverRole(strings.ToLower(strings.TrimSpace(c.Query("role")))),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	drivers, err := h.drivers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drivers, nil)
}

// Get godoc
// @Summary Driver with assigned buses and documents
// @Tags Drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drivers/{id} [get]
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.drivers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, driver, nil)
}

// Create godoc
// @Summary Add a driver or conductor
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body models.DriverRequest true "Driver"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /drivers [post]
func (h *DriverHandler) Create(c *gin.Context) {
	var req models.DriverRequest
	if !bindJSON(c, &req) {
		return
	}
	driver, err := h.drivers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, driver)
}

// Update godoc
// @Summary Update a driver or conductor
// @Tags Drivers
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param payload body models.DriverRequest true "Driver"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [put]
func (h *DriverHandler) Update(c *gin.Context) {
	var req models.DriverRequest
	if !bindJSON(c, &req) {
		return
	}
	driver, err := h.drivers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, driver, nil)
}

// Delete godoc
// @Summary Delete a driver or conductor
// @Tags Drivers
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [delete]
func (h *DriverHandler) Delete(c *gin.Context) {
	if err := h.drivers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Driver deleted successfully")
}
