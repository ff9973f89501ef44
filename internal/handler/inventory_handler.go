package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type inventoryService interface {
	RecordPurchase(ctx context.Context, category models.InventoryCategory, req models.PurchaseRequest) (*models.InventoryPurchase, error)
	Purchases(ctx context.Context, category models.InventoryCategory) ([]models.InventoryPurchase, error)
	DeletePurchase(ctx context.Context, category models.InventoryCategory, id string) error
	DispenseToBus(ctx context.Context, category models.InventoryCategory, req models.DispenseRequest) (*models.InventoryDispense, error)
	Dispenses(ctx context.Context, category models.InventoryCategory, busID string) ([]models.DispenseDetail, error)
	DeleteDispense(ctx context.Context, category models.InventoryCategory, id string) error
	Summary(ctx context.Context, category models.InventoryCategory) (*models.InventorySummary, error)
	Mileage(ctx context.Context, busID string) (*models.BusMileage, error)
	FleetMileage(ctx context.Context) ([]models.BusMileage, error)
	Vehicles(ctx context.Context) ([]models.PersonalVehicle, error)
	RegisterVehicle(ctx context.Context, req models.PersonalVehicleRequest) (*models.PersonalVehicle, error)
	RemoveVehicle(ctx context.Context, id string) error
	DispenseToVehicle(ctx context.Context, req models.VehicleDispenseRequest) (*models.InventoryDispense, error)
	VehicleDispenses(ctx context.Context, vehicleID string) ([]models.DispenseDetail, error)
}

// InventoryHandler exposes the fuel and urea ledgers and personal vehicles.
// Purchase and dispense endpoints are bound once per category.
type InventoryHandler struct {
	inventory inventoryService
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(inventory inventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// RecordPurchase godoc
// @Summary Record a fuel or urea purchase
// @Tags Inventory
// @Accept json
// @Produce json
// @Param category path string true "fuel or urea"
// @Param payload body models.PurchaseRequest true "Purchase"
// @Success 201 {object} response.Envelope
// @Router /{category}/purchases [post]
func (h *InventoryHandler) RecordPurchase(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PurchaseRequest
		if !bindJSON(c, &req) {
			return
		}
		purchase, err := h.inventory.RecordPurchase(c.Request.Context(), category, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, purchase)
	}
}

// Purchases godoc
// @Summary List purchases of a category
// @Tags Inventory
// @Produce json
// @Param category path string true "fuel or urea"
// @Success 200 {object} response.Envelope
// @Router /{category}/purchases [get]
func (h *InventoryHandler) Purchases(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		purchases, err := h.inventory.Purchases(c.Request.Context(), category)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, purchases, nil)
	}
}

// DeletePurchase godoc
// @Summary Delete a purchase
// @Tags Inventory
// @Param category path string true "fuel or urea"
// @Param id path string true "Purchase ID"
// @Success 200 {object} response.Envelope
// @Router /{category}/purchases/{id} [delete]
func (h *InventoryHandler) DeletePurchase(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.inventory.DeletePurchase(c.Request.Context(), category, idParam(c)); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Purchase deleted successfully")
	}
}

// Dispense godoc
// @Summary Dispense fuel or urea to a bus
// @Tags Inventory
// @Accept json
// @Produce json
// @Param category path string true "fuel or urea"
// @Param payload body models.DispenseRequest true "Dispense"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /{category}/dispenses [post]
func (h *InventoryHandler) Dispense(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DispenseRequest
		if !bindJSON(c, &req) {
			return
		}
		dispense, err := h.inventory.DispenseToBus(c.Request.Context(), category, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, dispense)
	}
}

// Dispenses godoc
// @Summary List dispenses of a category
// @Tags Inventory
// @Produce json
// @Param category path string true "fuel or urea"
// @Param busId query string false "Bus"
// @Success 200 {object} response.Envelope
// @Router /{category}/dispenses [get]
func (h *InventoryHandler) Dispenses(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispenses, err := h.inventory.Dispenses(c.Request.Context(), category, strings.TrimSpace(c.Query("busId")))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dispenses, nil)
	}
}

// DeleteDispense godoc
// @Summary Delete a dispense
// @Tags Inventory
// @Param category path string true "fuel or urea"
// @Param id path string true "Dispense ID"
// @Success 200 {object} response.Envelope
// @Router /{category}/dispenses/{id} [delete]
func (h *InventoryHandler) DeleteDispense(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.inventory.DeleteDispense(c.Request.Context(), category, idParam(c)); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Dispense record deleted successfully")
	}
}

// Summary godoc
// @Summary Stock position of a category
// @Tags Inventory
// @Produce json
// @Param category path string true "fuel or urea"
// @Success 200 {object} response.Envelope
// @Router /{category}/inventory [get]
func (h *InventoryHandler) Summary(category models.InventoryCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := h.inventory.Summary(c.Request.Context(), category)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summary, nil)
	}
}

// Mileage godoc
// @Summary Fuel efficiency of one bus, or of every bus with fuel readings
// @Tags Inventory
// @Produce json
// @Param busId query string false "Bus"
// @Success 200 {object} response.Envelope
// @Router /fuel/mileage [get]
func (h *InventoryHandler) Mileage(c *gin.Context) {
	if busID := strings.TrimSpace(c.Query("busId")); busID != "" {
		mileage, err := h.inventory.Mileage(c.Request.Context(), busID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, mileage, nil)
		return
	}
	mileage, err := h.inventory.FleetMileage(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mileage, nil)
}

// Vehicles godoc
// @Summary List personal vehicles
// @Tags Personal Vehicles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /personal-vehicles [get]
func (h *InventoryHandler) Vehicles(c *gin.Context) {
	vehicles, err := h.inventory.Vehicles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vehicles, nil)
}

// RegisterVehicle godoc
// @Summary Register a personal vehicle
// @Tags Personal Vehicles
// @Accept json
// @Produce json
// @Param payload body models.PersonalVehicleRequest true "Vehicle"
// @Success 201 {object} response.Envelope
// @Router /personal-vehicles [post]
func (h *InventoryHandler) RegisterVehicle(c *gin.Context) {
	var req models.PersonalVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.inventory.RegisterVehicle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vehicle)
}

// RemoveVehicle godoc
// @Summary Deactivate a personal vehicle
// @Tags Personal Vehicles
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Router /personal-vehicles/{id} [delete]
func (h *InventoryHandler) RemoveVehicle(c *gin.Context) {
	if err := h.inventory.RemoveVehicle(c.Request.Context(), idParam(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Vehicle removed successfully")
}

// DispenseToVehicle godoc
// @Summary Dispense fuel to a personal vehicle
// @Tags Personal Vehicles
// @Accept json
// @Produce json
// @Param payload body models.VehicleDispenseRequest true "Dispense"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /personal-vehicles/dispense [post]
func (h *InventoryHandler) DispenseToVehicle(c *gin.Context) {
	var req models.VehicleDispenseRequest
	if !bindJSON(c, &req) {
		return
	}
	dispense, err := h.inventory.DispenseToVehicle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dispense)
}

// VehicleDispenses godoc
// @Summary List fuel dispensed to personal vehicles
// @Tags Personal Vehicles
// @Produce json
// @Param vehicleId query string false "Vehicle"
// @Success 200 {object} response.Envelope
// @Router /personal-vehicles/dispense [get]
func (h *InventoryHandler) VehicleDispenses(c *gin.Context) {
	dispenses, err := h.inventory.VehicleDispenses(c.Request.Context(), strings.TrimSpace(c.Query("vehicleId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dispenses, nil)
}

// DeleteVehicleDispense godoc
// @Summary Delete a personal vehicle dispense
// @Tags Personal Vehicles
// @Param id query string true "Dispense ID"
// @Success 200 {object} response.Envelope
// @Router /personal-vehicles/dispense [delete]
func (h *InventoryHandler) DeleteVehicleDispense(c *gin.Context) {
	id := idParam(c)
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrBadRequest, "Missing dispense ID"))
		return
	}
	if err := h.inventory.DeleteDispense(c.Request.Context(), models.CategoryFuel, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Dispense record deleted successfully")
}
