package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type ownerPaymentService interface {
	List(ctx context.Context, filter models.BusOwnerPaymentFilter) ([]models.BusOwnerPaymentDetail, error)
	Create(ctx context.Context, req models.BusOwnerPaymentRequest) (*models.BusOwnerPayment, error)
	Update(ctx context.Context, req models.BusOwnerPaymentUpdate) (*models.BusOwnerPayment, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, busID string) ([]models.OwnerStats, error)
}

// OwnerPaymentHandler exposes settlements with private bus owners.
type OwnerPaymentHandler struct {
	payments ownerPaymentService
}

// NewOwnerPaymentHandler constructs OwnerPaymentHandler.
func NewOwnerPaymentHandler(payments ownerPaymentService) *OwnerPaymentHandler {
	return &OwnerPaymentHandler{payments: payments}
}

// List godoc
// @Summary List payments made to bus owners
// @Tags Owner Payments
// @Produce json
// @Param busId query string false "Bus"
// @Param status query string false "PAID or PENDING"
// @Success 200 {object} response.Envelope
// @Router /bus-owner-payments [get]
func (h *OwnerPaymentHandler) List(c *gin.Context) {
	filter := models.BusOwnerPaymentFilter{
		BusID:  strings.TrimSpace(c.Query("busId")),
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	payments, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Create godoc
// @Summary Record a payment to a private bus owner
// @Tags Owner Payments
// @Accept json
// @Produce json
// @Param payload body models.BusOwnerPaymentRequest true "Owner payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bus-owner-payments [post]
func (h *OwnerPaymentHandler) Create(c *gin.Context) {
	var req models.BusOwnerPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Update godoc
// @Summary Update an owner payment
// @Description Fields left out are unchanged. Status moves between PENDING and PAID.
// @Tags Owner Payments
// @Accept json
// @Produce json
// @Param id query string false "Payment ID when not in the body"
// @Param payload body models.BusOwnerPaymentUpdate true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bus-owner-payments [put]
func (h *OwnerPaymentHandler) Update(c *gin.Context) {
	var req models.BusOwnerPaymentUpdate
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = idParam(c)
	}
	payment, err := h.payments.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Delete godoc
// @Summary Delete an owner payment
// @Tags Owner Payments
// @Produce json
// @Param id query string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bus-owner-payments [delete]
func (h *OwnerPaymentHandler) Delete(c *gin.Context) {
	if err := h.payments.Delete(c.Request.Context(), idParam(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Payment deleted successfully")
}

// Stats godoc
// @Summary Settlement position per private bus
// @Tags Owner Payments
// @Produce json
// @Param busId query string false "Bus; all private buses when empty"
// @Success 200 {object} response.Envelope
// @Router /bus-owner-payments/stats [get]
func (h *OwnerPaymentHandler) Stats(c *gin.Context) {
	stats, err := h.payments.Stats(c.Request.Context(), strings.TrimSpace(c.Query("busId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
