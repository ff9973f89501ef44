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

type paymentService interface {
	Create(ctx context.Context, req models.PaymentRequest) (*models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.PaymentDetail, error)
	Delete(ctx context.Context, id string) error
	Receipt(ctx context.Context, id string) ([]byte, string, error)
	StudentFees(ctx context.Context, studentID, academicYear string) (*models.StudentFeeStatus, error)
}

// PaymentHandler exposes the student fee ledger.
type PaymentHandler struct {
	payments paymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create godoc
// @Summary Record a fee payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body models.PaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req models.PaymentRequest
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

// List godoc
// @Summary List fee payments
// @Tags Payments
// @Produce json
// @Param studentId query string false "Student"
// @Param academicYear query string false "Academic year, e.g. 2024-25"
// @Param busId query string false "Bus"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	filter := models.PaymentFilter{
		StudentID:    strings.TrimSpace(c.Query("studentId")),
		AcademicYear: strings.TrimSpace(c.Query("academicYear")),
		BusID:        strings.TrimSpace(c.Query("busId")),
		Page:         parseQueryInt(c, "page", 1),
		PageSize:     parseQueryInt(c, "pageSize", 50),
	}
	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Receipt godoc
// @Summary Download the PDF receipt of a payment
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	data, filename, err := h.payments.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", filename, data)
}

// Delete godoc
// @Summary Delete a payment
// @Tags Payments
// @Produce json
// @Param id path string false "Payment ID"
// @Param id query string false "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id := idParam(c)
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrBadRequest, "Payment ID is required"))
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Payment deleted successfully")
}

// StudentFees godoc
// @Summary Quarter-by-quarter fee status of a student
// @Tags Payments
// @Produce json
// @Param id path string true "Student ID"
// @Param academicYear query string false "Academic year, defaults to the current one"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/fees [get]
func (h *PaymentHandler) StudentFees(c *gin.Context) {
	status, err := h.payments.StudentFees(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("academicYear")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
