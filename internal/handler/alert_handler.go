package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type alertService interface {
	Report(ctx context.Context, days int) (*models.AlertsReport, error)
	CreateReminder(ctx context.Context, req models.ReminderRequest) (*models.Reminder, error)
	ResolveReminder(ctx context.Context, req models.ResolveReminderRequest) error
}

// AlertHandler exposes expiry alerts and maintenance reminders.
type AlertHandler struct {
	alerts alertService
}

// NewAlertHandler constructs AlertHandler.
func NewAlertHandler(alerts alertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Report godoc
// @Summary Upcoming and recently expired licences, certificates, documents and reminders
// @Tags Alerts
// @Produce json
// @Param days query int false "Look-ahead window in days (default 30, max 365)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) Report(c *gin.Context) {
	report, err := h.alerts.Report(c.Request.Context(), parseQueryInt(c, "days", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// CreateReminder godoc
// @Summary Add a maintenance reminder for a bus
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body models.ReminderRequest true "Reminder"
// @Success 201 {object} response.Envelope
// @Router /alerts/reminders [post]
func (h *AlertHandler) CreateReminder(c *gin.Context) {
	var req models.ReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	reminder, err := h.alerts.CreateReminder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reminder)
}

// Resolve godoc
// @Summary Mark a reminder as completed
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body models.ResolveReminderRequest true "Reminder"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /alerts/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	var req models.ResolveReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.alerts.ResolveReminder(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Reminder marked as completed")
}
