package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type expenseService interface {
	Log(ctx context.Context, req models.ExpenseRequest) (*models.Expense, error)
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error)
	Aggregate(ctx context.Context, startDate, endDate *time.Time) (*models.ExpenseAggregate, error)
	MonthlyComparison(ctx context.Context, year, month int) (*models.MonthlyComparison, error)
	CostPerKm(ctx context.Context, busID string) ([]models.BusCostPerKm, error)
}

// ExpenseHandler exposes the bus expense log and its aggregates.
type ExpenseHandler struct {
	expenses expenseService
}

// NewExpenseHandler constructs ExpenseHandler.
func NewExpenseHandler(expenses expenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Log godoc
// @Summary Log an expense against a bus
// @Tags Expenses
// @Accept json
// @Produce json
// @Param payload body models.ExpenseRequest true "Expense"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /expenses/log [post]
func (h *ExpenseHandler) Log(c *gin.Context) {
	var req models.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.expenses.Log(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// List godoc
// @Summary List expenses, newest first
// @Tags Expenses
// @Produce json
// @Param busId query string false "Bus"
// @Param category query string false "Fuel, Maintenance, Salary, Insurance or Other"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /expenses/log [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	start, err := parseDateParam(c.Query("startDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateParam(c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ExpenseFilter{
		BusID:     strings.TrimSpace(c.Query("busId")),
		Category:  models.ExpenseCategory(strings.TrimSpace(c.Query("category"))),
		StartDate: start,
		EndDate:   end,
	}
	expenses, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expenses, nil)
}

// Aggregate godoc
// @Summary Expense totals by category
// @Description With year and month, compares that month against the previous one.
// @Tags Expenses
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param year query int false "Year for monthly comparison"
// @Param month query int false "Month for monthly comparison"
// @Success 200 {object} response.Envelope
// @Router /expenses/aggregate [get]
func (h *ExpenseHandler) Aggregate(c *gin.Context) {
	if c.Query("year") != "" || c.Query("month") != "" {
		year, yerr := strconv.Atoi(c.Query("year"))
		month, merr := strconv.Atoi(c.Query("month"))
		if yerr != nil || merr != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and month must be numbers"))
			return
		}
		comparison, err := h.expenses.MonthlyComparison(c.Request.Context(), year, month)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, comparison, nil)
		return
	}

	start, err := parseDateParam(c.Query("startDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateParam(c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	aggregate, err := h.expenses.Aggregate(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aggregate, nil)
}

// CostPerKm godoc
// @Summary Fuel cost per kilometre
// @Tags Expenses
// @Produce json
// @Param busId query string false "Bus; all buses with readings when empty"
// @Success 200 {object} response.Envelope
// @Router /expenses/cost-per-km [get]
func (h *ExpenseHandler) CostPerKm(c *gin.Context) {
	costs, err := h.expenses.CostPerKm(c.Request.Context(), strings.TrimSpace(c.Query("busId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, costs, nil)
}
