package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type exportService interface {
	StudentRows(ctx context.Context, busID, academicYear string) ([]models.StudentExportRow, string, error)
	Students(ctx context.Context, busID, academicYear, format string) (*service.ExportFile, error)
	Payments(ctx context.Context, academicYear, format string) (*service.ExportFile, error)
}

// ExportHandler serves downloadable registers.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Students godoc
// @Summary Student fee register
// @Tags Exports
// @Produce json,text/csv,application/pdf
// @Param busId query string false "Bus"
// @Param year query string false "Academic year, defaults to the current one"
// @Param format query string false "json (default), csv, xlsx or pdf"
// @Success 200 {object} response.Envelope
// @Router /export/students [get]
func (h *ExportHandler) Students(c *gin.Context) {
	busID := strings.TrimSpace(c.Query("busId"))
	year := strings.TrimSpace(c.Query("year"))
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json")))
	if format == "json" {
		rows, resolved, err := h.exports.StudentRows(c.Request.Context(), busID, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"academicYear": resolved, "count": len(rows)})
		return
	}
	file, err := h.exports.Students(c.Request.Context(), busID, year, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.FileName, file.Body)
}

// Payments godoc
// @Summary Payment register for an academic year
// @Tags Exports
// @Produce text/csv
// @Param academicYear query string false "Academic year, defaults to the current one"
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} binary
// @Router /export/payments [get]
func (h *ExportHandler) Payments(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	file, err := h.exports.Payments(c.Request.Context(), strings.TrimSpace(c.Query("academicYear")), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.FileName, file.Body)
}
