package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/service"
)

type exportServiceStub struct {
	format string
}

func (s *exportServiceStub) StudentRows(ctx context.Context, busID, academicYear string) ([]models.StudentExportRow, string, error) {
	return []models.StudentExportRow{{ID: "s-1", Name: "Asha"}}, "2025-26", nil
}

func (s *exportServiceStub) Students(ctx context.Context, busID, academicYear, format string) (*service.ExportFile, error) {
	s.format = format
	return &service.ExportFile{FileName: "students_2025-26.csv", ContentType: "text/csv", Body: []byte("Name\nAsha\n")}, nil
}

func (s *exportServiceStub) Payments(ctx context.Context, academicYear, format string) (*service.ExportFile, error) {
	s.format = format
	return &service.ExportFile{FileName: "payments_2025-26.csv", ContentType: "text/csv", Body: []byte("Receipt\n")}, nil
}

func TestExportHandlerStudentsJSONAndFile(t *testing.T) {
	stub := &exportServiceStub{}
	h := NewExportHandler(stub)
	router := newTestRouter()
	router.GET("/export/students", h.Students)

	rec := doJSON(router, http.MethodGet, "/export/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "2025-26", env.Meta["academicYear"])
	assert.Equal(t, float64(1), env.Meta["count"])

	rec = doJSON(router, http.MethodGet, "/export/students?format=CSV", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", stub.format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "students_2025-26.csv")
	assert.Equal(t, "Name\nAsha\n", rec.Body.String())
}

func TestExportHandlerPaymentsDefaultsToCSV(t *testing.T) {
	stub := &exportServiceStub{}
	h := NewExportHandler(stub)
	router := newTestRouter()
	router.GET("/export/payments", h.Payments)

	rec := doJSON(router, http.MethodGet, "/export/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", stub.format)
}
