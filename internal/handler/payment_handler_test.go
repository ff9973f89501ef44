package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type paymentServiceStub struct {
	created   *models.PaymentRequest
	createErr error
	deleted   string
	fees      *models.StudentFeeStatus
	feeYear   string
}

func (s *paymentServiceStub) Create(ctx context.Context, req models.PaymentRequest) (*models.Payment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &req
	return &models.Payment{ID: "p-1", StudentID: req.StudentID, Amount: req.Amount, ReceiptNumber: "RCPT-2025-00001"}, nil
}

func (s *paymentServiceStub) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	return []models.PaymentDetail{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *paymentServiceStub) Get(ctx context.Context, id string) (*models.PaymentDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
}

func (s *paymentServiceStub) Delete(ctx context.Context, id string) error {
	s.deleted = id
	return nil
}

func (s *paymentServiceStub) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "RCPT-2025-00001.pdf", nil
}

func (s *paymentServiceStub) StudentFees(ctx context.Context, studentID, academicYear string) (*models.StudentFeeStatus, error) {
	s.feeYear = academicYear
	return s.fees, nil
}

func TestPaymentHandlerCreate(t *testing.T) {
	stub := &paymentServiceStub{}
	h := NewPaymentHandler(stub)
	router := newTestRouter()
	router.POST("/payments", h.Create)

	rec := doJSON(router, http.MethodPost, "/payments", map[string]interface{}{
		"studentId": "3b1f9a2e-4c5d-4e6f-8a7b-9c0d1e2f3a4b", "amount": 3600, "quarter": 1,
		"academicYear": "2025-26", "paymentMethod": "CASH",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var payment models.Payment
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payment))
	assert.Equal(t, "RCPT-2025-00001", payment.ReceiptNumber)
	assert.Equal(t, 1, stub.created.Quarter)
}

func TestPaymentHandlerCreateDuplicate(t *testing.T) {
	stub := &paymentServiceStub{createErr: appErrors.Clone(appErrors.ErrDuplicatePayment, "Payment already exists for Q1 2025-26")}
	h := NewPaymentHandler(stub)
	router := newTestRouter()
	router.POST("/payments", h.Create)

	rec := doJSON(router, http.MethodPost, "/payments", map[string]interface{}{"amount": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_PAYMENT", env.Error.Code)
	assert.Equal(t, "Payment already exists for Q1 2025-26", env.Error.Message)
}

func TestPaymentHandlerDeleteByQuery(t *testing.T) {
	stub := &paymentServiceStub{}
	h := NewPaymentHandler(stub)
	router := newTestRouter()
	router.DELETE("/payments", h.Delete)
	router.DELETE("/payments/:id", h.Delete)

	rec := doJSON(router, http.MethodDelete, "/payments?id=p-9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-9", stub.deleted)
	assert.Equal(t, "Payment deleted successfully", decode(t, rec).Message)

	rec = doJSON(router, http.MethodDelete, "/payments/p-7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-7", stub.deleted)

	rec = doJSON(router, http.MethodDelete, "/payments", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentHandlerReceiptAndFees(t *testing.T) {
	stub := &paymentServiceStub{fees: &models.StudentFeeStatus{}}
	h := NewPaymentHandler(stub)
	router := newTestRouter()
	router.GET("/payments/:id", h.Get)
	router.GET("/payments/:id/receipt", h.Receipt)
	router.GET("/students/:id/fees", h.StudentFees)

	rec := doJSON(router, http.MethodGet, "/payments/p-1/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "RCPT-2025-00001.pdf")

	rec = doJSON(router, http.MethodGet, "/payments/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/students/s-1/fees?academicYear=2024-25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-25", stub.feeYear)
}
