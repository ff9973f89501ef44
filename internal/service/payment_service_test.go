package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type fakePaymentRepo struct {
	payments []models.Payment
	seq      int64
	lastOpts repository.CreatePaymentOptions
	students map[string]bool
}

func newFakePaymentRepo(studentIDs ...string) *fakePaymentRepo {
	repo := &fakePaymentRepo{students: make(map[string]bool)}
	for _, id := range studentIDs {
		repo.students[id] = true
	}
	return repo
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment, opts repository.CreatePaymentOptions) error {
	f.lastOpts = opts
	if !f.students[payment.StudentID] {
		return sql.ErrNoRows
	}
	if !opts.AllowSplit {
		for _, p := range f.payments {
			if p.StudentID == payment.StudentID && p.Quarter == payment.Quarter && p.AcademicYear == payment.AcademicYear {
				return repository.ErrDuplicatePayment
			}
		}
	}
	f.seq++
	payment.ID = "p" + payment.StudentID
	payment.ReceiptNumber = opts.Receipt(f.seq)
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	var out []models.PaymentDetail
	for _, p := range f.payments {
		out = append(out, models.PaymentDetail{Payment: p})
	}
	return out, len(out), nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	for _, p := range f.payments {
		if p.ID == id {
			return &models.PaymentDetail{Payment: p, StudentName: "Asha", StudentClass: "5"}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePaymentRepo) ListByStudent(ctx context.Context, studentID, academicYear string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.StudentID == studentID && p.AcademicYear == academicYear {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Delete(ctx context.Context, id string) error {
	for i, p := range f.payments {
		if p.ID == id {
			f.payments = append(f.payments[:i], f.payments[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeStudentReader map[string]*models.StudentDetail

func (f fakeStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

const studentUUID = "4b7f1c2e-8f0a-4d57-9b8e-2f1f5a6c7d01"

func newTestPaymentService(repo *fakePaymentRepo, cfg PaymentConfig) *PaymentService {
	students := fakeStudentReader{studentUUID: {Student: models.Student{ID: studentUUID, Name: "Asha", MonthlyFee: 1500, FeeWaiverPercent: 20}}}
	svc := NewPaymentService(repo, students, nil, nil, nil, nil, cfg)
	svc.now = func() time.Time { return time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func validPaymentRequest() models.PaymentRequest {
	return models.PaymentRequest{StudentID: studentUUID, Amount: 3600, Quarter: 1, AcademicYear: "2025-26", PaymentMethod: models.PaymentMethodUPI}
}

func TestPaymentServiceCreateAssignsReceipt(t *testing.T) {
	repo := newFakePaymentRepo(studentUUID)
	svc := newTestPaymentService(repo, PaymentConfig{})

	payment, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "RCPT-2025-00001", payment.ReceiptNumber)
	assert.Equal(t, time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC), payment.PaymentDate)
	assert.False(t, repo.lastOpts.AllowSplit)
}

func TestPaymentServiceRejectsDuplicateQuarter(t *testing.T) {
	repo := newFakePaymentRepo(studentUUID)
	svc := newTestPaymentService(repo, PaymentConfig{})

	_, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validPaymentRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrDuplicatePayment.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Payment already exists for Q1 2025-26", appErr.Message)
}

func TestPaymentServiceAllowsSplitWhenConfigured(t *testing.T) {
	repo := newFakePaymentRepo(studentUUID)
	svc := newTestPaymentService(repo, PaymentConfig{AllowSplitPayments: true, ReceiptPrefix: "BUS"})

	req := validPaymentRequest()
	req.Amount = 1800
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "BUS-2025-00002", second.ReceiptNumber)
}

func TestPaymentServiceValidation(t *testing.T) {
	svc := newTestPaymentService(newFakePaymentRepo(studentUUID), PaymentConfig{})

	cases := map[string]func(r *models.PaymentRequest){
		"quarter":       func(r *models.PaymentRequest) { r.Quarter = 5 },
		"amount":        func(r *models.PaymentRequest) { r.Amount = -1 },
		"academicYear":  func(r *models.PaymentRequest) { r.AcademicYear = "2025/26" },
		"paymentMethod": func(r *models.PaymentRequest) { r.PaymentMethod = "BITCOIN" },
		"studentId":     func(r *models.PaymentRequest) { r.StudentID = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			req := validPaymentRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			details, ok := appErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, field)
		})
	}
}

func TestPaymentServiceUnknownStudent(t *testing.T) {
	svc := newTestPaymentService(newFakePaymentRepo(), PaymentConfig{})

	_, err := svc.Create(context.Background(), validPaymentRequest())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPaymentServiceStudentFees(t *testing.T) {
	repo := newFakePaymentRepo(studentUUID)
	svc := newTestPaymentService(repo, PaymentConfig{})
	_, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)

	status, err := svc.StudentFees(context.Background(), studentUUID, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-26", status.Summary.AcademicYear)
	assert.Equal(t, 3600.0, status.Summary.QuarterlyDue)
	require.Len(t, status.Summary.Quarters, 4)
	assert.True(t, status.Summary.Quarters[0].Paid)
	assert.True(t, status.Summary.Quarters[0].FullyPaid)
	assert.False(t, status.Summary.Quarters[1].Paid)

	_, err = svc.StudentFees(context.Background(), studentUUID, "2025")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.StudentFees(context.Background(), "missing", "2025-26")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPaymentServiceReceiptAndDelete(t *testing.T) {
	repo := newFakePaymentRepo(studentUUID)
	svc := newTestPaymentService(repo, PaymentConfig{})
	payment, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)

	data, name, err := svc.Receipt(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "RCPT-2025-00001.pdf", name)
	assert.NotEmpty(t, data)

	require.NoError(t, svc.Delete(context.Background(), payment.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), payment.ID), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), appErrors.ErrBadRequest)
}
