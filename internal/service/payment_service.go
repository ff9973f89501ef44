package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/export"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment, opts repository.CreatePaymentOptions) error
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	ListByStudent(ctx context.Context, studentID, academicYear string) ([]models.Payment, error)
	Delete(ctx context.Context, id string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// PaymentConfig tunes how fee payments are recorded.
type PaymentConfig struct {
	AllowSplitPayments bool
	ReceiptPrefix      string
	Organisation       string
}

// PaymentService records student fee payments and derives quarter status.
type PaymentService struct {
	repo      paymentRepository
	students  studentReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    PaymentConfig
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students studentReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config PaymentConfig) *PaymentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, cache: cache, metrics: metrics, validator: validate, logger: logger, config: config, now: time.Now}
}

// Create records a payment against one student's quarter.
func (s *PaymentService) Create(ctx context.Context, req models.PaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid payment payload")
	}

	payment := &models.Payment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Quarter:       req.Quarter,
		AcademicYear:  req.AcademicYear,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		CheckNumber:   req.CheckNumber,
		BankName:      req.BankName,
		CollectedBy:   req.CollectedBy,
		Remarks:       req.Remarks,
	}
	now := s.now().UTC()
	payment.PaymentDate = now
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}

	opts := repository.CreatePaymentOptions{
		AllowSplit: s.config.AllowSplitPayments,
		Receipt: func(seq int64) string {
			return ledger.ReceiptNumber(s.config.ReceiptPrefix, now.Year(), seq)
		},
	}
	if err := s.repo.Create(ctx, payment, opts); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		case errors.Is(err, repository.ErrDuplicatePayment):
			return nil, appErrors.Clone(appErrors.ErrDuplicatePayment, fmt.Sprintf("Payment already exists for Q%d %s", req.Quarter, req.AcademicYear))
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, appErrors.Clone(appErrors.ErrConflict, "Receipt number already issued")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.metrics.RecordPayment(string(payment.PaymentMethod), payment.Amount)
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", payment.StudentID),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.Int("quarter", payment.Quarter),
		zap.String("academic_year", payment.AcademicYear),
	)
	return payment, nil
}

// List returns payments newest first.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	if filter.AcademicYear != "" && !ledger.ValidAcademicYear(filter.AcademicYear) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "academicYear must use the YYYY-YY format")
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page, size, _ := models.PageBounds(filter.Page, filter.PageSize, 50, 500)
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrBadRequest, "Payment ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return nil
}

// Receipt renders the PDF receipt of a payment.
func (s *PaymentService) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	receipt := export.Receipt{
		Organisation:  s.config.Organisation,
		ReceiptNumber: payment.ReceiptNumber,
		PaymentDate:   payment.PaymentDate,
		StudentName:   payment.StudentName,
		StudentClass:  payment.StudentClass,
		AcademicYear:  payment.AcademicYear,
		Quarter:       payment.Quarter,
		Amount:        payment.Amount,
		PaymentMethod: string(payment.PaymentMethod),
		Reference:     firstNonEmpty(payment.TransactionID, payment.CheckNumber),
		CollectedBy:   deref(payment.CollectedBy),
		Remarks:       deref(payment.Remarks),
	}
	if payment.RegistrationNumber != nil {
		receipt.BusNumber = *payment.RegistrationNumber
	}
	data, err := export.RenderReceipt(receipt)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, payment.ReceiptNumber + ".pdf", nil
}

// StudentFees returns the per-quarter fee status of a student for an academic
// year, defaulting to the current one.
func (s *PaymentService) StudentFees(ctx context.Context, studentID, academicYear string) (*models.StudentFeeStatus, error) {
	now := s.now()
	if academicYear == "" {
		academicYear = ledger.AcademicYearOf(now)
	}
	if !ledger.ValidAcademicYear(academicYear) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academicYear must use the YYYY-YY format")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	payments, err := s.repo.ListByStudent(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	entries := make([]ledger.PaymentEntry, 0, len(payments))
	for _, p := range payments {
		entries = append(entries, ledger.PaymentEntry{Quarter: p.Quarter, AcademicYear: p.AcademicYear, Amount: p.Amount})
	}
	return &models.StudentFeeStatus{
		StudentID:        student.ID,
		StudentName:      student.Name,
		MonthlyFee:       student.MonthlyFee,
		FeeWaiverPercent: student.FeeWaiverPercent,
		FeePaid:          student.FeePaid,
		Summary:          ledger.Summarize(entries, academicYear, student.MonthlyFee, student.FeeWaiverPercent, now),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}
