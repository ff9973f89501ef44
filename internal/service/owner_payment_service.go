package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/statemachine"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

// OwnerStatsCachePattern matches every cached owner settlement view.
const OwnerStatsCachePattern = "owner-stats:*"

type ownerPaymentRepository interface {
	List(ctx context.Context, filter models.BusOwnerPaymentFilter) ([]models.BusOwnerPaymentDetail, error)
	FindByID(ctx context.Context, id string) (*models.BusOwnerPayment, error)
	Create(ctx context.Context, payment *models.BusOwnerPayment) error
	Update(ctx context.Context, payment *models.BusOwnerPayment) error
	Delete(ctx context.Context, id string) error
	Revenue(ctx context.Context, busID string) ([]models.OwnerRevenue, error)
	StatusTotals(ctx context.Context, busID string) ([]models.OwnerStatusTotal, error)
}

type busReader interface {
	FindByID(ctx context.Context, id string) (*models.Bus, error)
}

// OwnerPaymentService manages settlements with private bus owners.
type OwnerPaymentService struct {
	repo      ownerPaymentRepository
	buses     busReader
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOwnerPaymentService constructs the owner payment service.
func NewOwnerPaymentService(repo ownerPaymentRepository, buses busReader, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *OwnerPaymentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnerPaymentService{repo: repo, buses: buses, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns owner payments, optionally for one bus or status.
func (s *OwnerPaymentService) List(ctx context.Context, filter models.BusOwnerPaymentFilter) ([]models.BusOwnerPaymentDetail, error) {
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list owner payments")
	}
	return payments, nil
}

// Create records a settlement for a privately owned bus.
func (s *OwnerPaymentService) Create(ctx context.Context, req models.BusOwnerPaymentRequest) (*models.BusOwnerPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	if req.PeriodEndDate.Before(*req.PeriodStartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "periodEndDate must not be before periodStartDate")
	}

	bus, err := s.buses.FindByID(ctx, req.BusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	if !bus.IsPrivate() {
		return nil, appErrors.Clone(appErrors.ErrDomainRule, "Can only create payments for private owned buses")
	}

	status := req.Status
	if status == "" {
		status = models.OwnerPaymentStatusPaid
	}
	payment := &models.BusOwnerPayment{
		BusID:           req.BusID,
		Amount:          req.Amount,
		PaymentDate:     req.PaymentDate.UTC(),
		PeriodStartDate: req.PeriodStartDate.UTC(),
		PeriodEndDate:   req.PeriodEndDate.UTC(),
		PaymentMethod:   req.PaymentMethod,
		Status:          status,
		TransactionRef:  req.TransactionRef,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create owner payment")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return payment, nil
}

// Update applies a partial update. Status changes go through the status machine.
func (s *OwnerPaymentService) Update(ctx context.Context, req models.BusOwnerPaymentUpdate) (*models.BusOwnerPayment, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "Payment ID is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid owner payment payload")
	}

	payment, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner payment")
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}
	if req.PeriodStartDate != nil {
		payment.PeriodStartDate = req.PeriodStartDate.UTC()
	}
	if req.PeriodEndDate != nil {
		payment.PeriodEndDate = req.PeriodEndDate.UTC()
	}
	if payment.PeriodEndDate.Before(payment.PeriodStartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "periodEndDate must not be before periodStartDate")
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.TransactionRef != nil {
		payment.TransactionRef = req.TransactionRef
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}
	if req.Status != nil {
		if err := statemachine.NewOwnerPaymentFSM(payment).TransitionTo(ctx, *req.Status); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrDomainRule.Code, appErrors.ErrDomainRule.Status, "invalid status transition")
		}
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update owner payment")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return payment, nil
}

// Delete removes an owner payment.
func (s *OwnerPaymentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrBadRequest, "Payment ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete owner payment")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return nil
}

// Stats returns the settlement view of every private bus, or only busID when set.
func (s *OwnerPaymentService) Stats(ctx context.Context, busID string) ([]models.OwnerStats, error) {
	key := "owner-stats:all"
	if busID != "" {
		key = "owner-stats:" + busID
	}
	var cached []models.OwnerStats
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	if busID != "" {
		if _, err := s.buses.FindByID(ctx, busID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
		}
	}

	revenue, err := s.repo.Revenue(ctx, busID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner revenue")
	}
	totals, err := s.repo.StatusTotals(ctx, busID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner payment totals")
	}
	entries := make(map[string][]ledger.OwnerPaymentEntry)
	for _, t := range totals {
		entries[t.BusID] = append(entries[t.BusID], ledger.OwnerPaymentEntry{Amount: t.Total, Status: t.Status})
	}

	stats := make([]models.OwnerStats, 0, len(revenue))
	for _, r := range revenue {
		stats = append(stats, models.OwnerStats{
			BusID:               r.BusID,
			RegistrationNumber:  r.RegistrationNumber,
			PrivateOwnerName:    r.PrivateOwnerName,
			PrivateOwnerContact: r.PrivateOwnerContact,
			PrivateOwnerBank:    r.PrivateOwnerBank,
			StudentCount:        r.StudentCount,
			MonthlyExpected:     r.MonthlyExpected,
			LastPaymentDate:     r.LastPaymentDate,
			Settlement: ledger.Settle(ledger.SettlementInput{
				TotalRevenue:     r.TotalRevenue,
				SchoolCommission: r.SchoolCommission,
				AdvancePayment:   r.AdvancePayment,
				OwnerPayments:    entries[r.BusID],
			}),
		})
	}
	s.cache.Set(ctx, key, stats, s.cacheTTL)
	return stats, nil
}
