package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type expenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error)
	CategoryTotals(ctx context.Context, start, end time.Time) ([]models.CategoryTotal, error)
	FuelReadings(ctx context.Context, busID string) ([]repository.BusFuelReadings, error)
}

// Bounds used when an aggregate has no date range.
var (
	expenseEpoch   = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	expenseHorizon = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ExpenseService logs running costs and derives cost analytics.
type ExpenseService struct {
	repo      expenseRepository
	buses     busReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpenseService constructs the expense service.
func NewExpenseService(repo expenseRepository, buses busReader, validate *validator.Validate, logger *zap.Logger) *ExpenseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{repo: repo, buses: buses, validator: validate, logger: logger}
}

// Log records an expense against a bus.
func (s *ExpenseService) Log(ctx context.Context, req models.ExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	if _, err := s.buses.FindByID(ctx, req.BusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	expense := &models.Expense{
		BusID:           req.BusID,
		Category:        req.Category,
		Amount:          req.Amount,
		Date:            req.Date.UTC(),
		Description:     req.Description,
		OdometerReading: req.OdometerReading,
		ReceiptURL:      req.ReceiptURL,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log expense")
	}
	return expense, nil
}

// List returns the latest expenses matching filter.
func (s *ExpenseService) List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error) {
	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}
	if expenses == nil {
		expenses = []models.ExpenseDetail{}
	}
	return expenses, nil
}

// Aggregate sums expenses per category. Both dates are inclusive calendar days;
// without them every expense is counted.
func (s *ExpenseService) Aggregate(ctx context.Context, startDate, endDate *time.Time) (*models.ExpenseAggregate, error) {
	start, end := expenseEpoch, expenseHorizon
	if startDate != nil && endDate != nil {
		if endDate.Before(*startDate) {
			return nil, appErrors.Clone(appErrors.ErrBadRequest, "endDate must not be before startDate")
		}
		start = truncateDay(*startDate)
		end = truncateDay(*endDate).AddDate(0, 0, 1)
	}
	return s.aggregate(ctx, start, end)
}

// MonthlyComparison compares a calendar month with the month before it.
func (s *ExpenseService) MonthlyComparison(ctx context.Context, year, month int) (*models.MonthlyComparison, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9998 {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "Invalid year or month")
	}
	currentStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	previousStart := currentStart.AddDate(0, -1, 0)

	current, err := s.aggregate(ctx, currentStart, currentStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	previous, err := s.aggregate(ctx, previousStart, currentStart)
	if err != nil {
		return nil, err
	}
	return &models.MonthlyComparison{
		Current:          *current,
		Previous:         *previous,
		PercentageChange: ledger.PercentageChange(previous.Total, current.Total),
	}, nil
}

// CostPerKm derives fuel cost per km from fuel expenses with odometer readings.
// An empty busID reports every bus that has such expenses.
func (s *ExpenseService) CostPerKm(ctx context.Context, busID string) ([]models.BusCostPerKm, error) {
	var registration string
	if busID != "" {
		bus, err := s.buses.FindByID(ctx, busID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
		}
		registration = bus.RegistrationNumber
	}
	grouped, err := s.repo.FuelReadings(ctx, busID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fuel expenses")
	}
	if busID != "" && len(grouped) == 0 {
		return []models.BusCostPerKm{{BusID: busID, RegistrationNumber: registration}}, nil
	}
	out := make([]models.BusCostPerKm, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, models.BusCostPerKm{
			BusID:              g.BusID,
			RegistrationNumber: g.RegistrationNumber,
			CostPerKm:          ledger.ComputeCostPerKm(g.Readings),
		})
	}
	return out, nil
}

// MonthTotal sums every expense in [start, end).
func (s *ExpenseService) MonthTotal(ctx context.Context, start, end time.Time) (float64, error) {
	agg, err := s.aggregate(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return agg.Total, nil
}

func (s *ExpenseService) aggregate(ctx context.Context, start, end time.Time) (*models.ExpenseAggregate, error) {
	totals, err := s.repo.CategoryTotals(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate expenses")
	}
	agg := &models.ExpenseAggregate{ByCategory: make(map[models.ExpenseCategory]float64, len(models.ExpenseCategories))}
	for _, c := range models.ExpenseCategories {
		agg.ByCategory[c] = 0
	}
	amounts := make([]float64, 0, len(totals))
	for _, t := range totals {
		agg.ByCategory[t.Category] = ledger.Total(agg.ByCategory[t.Category], t.Total)
		agg.Count += t.Count
		amounts = append(amounts, t.Total)
	}
	agg.Total = ledger.Total(amounts...)
	return agg, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
