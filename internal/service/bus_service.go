package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type busRepository interface {
	List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Bus, error)
	FindDetailByID(ctx context.Context, id string) (*models.BusDetail, error)
	FindByDriver(ctx context.Context, driverID, excludeBusID string) (*models.BusSummary, error)
	Create(ctx context.Context, bus *models.Bus) error
	Update(ctx context.Context, bus *models.Bus) error
	Delete(ctx context.Context, id string) error
}

type busExpenseReader interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error)
}

// BusService manages the fleet register.
type BusService struct {
	repo      busRepository
	expenses  busExpenseReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBusService constructs the bus service.
func NewBusService(repo busRepository, expenses busExpenseReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BusService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusService{repo: repo, expenses: expenses, cache: cache, validator: validate, logger: logger}
}

// List returns buses with crew names and occupancy.
func (s *BusService) List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, *models.Pagination, error) {
	buses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list buses")
	}
	for i := range buses {
		buses[i].StudentCapacity = ledger.StudentCapacity(buses[i].SeatingCapacity)
	}
	page, size, _ := models.PageBounds(filter.Page, filter.PageSize, 50, 200)
	return buses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one bus with details.
func (s *BusService) Get(ctx context.Context, id string) (*models.BusDetail, error) {
	bus, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	bus.StudentCapacity = ledger.StudentCapacity(bus.SeatingCapacity)
	return bus, nil
}

// Create registers a bus.
func (s *BusService) Create(ctx context.Context, req models.BusRequest) (*models.Bus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid bus payload")
	}
	if err := s.ensureDriverFree(ctx, req.PrimaryDriverID, ""); err != nil {
		return nil, err
	}
	bus := &models.Bus{}
	applyBusRequest(bus, req)
	if err := s.repo.Create(ctx, bus); err != nil {
		return nil, s.writeError(err, "failed to create bus")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return bus, nil
}

// Update replaces a bus record.
func (s *BusService) Update(ctx context.Context, id string, req models.BusRequest) (*models.Bus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid bus payload")
	}
	bus, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	if err := s.ensureDriverFree(ctx, req.PrimaryDriverID, id); err != nil {
		return nil, err
	}
	applyBusRequest(bus, req)
	if err := s.repo.Update(ctx, bus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, s.writeError(err, "failed to update bus")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	return bus, nil
}

// Delete removes a bus. Students keep their record with no bus.
func (s *BusService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete bus")
	}
	s.cache.Invalidate(ctx, OwnerStatsCachePattern)
	s.logger.Info("bus deleted", zap.String("bus_id", id))
	return nil
}

// Expenses lists the latest expenses of one bus.
func (s *BusService) Expenses(ctx context.Context, id string) ([]models.ExpenseDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, models.ExpenseFilter{BusID: id})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bus expenses")
	}
	if expenses == nil {
		expenses = []models.ExpenseDetail{}
	}
	return expenses, nil
}

func (s *BusService) ensureDriverFree(ctx context.Context, driverID *string, busID string) error {
	if driverID == nil || *driverID == "" {
		return nil
	}
	other, err := s.repo.FindByDriver(ctx, *driverID, busID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check driver assignment")
	}
	if other != nil {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Driver is already assigned to bus %s", other.RegistrationNumber))
	}
	return nil
}

func (s *BusService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return appErrors.Clone(appErrors.ErrConflict, "A bus with this registration or chassis number already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func applyBusRequest(bus *models.Bus, req models.BusRequest) {
	bus.RegistrationNumber = strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	bus.ChassisNumber = strings.TrimSpace(req.ChassisNumber)
	bus.Make = req.Make
	bus.Model = req.Model
	bus.SeatingCapacity = req.SeatingCapacity
	bus.PurchaseDate = req.PurchaseDate
	bus.PrimaryDriverID = req.PrimaryDriverID
	bus.ConductorID = req.ConductorID
	bus.FitnessExpiry = req.FitnessExpiry
	bus.RegistrationExpiry = req.RegistrationExpiry
	bus.InsuranceExpiry = req.InsuranceExpiry
	bus.OwnershipType = req.OwnershipType
	bus.PrivateOwnerName = req.PrivateOwnerName
	bus.PrivateOwnerContact = req.PrivateOwnerContact
	bus.PrivateOwnerBank = req.PrivateOwnerBank
	bus.SchoolCommission = req.SchoolCommission
	bus.AdvancePayment = req.AdvancePayment
	bus.Status = req.Status
	if bus.Status == "" {
		bus.Status = models.BusStatusActive
	}
}
