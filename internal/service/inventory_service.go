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

type inventoryRepository interface {
	CreatePurchase(ctx context.Context, purchase *models.InventoryPurchase) error
	ListPurchases(ctx context.Context, category models.InventoryCategory, limit int) ([]models.InventoryPurchase, error)
	DeletePurchase(ctx context.Context, category models.InventoryCategory, id string) error
	Dispense(ctx context.Context, dispense *models.InventoryDispense, enforceStock bool) error
	ListDispenses(ctx context.Context, filter models.DispenseFilter, limit int) ([]models.DispenseDetail, error)
	DeleteDispense(ctx context.Context, category models.InventoryCategory, id string) error
	Totals(ctx context.Context, category models.InventoryCategory) (*models.InventoryTotals, error)
	BusTotals(ctx context.Context, category models.InventoryCategory) ([]models.BusDispenseTotal, error)
	FuelReadings(ctx context.Context, busID string) ([]ledger.OdometerReading, float64, error)
}

type personalVehicleRepository interface {
	List(ctx context.Context) ([]models.PersonalVehicle, error)
	FindByID(ctx context.Context, id string) (*models.PersonalVehicle, error)
	Create(ctx context.Context, vehicle *models.PersonalVehicle) error
	Deactivate(ctx context.Context, id string) error
}

// InventoryConfig toggles the stock guard and sizes the summary's recent lists.
type InventoryConfig struct {
	EnforceStock bool
	RecentLimit  int
}

// InventoryService keeps the fuel and urea ledgers.
type InventoryService struct {
	repo      inventoryRepository
	vehicles  personalVehicleRepository
	buses     busReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    InventoryConfig
}

// NewInventoryService constructs the inventory service.
func NewInventoryService(repo inventoryRepository, vehicles personalVehicleRepository, buses busReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config InventoryConfig) *InventoryService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = 10
	}
	return &InventoryService{repo: repo, vehicles: vehicles, buses: buses, metrics: metrics, validator: validate, logger: logger, config: config}
}

// RecordPurchase adds stock. totalCost is quantity times price.
func (s *InventoryService) RecordPurchase(ctx context.Context, category models.InventoryCategory, req models.PurchaseRequest) (*models.InventoryPurchase, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	purchase := &models.InventoryPurchase{
		Category:      category,
		Date:          req.Date.UTC(),
		Quantity:      req.Quantity,
		PricePerLitre: req.PricePerLitre,
		TotalCost:     ledger.LineCost(req.Quantity, req.PricePerLitre),
		VendorName:    req.VendorName,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to record %s purchase", category.Label()))
	}
	return purchase, nil
}

// Purchases lists purchases newest first.
func (s *InventoryService) Purchases(ctx context.Context, category models.InventoryCategory) ([]models.InventoryPurchase, error) {
	purchases, err := s.repo.ListPurchases(ctx, category, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list purchases")
	}
	if purchases == nil {
		purchases = []models.InventoryPurchase{}
	}
	return purchases, nil
}

// DeletePurchase removes a purchase.
func (s *InventoryService) DeletePurchase(ctx context.Context, category models.InventoryCategory, id string) error {
	if err := s.repo.DeletePurchase(ctx, category, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Purchase not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete purchase")
	}
	return nil
}

// DispenseToBus issues stock to a bus.
func (s *InventoryService) DispenseToBus(ctx context.Context, category models.InventoryCategory, req models.DispenseRequest) (*models.InventoryDispense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	if _, err := s.buses.FindByID(ctx, req.BusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	busID := req.BusID
	dispense := &models.InventoryDispense{
		Category:        category,
		BusID:           &busID,
		Date:            req.Date.UTC(),
		Quantity:        req.Quantity,
		OdometerReading: req.OdometerReading,
		DispensedBy:     req.DispensedBy,
		Notes:           req.Notes,
	}
	if err := s.dispense(ctx, dispense); err != nil {
		return nil, err
	}
	return dispense, nil
}

// Dispenses lists dispenses newest first, optionally for one bus.
func (s *InventoryService) Dispenses(ctx context.Context, category models.InventoryCategory, busID string) ([]models.DispenseDetail, error) {
	dispenses, err := s.repo.ListDispenses(ctx, models.DispenseFilter{Category: category, BusID: busID}, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dispenses")
	}
	if dispenses == nil {
		dispenses = []models.DispenseDetail{}
	}
	return dispenses, nil
}

// DeleteDispense removes a dispense.
func (s *InventoryService) DeleteDispense(ctx context.Context, category models.InventoryCategory, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrBadRequest, "Dispense ID is required")
	}
	if err := s.repo.DeleteDispense(ctx, category, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Dispense record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete dispense")
	}
	return nil
}

// Summary reports the stock position of a category.
func (s *InventoryService) Summary(ctx context.Context, category models.InventoryCategory) (*models.InventorySummary, error) {
	totals, err := s.repo.Totals(ctx, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory totals")
	}
	purchases, err := s.repo.ListPurchases(ctx, category, s.config.RecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent purchases")
	}
	dispenses, err := s.repo.ListDispenses(ctx, models.DispenseFilter{Category: category}, s.config.RecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent dispenses")
	}
	perBus, err := s.repo.BusTotals(ctx, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus totals")
	}

	summary := &models.InventorySummary{
		Category:        category,
		CurrentStock:    ledger.Stock(totals.TotalPurchased, totals.TotalDispensed),
		TotalPurchased:  totals.TotalPurchased,
		TotalDispensed:  totals.TotalDispensed,
		TotalSpent:      totals.TotalSpent,
		AveragePrice:    ledger.AveragePrice(totals.TotalSpent, totals.TotalPurchased),
		PurchaseCount:   totals.PurchaseCount,
		DispenseCount:   totals.DispenseCount,
		RecentPurchases: purchases,
		RecentDispenses: dispenses,
		BusSummary:      perBus,
	}
	if summary.RecentPurchases == nil {
		summary.RecentPurchases = []models.InventoryPurchase{}
	}
	if summary.RecentDispenses == nil {
		summary.RecentDispenses = []models.DispenseDetail{}
	}
	if summary.BusSummary == nil {
		summary.BusSummary = []models.BusDispenseTotal{}
	}
	return summary, nil
}

// Stock returns the litres currently held for a category.
func (s *InventoryService) Stock(ctx context.Context, category models.InventoryCategory) (float64, error) {
	totals, err := s.repo.Totals(ctx, category)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory totals")
	}
	return ledger.Stock(totals.TotalPurchased, totals.TotalDispensed), nil
}

// Mileage derives km per litre for one bus from its fuel dispenses.
func (s *InventoryService) Mileage(ctx context.Context, busID string) (*models.BusMileage, error) {
	bus, err := s.buses.FindByID(ctx, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	return s.mileageOf(ctx, bus.ID, bus.RegistrationNumber)
}

// FleetMileage derives mileage for every bus that has received fuel.
func (s *InventoryService) FleetMileage(ctx context.Context) ([]models.BusMileage, error) {
	perBus, err := s.repo.BusTotals(ctx, models.CategoryFuel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus totals")
	}
	out := make([]models.BusMileage, 0, len(perBus))
	for _, b := range perBus {
		m, err := s.mileageOf(ctx, b.BusID, b.RegistrationNumber)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *InventoryService) mileageOf(ctx context.Context, busID, registration string) (*models.BusMileage, error) {
	readings, litres, err := s.repo.FuelReadings(ctx, busID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fuel readings")
	}
	return &models.BusMileage{BusID: busID, RegistrationNumber: registration, Mileage: ledger.ComputeMileage(readings, litres)}, nil
}

// Vehicles lists active personal vehicles.
func (s *InventoryService) Vehicles(ctx context.Context) ([]models.PersonalVehicle, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicles")
	}
	if vehicles == nil {
		vehicles = []models.PersonalVehicle{}
	}
	return vehicles, nil
}

// RegisterVehicle adds a personal vehicle.
func (s *InventoryService) RegisterVehicle(ctx context.Context, req models.PersonalVehicleRequest) (*models.PersonalVehicle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	vehicle := &models.PersonalVehicle{
		VehicleName:   strings.TrimSpace(req.VehicleName),
		VehicleNumber: strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		OwnerName:     req.OwnerName,
		VehicleType:   req.VehicleType,
		Notes:         req.Notes,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Vehicle number already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register vehicle")
	}
	return vehicle, nil
}

// RemoveVehicle deactivates a vehicle; its dispenses stay on the ledger.
func (s *InventoryService) RemoveVehicle(ctx context.Context, id string) error {
	if err := s.vehicles.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Vehicle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove vehicle")
	}
	return nil
}

// DispenseToVehicle issues fuel to a personal vehicle.
func (s *InventoryService) DispenseToVehicle(ctx context.Context, req models.VehicleDispenseRequest) (*models.InventoryDispense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	vehicle, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if !vehicle.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Vehicle not found")
	}
	vehicleID := vehicle.ID
	dispense := &models.InventoryDispense{
		Category:        models.CategoryFuel,
		VehicleID:       &vehicleID,
		Date:            req.Date.UTC(),
		Quantity:        req.Quantity,
		OdometerReading: req.OdometerReading,
		DispensedBy:     req.DispensedBy,
		Purpose:         req.Purpose,
		Notes:           req.Notes,
	}
	if err := s.dispense(ctx, dispense); err != nil {
		return nil, err
	}
	return dispense, nil
}

// VehicleDispenses lists fuel issued to personal vehicles.
func (s *InventoryService) VehicleDispenses(ctx context.Context, vehicleID string) ([]models.DispenseDetail, error) {
	filter := models.DispenseFilter{Category: models.CategoryFuel, VehicleID: vehicleID, PersonalOnly: true}
	dispenses, err := s.repo.ListDispenses(ctx, filter, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicle dispenses")
	}
	if dispenses == nil {
		dispenses = []models.DispenseDetail{}
	}
	return dispenses, nil
}

func (s *InventoryService) dispense(ctx context.Context, dispense *models.InventoryDispense) error {
	err := s.repo.Dispense(ctx, dispense, s.config.EnforceStock)
	if err == nil {
		s.metrics.RecordDispense(dispense.Category.Label(), dispense.Quantity)
		return nil
	}
	var short *repository.InsufficientStockError
	if errors.As(err, &short) {
		s.metrics.RecordStockRejection(short.Category.Label())
		s.logger.Warn("dispense rejected", zap.String("category", string(short.Category)), zap.Float64("available", short.Available), zap.Float64("requested", dispense.Quantity))
		msg := fmt.Sprintf("Insufficient %s in stock. Available: %s litres", short.Category.Label(), ledger.FormatLitres(short.Available))
		return appErrors.Clone(appErrors.ErrInsufficientStock, msg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record dispense")
}
