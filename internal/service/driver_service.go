package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type driverRepository interface {
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error)
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	Delete(ctx context.Context, id string) error
}

type driverBusLister interface {
	ListByDriver(ctx context.Context, driverID string) ([]models.BusSummary, error)
}

type ownerDocumentLister interface {
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]models.Document, error)
}

// DriverService manages drivers and conductors.
type DriverService struct {
	repo      driverRepository
	buses     driverBusLister
	documents ownerDocumentLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDriverService constructs the driver service.
func NewDriverService(repo driverRepository, buses driverBusLister, documents ownerDocumentLister, validate *validator.Validate, logger *zap.Logger) *DriverService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{repo: repo, buses: buses, documents: documents, validator: validate, logger: logger}
}

// List returns crew members.
func (s *DriverService) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error) {
	drivers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	return drivers, nil
}

// Get returns a crew member with assigned buses and documents.
func (s *DriverService) Get(ctx context.Context, id string) (*models.DriverDetail, error) {
	driver, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.DriverDetail{Driver: *driver, Buses: []models.BusSummary{}, Documents: []models.Document{}}
	buses, err := s.buses.ListByDriver(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver buses")
	}
	if buses != nil {
		detail.Buses = buses
	}
	docs, err := s.documents.ListByOwner(ctx, models.DocumentOwnerDriver, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver documents")
	}
	if docs != nil {
		detail.Documents = docs
	}
	return detail, nil
}

// Create adds a crew member.
func (s *DriverService) Create(ctx context.Context, req models.DriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid driver payload")
	}
	driver := &models.Driver{}
	applyDriverRequest(driver, req)
	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, driverWriteError(err, "failed to create driver")
	}
	return driver, nil
}

// Update replaces a crew member record.
func (s *DriverService) Update(ctx context.Context, id string, req models.DriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid driver payload")
	}
	driver, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDriverRequest(driver, req)
	if err := s.repo.Update(ctx, driver); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Driver not found")
		}
		return nil, driverWriteError(err, "failed to update driver")
	}
	return driver, nil
}

// Delete removes a crew member; buses keep running without them.
func (s *DriverService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Driver not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete driver")
	}
	return nil
}

func (s *DriverService) find(ctx context.Context, id string) (*models.Driver, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	return driver, nil
}

func driverWriteError(err error, message string) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return appErrors.Clone(appErrors.ErrConflict, "A driver with this licence number already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func applyDriverRequest(driver *models.Driver, req models.DriverRequest) {
	driver.Name = strings.TrimSpace(req.Name)
	driver.Role = req.Role
	driver.Phone = strings.TrimSpace(req.Phone)
	driver.Address = req.Address
	driver.LicenseNumber = req.LicenseNumber
	driver.LicenseExpiry = req.LicenseExpiry
	driver.AadharNumber = req.AadharNumber
	driver.JoiningDate = req.JoiningDate
	driver.Salary = req.Salary
	driver.Status = req.Status
	if driver.Status == "" {
		driver.Status = models.DriverStatusActive
	}
}
