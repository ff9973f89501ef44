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
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type routeRepository interface {
	List(ctx context.Context) ([]models.RouteDetail, error)
	FindByID(ctx context.Context, id string) (*models.RouteDetail, error)
	Create(ctx context.Context, route *models.Route) error
	Update(ctx context.Context, route *models.Route) error
	Delete(ctx context.Context, id string) error
	ActiveRouteOfBus(ctx context.Context, busID string) (string, error)
	AssignBus(ctx context.Context, assignment *models.BusRoute) error
}

// RouteService manages pickup routes and which bus runs them.
type RouteService struct {
	repo      routeRepository
	buses     busReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRouteService constructs the route service.
func NewRouteService(repo routeRepository, buses busReader, validate *validator.Validate, logger *zap.Logger) *RouteService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteService{repo: repo, buses: buses, validator: validate, logger: logger, now: time.Now}
}

// List returns routes with their current bus.
func (s *RouteService) List(ctx context.Context) ([]models.RouteDetail, error) {
	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routes")
	}
	if routes == nil {
		routes = []models.RouteDetail{}
	}
	return routes, nil
}

// Get returns one route.
func (s *RouteService) Get(ctx context.Context, id string) (*models.RouteDetail, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Route not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route")
	}
	return route, nil
}

// Create adds a route.
func (s *RouteService) Create(ctx context.Context, req models.RouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid route payload")
	}
	route := &models.Route{}
	applyRouteRequest(route, req)
	if err := s.repo.Create(ctx, route); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create route")
	}
	return route, nil
}

// Update replaces a route.
func (s *RouteService) Update(ctx context.Context, id string, req models.RouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid route payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	route := existing.Route
	applyRouteRequest(&route, req)
	if err := s.repo.Update(ctx, &route); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Route not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update route")
	}
	return &route, nil
}

// Delete removes a route and its assignment history.
func (s *RouteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Route not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete route")
	}
	return nil
}

// AssignBus puts a bus on a route for the current academic year.
// A bus already running a different route is a conflict.
func (s *RouteService) AssignBus(ctx context.Context, req models.AssignBusRequest) (*models.BusRoute, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "invalid assignment payload")
	}
	if _, err := s.Get(ctx, req.RouteID); err != nil {
		return nil, err
	}
	if _, err := s.buses.FindByID(ctx, req.BusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	current, err := s.repo.ActiveRouteOfBus(ctx, req.BusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check bus route")
	}
	if current != "" && current != req.RouteID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Bus is already assigned to another route")
	}

	now := s.now().UTC()
	assignment := &models.BusRoute{
		BusID:        req.BusID,
		RouteID:      req.RouteID,
		AcademicTerm: ledger.AcademicYearOf(now),
		StartDate:    now,
	}
	if err := s.repo.AssignBus(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign bus")
	}
	s.logger.Info("bus assigned to route", zap.String("bus_id", req.BusID), zap.String("route_id", req.RouteID))
	return assignment, nil
}

func applyRouteRequest(route *models.Route, req models.RouteRequest) {
	route.RouteName = strings.TrimSpace(req.RouteName)
	route.StartPoint = strings.TrimSpace(req.StartPoint)
	route.EndPoint = strings.TrimSpace(req.EndPoint)
	route.TotalDistanceKm = req.TotalDistanceKm
	route.Description = req.Description
}
