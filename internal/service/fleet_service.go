package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

const fleetOverviewCacheKey = "fleet-overview"

type fleetOverviewRepository interface {
	Overview(ctx context.Context, monthStart, monthEnd time.Time) (*models.FleetOverview, error)
}

type stockReader interface {
	Stock(ctx context.Context, category models.InventoryCategory) (float64, error)
}

// FleetService builds the fleet dashboard headline.
type FleetService struct {
	repo     fleetOverviewRepository
	stock    stockReader
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewFleetService constructs a FleetService.
func NewFleetService(repo fleetOverviewRepository, stock stockReader, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *FleetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &FleetService{repo: repo, stock: stock, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Overview reports bus, driver and student counts, this month's expenses and current stock.
func (s *FleetService) Overview(ctx context.Context) (*models.FleetOverview, error) {
	var cached models.FleetOverview
	if s.cache.Get(ctx, fleetOverviewCacheKey, &cached) {
		return &cached, nil
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := time.Now()
	overview, err := s.repo.Overview(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	s.metrics.ObserveDBQuery("fleet_overview", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fleet overview")
	}
	if overview.FuelStock, err = s.stock.Stock(ctx, models.CategoryFuel); err != nil {
		return nil, err
	}
	if overview.UreaStock, err = s.stock.Stock(ctx, models.CategoryUrea); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, fleetOverviewCacheKey, overview, s.cacheTTL)
	return overview, nil
}
