package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type fakeOverviewRepo struct {
	from, to time.Time
	err      error
}

func (f *fakeOverviewRepo) Overview(ctx context.Context, monthStart, monthEnd time.Time) (*models.FleetOverview, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.from, f.to = monthStart, monthEnd
	return &models.FleetOverview{TotalBuses: 4, ActiveBuses: 3, ActiveStudents: 120, MonthlyExpenses: 25000}, nil
}

type fakeStock map[models.InventoryCategory]float64

func (f fakeStock) Stock(ctx context.Context, category models.InventoryCategory) (float64, error) {
	return f[category], nil
}

func TestFleetServiceOverview(t *testing.T) {
	repo := &fakeOverviewRepo{}
	svc := NewFleetService(repo, fakeStock{models.CategoryFuel: 310.5, models.CategoryUrea: 42}, nil, nil, 0, nil)
	svc.now = func() time.Time { return time.Date(2025, 12, 17, 9, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, overview.TotalBuses)
	assert.Equal(t, 310.5, overview.FuelStock)
	assert.Equal(t, 42.0, overview.UreaStock)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestFleetServiceOverviewError(t *testing.T) {
	svc := NewFleetService(&fakeOverviewRepo{err: assert.AnError}, fakeStock{}, nil, nil, 0, nil)

	_, err := svc.Overview(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
