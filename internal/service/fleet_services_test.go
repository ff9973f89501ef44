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

const driverUUID = "1f2e3d4c-5b6a-4798-8a9b-0c1d2e3f4a5b"

type fakeBusRepo struct {
	buses      map[string]*models.Bus
	driverBus  map[string]models.BusSummary
	createErr  error
	listFilter models.BusFilter
}

func newFakeBusRepo() *fakeBusRepo {
	return &fakeBusRepo{buses: make(map[string]*models.Bus), driverBus: make(map[string]models.BusSummary)}
}

func (f *fakeBusRepo) List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, int, error) {
	f.listFilter = filter
	var out []models.BusDetail
	for _, b := range f.buses {
		out = append(out, models.BusDetail{Bus: *b})
	}
	return out, len(out), nil
}

func (f *fakeBusRepo) FindByID(ctx context.Context, id string) (*models.Bus, error) {
	if b, ok := f.buses[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeBusRepo) FindDetailByID(ctx context.Context, id string) (*models.BusDetail, error) {
	b, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.BusDetail{Bus: *b, ActiveStudents: 3}, nil
}

func (f *fakeBusRepo) FindByDriver(ctx context.Context, driverID, excludeBusID string) (*models.BusSummary, error) {
	summary, ok := f.driverBus[driverID]
	if !ok || summary.ID == excludeBusID {
		return nil, nil
	}
	return &summary, nil
}

func (f *fakeBusRepo) Create(ctx context.Context, bus *models.Bus) error {
	if f.createErr != nil {
		return f.createErr
	}
	bus.ID = "bus-new"
	clone := *bus
	f.buses[bus.ID] = &clone
	return nil
}

func (f *fakeBusRepo) Update(ctx context.Context, bus *models.Bus) error {
	if _, ok := f.buses[bus.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *bus
	f.buses[bus.ID] = &clone
	return nil
}

func (f *fakeBusRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.buses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.buses, id)
	return nil
}

type fakeExpenseLister struct {
	lastFilter models.ExpenseFilter
}

func (f *fakeExpenseLister) List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error) {
	f.lastFilter = filter
	return nil, nil
}

func busRequest() models.BusRequest {
	driver := driverUUID
	return models.BusRequest{
		RegistrationNumber: " ka-01-1234 ",
		ChassisNumber:      "CH123",
		SeatingCapacity:    40,
		PrimaryDriverID:    &driver,
		OwnershipType:      models.OwnershipSchool,
	}
}

func TestBusServiceCreate(t *testing.T) {
	repo := newFakeBusRepo()
	svc := NewBusService(repo, &fakeExpenseLister{}, nil, nil, nil)

	bus, err := svc.Create(context.Background(), busRequest())
	require.NoError(t, err)
	assert.Equal(t, "KA-01-1234", bus.RegistrationNumber)
	assert.Equal(t, models.BusStatusActive, bus.Status)
}

func TestBusServiceRejectsBusyDriver(t *testing.T) {
	repo := newFakeBusRepo()
	repo.buses["bus-1"] = &models.Bus{ID: "bus-1", RegistrationNumber: "KA-01-0001", SeatingCapacity: 30}
	repo.driverBus[driverUUID] = models.BusSummary{ID: "bus-1", RegistrationNumber: "KA-01-0001"}
	svc := NewBusService(repo, &fakeExpenseLister{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), busRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "KA-01-0001")

	updated, err := svc.Update(context.Background(), "bus-1", busRequest())
	require.NoError(t, err)
	assert.Equal(t, driverUUID, *updated.PrimaryDriverID)
}

func TestBusServiceValidationAndConflicts(t *testing.T) {
	repo := newFakeBusRepo()
	svc := NewBusService(repo, &fakeExpenseLister{}, nil, nil, nil)

	req := busRequest()
	req.OwnershipType = models.OwnershipPrivate
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	details, _ := appErrors.FromError(err).Details.(map[string]string)
	assert.Contains(t, details, "privateOwnerName")

	repo.createErr = repository.ErrUniqueViolation
	_, err = svc.Create(context.Background(), busRequest())
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBusServiceGetFillsCapacity(t *testing.T) {
	repo := newFakeBusRepo()
	repo.buses["bus-1"] = &models.Bus{ID: "bus-1", SeatingCapacity: 41}
	expenses := &fakeExpenseLister{}
	svc := NewBusService(repo, expenses, nil, nil, nil)

	bus, err := svc.Get(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.Equal(t, 62, bus.StudentCapacity)

	list, err := svc.Expenses(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, "bus-1", expenses.lastFilter.BusID)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type fakeDriverRepo struct {
	drivers map[string]*models.Driver
}

func (f *fakeDriverRepo) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error) {
	return nil, nil
}

func (f *fakeDriverRepo) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	if d, ok := f.drivers[id]; ok {
		clone := *d
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	driver.ID = "driver-new"
	f.drivers[driver.ID] = driver
	return nil
}

func (f *fakeDriverRepo) Update(ctx context.Context, driver *models.Driver) error {
	f.drivers[driver.ID] = driver
	return nil
}

func (f *fakeDriverRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.drivers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.drivers, id)
	return nil
}

type fakeDriverBuses []models.BusSummary

func (f fakeDriverBuses) ListByDriver(ctx context.Context, driverID string) ([]models.BusSummary, error) {
	return f, nil
}

type fakeDocumentLister struct{}

func (fakeDocumentLister) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]models.Document, error) {
	return nil, nil
}

func TestDriverServiceCreateRequiresLicenceForDrivers(t *testing.T) {
	repo := &fakeDriverRepo{drivers: map[string]*models.Driver{}}
	svc := NewDriverService(repo, fakeDriverBuses{}, fakeDocumentLister{}, nil, nil)

	_, err := svc.Create(context.Background(), models.DriverRequest{Name: "Mohan", Role: models.DriverRoleDriver, Phone: "98450"})
	require.Error(t, err)
	details, _ := appErrors.FromError(err).Details.(map[string]string)
	assert.Contains(t, details, "licenseNumber")

	conductor, err := svc.Create(context.Background(), models.DriverRequest{Name: "Mohan", Role: models.DriverRoleConductor, Phone: "98450"})
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusActive, conductor.Status)
}

func TestDriverServiceGetIncludesBuses(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeDriverRepo{drivers: map[string]*models.Driver{driverUUID: {ID: driverUUID, Name: "Mohan", LicenseExpiry: &expiry}}}
	svc := NewDriverService(repo, fakeDriverBuses{{ID: "bus-1", RegistrationNumber: "KA-01-0001"}}, fakeDocumentLister{}, nil, nil)

	detail, err := svc.Get(context.Background(), driverUUID)
	require.NoError(t, err)
	require.Len(t, detail.Buses, 1)
	assert.NotNil(t, detail.Documents)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type fakeRouteRepo struct {
	routes      map[string]*models.RouteDetail
	activeRoute map[string]string
	assigned    *models.BusRoute
}

func (f *fakeRouteRepo) List(ctx context.Context) ([]models.RouteDetail, error) { return nil, nil }

func (f *fakeRouteRepo) FindByID(ctx context.Context, id string) (*models.RouteDetail, error) {
	if r, ok := f.routes[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRouteRepo) Create(ctx context.Context, route *models.Route) error {
	route.ID = "route-new"
	return nil
}

func (f *fakeRouteRepo) Update(ctx context.Context, route *models.Route) error { return nil }

func (f *fakeRouteRepo) Delete(ctx context.Context, id string) error { return sql.ErrNoRows }

func (f *fakeRouteRepo) ActiveRouteOfBus(ctx context.Context, busID string) (string, error) {
	return f.activeRoute[busID], nil
}

func (f *fakeRouteRepo) AssignBus(ctx context.Context, assignment *models.BusRoute) error {
	f.assigned = assignment
	return nil
}

const (
	routeAUUID = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	routeBUUID = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4e"
)

func TestRouteServiceAssignBus(t *testing.T) {
	repo := &fakeRouteRepo{
		routes: map[string]*models.RouteDetail{
			routeAUUID: {Route: models.Route{ID: routeAUUID, RouteName: "North"}},
			routeBUUID: {Route: models.Route{ID: routeBUUID, RouteName: "South"}},
		},
		activeRoute: map[string]string{schoolBusUUID: routeAUUID},
	}
	svc := NewRouteService(repo, testBuses(), nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC) }

	_, err := svc.AssignBus(context.Background(), models.AssignBusRequest{RouteID: routeBUUID, BusID: schoolBusUUID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	assignment, err := svc.AssignBus(context.Background(), models.AssignBusRequest{RouteID: routeBUUID, BusID: privateBusUUID})
	require.NoError(t, err)
	assert.Equal(t, "2025-26", assignment.AcademicTerm)
	assert.Same(t, assignment, repo.assigned)

	_, err = svc.AssignBus(context.Background(), models.AssignBusRequest{RouteID: routeAUUID, BusID: schoolBusUUID})
	require.NoError(t, err)
}

func TestRouteServiceNotFound(t *testing.T) {
	svc := NewRouteService(&fakeRouteRepo{routes: map[string]*models.RouteDetail{}}, testBuses(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), models.RouteRequest{RouteName: "North"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
