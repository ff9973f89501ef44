package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type fakeExpiring struct {
	items []models.ExpiringItem
	from  time.Time
}

func (f *fakeExpiring) ListExpiringLicenses(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error) {
	f.from = from
	return f.items, nil
}

func (f *fakeExpiring) ListExpiring(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error) {
	f.from = from
	return f.items, nil
}

type fakeReminderRepo struct {
	pending  []models.ReminderDetail
	created  []models.Reminder
	resolved []string
}

func (f *fakeReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	reminder.ID = "reminder"
	f.created = append(f.created, *reminder)
	return nil
}

func (f *fakeReminderRepo) ListPendingDue(ctx context.Context, until time.Time) ([]models.ReminderDetail, error) {
	return f.pending, nil
}

func (f *fakeReminderRepo) Resolve(ctx context.Context, id string) error {
	for _, p := range f.pending {
		if p.ID == id {
			f.resolved = append(f.resolved, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

var alertNow = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func newTestAlertService(drivers, buses, docs *fakeExpiring, reminders *fakeReminderRepo) *AlertService {
	svc := NewAlertService(AlertSources{Drivers: drivers, Buses: buses, BusLookup: testBuses(), Documents: docs, Reminders: reminders}, 30, nil, nil)
	svc.now = func() time.Time { return alertNow }
	return svc
}

func TestAlertServiceReport(t *testing.T) {
	drivers := &fakeExpiring{items: []models.ExpiringItem{
		{EntityID: "d1", EntityName: "Mohan", Kind: models.AlertDriverLicense, DueDate: alertNow.AddDate(0, 0, 20)},
	}}
	buses := &fakeExpiring{items: []models.ExpiringItem{
		{EntityID: "b1", EntityName: "KA-01-0001", Kind: models.AlertBusInsurance, DueDate: alertNow.AddDate(0, 0, -3)},
		{EntityID: "b1", EntityName: "KA-01-0001", Kind: models.AlertBusFitness, DueDate: alertNow.AddDate(0, 0, 10)},
	}}
	docs := &fakeExpiring{}
	reminders := &fakeReminderRepo{pending: []models.ReminderDetail{{
		Reminder:           models.Reminder{ID: "r1", BusID: "b1", Type: "Oil_Change", DueDate: alertNow.AddDate(0, 0, 5)},
		RegistrationNumber: "KA-01-0001",
	}}}
	svc := newTestAlertService(drivers, buses, docs, reminders)

	report, err := svc.Report(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, report.DaysThreshold)
	require.Len(t, report.Alerts, 4)
	assert.Equal(t, "insurance-b1", report.Alerts[0].ID)
	assert.Equal(t, "Insurance for bus KA-01-0001 expired 3 days ago", report.Alerts[0].Message)
	assert.Equal(t, ledger.SeverityCritical, report.Alerts[0].Severity)
	assert.Equal(t, "Oil Change for bus KA-01-0001 due in 5 days", report.Alerts[1].Message)
	assert.Equal(t, "fitness-b1", report.Alerts[2].ID)
	assert.Equal(t, "Driver Mohan's license expires in 20 days", report.Alerts[3].Message)
	assert.Equal(t, 2, report.CriticalCount)
	assert.Equal(t, 1, report.WarningCount)
	assert.Equal(t, 1, report.InfoCount)
	assert.Equal(t, 4, report.Total)

	assert.Equal(t, alertNow, drivers.from)
	assert.Equal(t, alertNow.Add(-expiredGrace), buses.from)
}

func TestAlertServiceReportEmpty(t *testing.T) {
	svc := newTestAlertService(&fakeExpiring{}, &fakeExpiring{}, &fakeExpiring{}, &fakeReminderRepo{})

	report, err := svc.Report(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, report.Alerts)
	assert.Zero(t, report.Total)

	_, err = svc.Report(context.Background(), -1)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrors.FromError(err).Code)
}

func TestAlertServiceReminders(t *testing.T) {
	reminders := &fakeReminderRepo{pending: []models.ReminderDetail{{Reminder: models.Reminder{ID: "r1"}}}}
	svc := newTestAlertService(&fakeExpiring{}, &fakeExpiring{}, &fakeExpiring{}, reminders)
	ctx := context.Background()

	due := alertNow.AddDate(0, 1, 0)
	reminder, err := svc.CreateReminder(ctx, models.ReminderRequest{BusID: schoolBusUUID, Type: "Permit", DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderPending, reminder.Status)

	_, err = svc.CreateReminder(ctx, models.ReminderRequest{BusID: schoolBusUUID, Type: "Carwash", DueDate: &due})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ResolveReminder(ctx, models.ResolveReminderRequest{ReminderID: "r1"}))
	assert.Equal(t, []string{"r1"}, reminders.resolved)

	err = svc.ResolveReminder(ctx, models.ResolveReminderRequest{})
	assert.Equal(t, "Missing required field: reminderId", appErrors.FromError(err).Message)

	err = svc.ResolveReminder(ctx, models.ResolveReminderRequest{ReminderID: "gone"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
