package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

// expiredGrace keeps bus and document expiries on the report for a while after they lapse.
const expiredGrace = 30 * 24 * time.Hour

const maxAlertDays = 365

type expiringLicenses interface {
	ListExpiringLicenses(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error)
}

type expiringBuses interface {
	ListExpiring(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error)
}

type expiringDocuments interface {
	ListExpiring(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error)
}

type reminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	ListPendingDue(ctx context.Context, until time.Time) ([]models.ReminderDetail, error)
	Resolve(ctx context.Context, id string) error
}

// AlertService scans dated records for upcoming and recent expiries.
type AlertService struct {
	drivers     expiringLicenses
	buses       expiringBuses
	busLookup   busReader
	documents   expiringDocuments
	reminders   reminderRepository
	defaultDays int
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// AlertSources groups the repositories the alert scan reads.
type AlertSources struct {
	Drivers   expiringLicenses
	Buses     expiringBuses
	BusLookup busReader
	Documents expiringDocuments
	Reminders reminderRepository
}

// NewAlertService constructs the alert service.
func NewAlertService(sources AlertSources, defaultDays int, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &AlertService{
		drivers:     sources.Drivers,
		buses:       sources.Buses,
		busLookup:   sources.BusLookup,
		documents:   sources.Documents,
		reminders:   sources.Reminders,
		defaultDays: defaultDays,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Report lists every expiry due within days, most urgent first.
func (s *AlertService) Report(ctx context.Context, days int) (*models.AlertsReport, error) {
	if days == 0 {
		days = s.defaultDays
	}
	if days < 0 || days > maxAlertDays {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("days must be between 1 and %d", maxAlertDays))
	}
	now := s.now().UTC()
	until := now.AddDate(0, 0, days)

	var alerts []models.ExpiryAlert

	licences, err := s.drivers.ListExpiringLicenses(ctx, now, until)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan driver licences")
	}
	for _, item := range licences {
		alerts = append(alerts, s.alertFor(now, item.EntityID, item))
	}

	buses, err := s.buses.ListExpiring(ctx, now.Add(-expiredGrace), until)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan bus certificates")
	}
	for _, item := range buses {
		alerts = append(alerts, s.alertFor(now, busAlertPrefix(item.Kind)+"-"+item.EntityID, item))
	}

	docs, err := s.documents.ListExpiring(ctx, now.Add(-expiredGrace), until)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan documents")
	}
	for _, item := range docs {
		alerts = append(alerts, s.alertFor(now, "document-"+item.EntityID, item))
	}

	reminders, err := s.reminders.ListPendingDue(ctx, until)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan reminders")
	}
	for _, r := range reminders {
		alerts = append(alerts, reminderAlert(now, r))
	}

	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].DaysRemaining < alerts[j].DaysRemaining })

	report := &models.AlertsReport{Alerts: alerts, Total: len(alerts), DaysThreshold: days}
	if report.Alerts == nil {
		report.Alerts = []models.ExpiryAlert{}
	}
	for _, a := range alerts {
		switch a.Severity {
		case ledger.SeverityCritical:
			report.CriticalCount++
		case ledger.SeverityWarning:
			report.WarningCount++
		default:
			report.InfoCount++
		}
	}
	return report, nil
}

// CreateReminder schedules a manual reminder for a bus.
func (s *AlertService) CreateReminder(ctx context.Context, req models.ReminderRequest) (*models.Reminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AsAppError(err, "Missing required fields")
	}
	if _, err := s.busLookup.FindByID(ctx, req.BusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Bus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bus")
	}
	reminder := &models.Reminder{
		BusID:       req.BusID,
		Type:        req.Type,
		Description: req.Description,
		DueDate:     req.DueDate.UTC(),
		Status:      models.ReminderPending,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reminder")
	}
	return reminder, nil
}

// ResolveReminder marks a pending reminder completed.
func (s *AlertService) ResolveReminder(ctx context.Context, req models.ResolveReminderRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrBadRequest, "Missing required field: reminderId")
	}
	if err := s.reminders.Resolve(ctx, req.ReminderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Pending reminder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve reminder")
	}
	return nil
}

func (s *AlertService) alertFor(now time.Time, id string, item models.ExpiringItem) models.ExpiryAlert {
	days := ledger.DaysUntil(now, item.DueDate)
	return models.ExpiryAlert{
		ID:            id,
		Type:          item.Kind,
		Severity:      ledger.Severity(days),
		Message:       expiryMessage(item, days),
		DueDate:       item.DueDate,
		DaysRemaining: days,
		EntityID:      item.EntityID,
		EntityName:    item.EntityName,
	}
}

func reminderAlert(now time.Time, r models.ReminderDetail) models.ExpiryAlert {
	days := ledger.DaysUntil(now, r.DueDate)
	label := strings.ReplaceAll(r.Type, "_", " ")
	msg := fmt.Sprintf("%s for bus %s due in %d days", label, r.RegistrationNumber, days)
	if days < 0 {
		msg = fmt.Sprintf("%s for bus %s overdue by %d days", label, r.RegistrationNumber, -days)
	}
	return models.ExpiryAlert{
		ID:            r.ID,
		Type:          models.AlertReminder,
		Severity:      ledger.Severity(days),
		Message:       msg,
		DueDate:       r.DueDate,
		DaysRemaining: days,
		EntityID:      r.BusID,
		EntityName:    r.RegistrationNumber,
	}
}

func busAlertPrefix(kind string) string {
	return strings.TrimPrefix(kind, "bus_")
}

func expiryMessage(item models.ExpiringItem, days int) string {
	var subject string
	switch item.Kind {
	case models.AlertDriverLicense:
		return fmt.Sprintf("Driver %s's license expires in %d days", item.EntityName, days)
	case models.AlertBusFitness:
		subject = "Fitness Certificate for bus " + item.EntityName
	case models.AlertBusRegistration:
		subject = "Registration for bus " + item.EntityName
	case models.AlertBusInsurance:
		subject = "Insurance for bus " + item.EntityName
	default:
		subject = item.EntityName
	}
	if days < 0 {
		return fmt.Sprintf("%s expired %d days ago", subject, -days)
	}
	return fmt.Sprintf("%s expires in %d days", subject, days)
}
