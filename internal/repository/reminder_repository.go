package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

// ReminderRepository provides access to manually scheduled bus reminders.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs a ReminderRepository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create schedules a reminder.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.Status == "" {
		reminder.Status = models.ReminderPending
	}
	reminder.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO reminders (id, bus_id, type, description, due_date, status, created_at)
VALUES (:id, :bus_id, :type, :description, :due_date, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return wrapWriteErr("create reminder", err)
	}
	return nil
}

// ListPendingDue returns pending reminders due on or before until.
func (r *ReminderRepository) ListPendingDue(ctx context.Context, until time.Time) ([]models.ReminderDetail, error) {
	const query = `SELECT rm.id, rm.bus_id, rm.type, rm.description, rm.due_date, rm.status, rm.resolved_at, rm.created_at, b.registration_number
FROM reminders rm JOIN buses b ON b.id = rm.bus_id
WHERE rm.status = $1 AND rm.due_date <= $2 ORDER BY rm.due_date ASC`
	var reminders []models.ReminderDetail
	if err := r.db.SelectContext(ctx, &reminders, query, models.ReminderPending, until); err != nil {
		return nil, wrapErr("list pending reminders", err)
	}
	return reminders, nil
}

// Resolve marks a pending reminder completed.
func (r *ReminderRepository) Resolve(ctx context.Context, id string) error {
	const query = `UPDATE reminders SET status = $2, resolved_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, models.ReminderCompleted, time.Now().UTC(), models.ReminderPending)
	if err != nil {
		return wrapErr("resolve reminder", err)
	}
	return expectAffected(res, "resolve reminder")
}
