package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

const ownerPaymentColumns = `op.id, op.bus_id, op.amount, op.payment_date, op.period_start_date, op.period_end_date,
op.payment_method, op.status, op.transaction_ref, op.notes, op.created_at, op.updated_at`

// OwnerPaymentRepository provides access to settlements paid to private bus owners.
type OwnerPaymentRepository struct {
	db *sqlx.DB
}

// NewOwnerPaymentRepository constructs an OwnerPaymentRepository.
func NewOwnerPaymentRepository(db *sqlx.DB) *OwnerPaymentRepository {
	return &OwnerPaymentRepository{db: db}
}

// List returns owner payments newest first with the bus owner joined.
func (r *OwnerPaymentRepository) List(ctx context.Context, filter models.BusOwnerPaymentFilter) ([]models.BusOwnerPaymentDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.BusID != "" {
		args = append(args, filter.BusID)
		conditions = append(conditions, fmt.Sprintf("op.bus_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("op.status = $%d", len(args)))
	}
	query := `SELECT ` + ownerPaymentColumns + `, b.registration_number, b.private_owner_name, b.private_owner_contact, b.private_owner_bank
FROM bus_owner_payments op JOIN buses b ON b.id = op.bus_id` + whereClause(conditions) + ` ORDER BY op.payment_date DESC`
	var payments []models.BusOwnerPaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, wrapErr("list owner payments", err)
	}
	return payments, nil
}

// FindByID returns one owner payment.
func (r *OwnerPaymentRepository) FindByID(ctx context.Context, id string) (*models.BusOwnerPayment, error) {
	var payment models.BusOwnerPayment
	if err := r.db.GetContext(ctx, &payment, `SELECT `+ownerPaymentColumns+` FROM bus_owner_payments op WHERE op.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find owner payment", err)
	}
	return &payment, nil
}

// Create inserts an owner payment.
func (r *OwnerPaymentRepository) Create(ctx context.Context, payment *models.BusOwnerPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	const query = `INSERT INTO bus_owner_payments (id, bus_id, amount, payment_date, period_start_date, period_end_date,
payment_method, status, transaction_ref, notes, created_at, updated_at)
VALUES (:id, :bus_id, :amount, :payment_date, :period_start_date, :period_end_date,
:payment_method, :status, :transaction_ref, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return wrapWriteErr("create owner payment", err)
	}
	return nil
}

// Update writes every mutable column of an owner payment.
func (r *OwnerPaymentRepository) Update(ctx context.Context, payment *models.BusOwnerPayment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bus_owner_payments SET amount = :amount, payment_date = :payment_date, period_start_date = :period_start_date,
period_end_date = :period_end_date, payment_method = :payment_method, status = :status, transaction_ref = :transaction_ref,
notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return wrapWriteErr("update owner payment", err)
	}
	return expectAffected(res, "update owner payment")
}

// Delete removes an owner payment.
func (r *OwnerPaymentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bus_owner_payments WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete owner payment", err)
	}
	return expectAffected(res, "delete owner payment")
}

// Revenue aggregates fee collections of active students per private bus,
// with the date of the latest settlement paid to the owner.
// An empty busID returns every privately owned bus.
func (r *OwnerPaymentRepository) Revenue(ctx context.Context, busID string) ([]models.OwnerRevenue, error) {
	query := `SELECT b.id AS bus_id, b.registration_number, b.private_owner_name, b.private_owner_contact, b.private_owner_bank,
b.school_commission, b.advance_payment,
COUNT(DISTINCT s.id) AS student_count,
COALESCE((SELECT SUM(s2.monthly_fee) FROM students s2 WHERE s2.bus_id = b.id AND s2.is_active = TRUE), 0) AS monthly_expected,
COALESCE(SUM(p.amount), 0) AS total_revenue,
(SELECT MAX(op.payment_date) FROM bus_owner_payments op WHERE op.bus_id = b.id) AS last_payment_date
FROM buses b
LEFT JOIN students s ON s.bus_id = b.id AND s.is_active = TRUE
LEFT JOIN payments p ON p.student_id = s.id
WHERE b.ownership_type = 'PRIVATE_OWNED'`
	var args []interface{}
	if busID != "" {
		query += ` AND b.id = $1`
		args = append(args, busID)
	}
	query += ` GROUP BY b.id ORDER BY b.registration_number ASC`
	var revenue []models.OwnerRevenue
	if err := r.db.SelectContext(ctx, &revenue, query, args...); err != nil {
		return nil, wrapErr("owner revenue", err)
	}
	return revenue, nil
}

// StatusTotals sums owner payments per bus and status.
func (r *OwnerPaymentRepository) StatusTotals(ctx context.Context, busID string) ([]models.OwnerStatusTotal, error) {
	query := `SELECT bus_id, status, COALESCE(SUM(amount), 0) AS total FROM bus_owner_payments`
	var args []interface{}
	if busID != "" {
		query += ` WHERE bus_id = $1`
		args = append(args, busID)
	}
	query += ` GROUP BY bus_id, status`
	var totals []models.OwnerStatusTotal
	if err := r.db.SelectContext(ctx, &totals, query, args...); err != nil {
		return nil, wrapErr("owner payment totals", err)
	}
	return totals, nil
}
