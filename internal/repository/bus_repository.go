package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

const busColumns = `b.id, b.registration_number, b.chassis_number, b.make, b.model, b.seating_capacity, b.purchase_date,
b.primary_driver_id, b.conductor_id, b.fitness_expiry, b.registration_expiry, b.insurance_expiry, b.ownership_type,
b.private_owner_name, b.private_owner_contact, b.private_owner_bank, b.school_commission, b.advance_payment,
b.status, b.created_at, b.updated_at`

const busDetailSelect = `SELECT ` + busColumns + `,
d.name AS primary_driver_name, c.name AS conductor_name, r.route_name AS route_name,
(SELECT COUNT(*) FROM students s WHERE s.bus_id = b.id AND s.is_active = TRUE) AS active_students
FROM buses b
LEFT JOIN drivers d ON d.id = b.primary_driver_id
LEFT JOIN drivers c ON c.id = b.conductor_id
LEFT JOIN bus_routes br ON br.bus_id = b.id AND br.end_date IS NULL
LEFT JOIN routes r ON r.id = br.route_id`

// BusRepository provides access to the buses table.
type BusRepository struct {
	db *sqlx.DB
}

// NewBusRepository constructs a BusRepository.
func NewBusRepository(db *sqlx.DB) *BusRepository {
	return &BusRepository{db: db}
}

// List returns buses with crew names and active student counts.
func (r *BusRepository) List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.OwnershipType != "" {
		args = append(args, filter.OwnershipType)
		conditions = append(conditions, fmt.Sprintf("b.ownership_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(b.registration_number) LIKE $%d", len(args)))
	}
	where := whereClause(conditions)

	_, size, offset := models.PageBounds(filter.Page, filter.PageSize, 50, 200)
	query := fmt.Sprintf("%s%s ORDER BY b.registration_number ASC LIMIT %d OFFSET %d", busDetailSelect, where, size, offset)
	var buses []models.BusDetail
	if err := r.db.SelectContext(ctx, &buses, query, args...); err != nil {
		return nil, 0, wrapErr("list buses", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM buses b"+where, args...); err != nil {
		return nil, 0, wrapErr("count buses", err)
	}
	return buses, total, nil
}

// FindByID returns the bus row.
func (r *BusRepository) FindByID(ctx context.Context, id string) (*models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses b WHERE b.id = $1`
	var bus models.Bus
	if err := r.db.GetContext(ctx, &bus, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find bus", err)
	}
	return &bus, nil
}

// FindDetailByID returns the bus with crew names and occupancy.
func (r *BusRepository) FindDetailByID(ctx context.Context, id string) (*models.BusDetail, error) {
	query := busDetailSelect + ` WHERE b.id = $1`
	var bus models.BusDetail
	if err := r.db.GetContext(ctx, &bus, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find bus detail", err)
	}
	return &bus, nil
}

// FindByDriver returns the bus a driver or conductor is assigned to, excluding one bus id.
func (r *BusRepository) FindByDriver(ctx context.Context, driverID, excludeBusID string) (*models.BusSummary, error) {
	const query = `SELECT id, registration_number FROM buses
WHERE (primary_driver_id = $1 OR conductor_id = $1) AND id <> $2 AND status <> 'retired' LIMIT 1`
	var bus models.BusSummary
	if excludeBusID == "" {
		excludeBusID = uuid.Nil.String()
	}
	if err := r.db.GetContext(ctx, &bus, query, driverID, excludeBusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("find bus by driver", err)
	}
	return &bus, nil
}

// ListByDriver returns every bus the crew member is on.
func (r *BusRepository) ListByDriver(ctx context.Context, driverID string) ([]models.BusSummary, error) {
	const query = `SELECT id, registration_number FROM buses WHERE primary_driver_id = $1 OR conductor_id = $1 ORDER BY registration_number`
	var buses []models.BusSummary
	if err := r.db.SelectContext(ctx, &buses, query, driverID); err != nil {
		return nil, wrapErr("list buses by driver", err)
	}
	return buses, nil
}

// ListExpiring returns fitness, registration and insurance expiries up to the given date.
func (r *BusRepository) ListExpiring(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error) {
	const query = `SELECT id AS entity_id, registration_number AS entity_name, kind, due_date FROM (
SELECT id, registration_number, 'bus_fitness' AS kind, fitness_expiry AS due_date FROM buses WHERE status <> 'retired'
UNION ALL
SELECT id, registration_number, 'bus_registration', registration_expiry FROM buses WHERE status <> 'retired'
UNION ALL
SELECT id, registration_number, 'bus_insurance', insurance_expiry FROM buses WHERE status <> 'retired'
) e WHERE due_date IS NOT NULL AND due_date >= $1 AND due_date <= $2`
	var items []models.ExpiringItem
	if err := r.db.SelectContext(ctx, &items, query, from, until); err != nil {
		return nil, wrapErr("list expiring buses", err)
	}
	return items, nil
}

// Overview aggregates fleet headline counts.
func (r *BusRepository) Overview(ctx context.Context, monthStart, monthEnd time.Time) (*models.FleetOverview, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM buses) AS total_buses,
(SELECT COUNT(*) FROM buses WHERE status = 'active') AS active_buses,
(SELECT COUNT(*) FROM buses WHERE status = 'maintenance') AS maintenance_buses,
(SELECT COUNT(*) FROM buses WHERE status = 'retired') AS retired_buses,
(SELECT COUNT(*) FROM buses WHERE ownership_type = 'SCHOOL_OWNED') AS school_owned,
(SELECT COUNT(*) FROM buses WHERE ownership_type = 'PRIVATE_OWNED') AS private_owned,
(SELECT COUNT(*) FROM drivers) AS total_drivers,
(SELECT COUNT(*) FROM drivers WHERE status = 'active') AS active_drivers,
(SELECT COUNT(*) FROM students WHERE is_active = TRUE) AS active_students,
(SELECT COUNT(*) FROM routes) AS total_routes,
(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE date >= $1 AND date < $2) AS monthly_expenses`
	var overview models.FleetOverview
	if err := r.db.GetContext(ctx, &overview, query, monthStart, monthEnd); err != nil {
		return nil, wrapErr("fleet overview", err)
	}
	return &overview, nil
}

// Create inserts a bus.
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	bus.CreatedAt = now
	bus.UpdatedAt = now
	const query = `INSERT INTO buses (id, registration_number, chassis_number, make, model, seating_capacity, purchase_date,
primary_driver_id, conductor_id, fitness_expiry, registration_expiry, insurance_expiry, ownership_type,
private_owner_name, private_owner_contact, private_owner_bank, school_commission, advance_payment, status, created_at, updated_at)
VALUES (:id, :registration_number, :chassis_number, :make, :model, :seating_capacity, :purchase_date,
:primary_driver_id, :conductor_id, :fitness_expiry, :registration_expiry, :insurance_expiry, :ownership_type,
:private_owner_name, :private_owner_contact, :private_owner_bank, :school_commission, :advance_payment, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, bus); err != nil {
		return wrapWriteErr("create bus", err)
	}
	return nil
}

// Update replaces the mutable columns of a bus.
func (r *BusRepository) Update(ctx context.Context, bus *models.Bus) error {
	bus.UpdatedAt = time.Now().UTC()
	const query = `UPDATE buses SET registration_number = :registration_number, chassis_number = :chassis_number, make = :make,
model = :model, seating_capacity = :seating_capacity, purchase_date = :purchase_date, primary_driver_id = :primary_driver_id,
conductor_id = :conductor_id, fitness_expiry = :fitness_expiry, registration_expiry = :registration_expiry,
insurance_expiry = :insurance_expiry, ownership_type = :ownership_type, private_owner_name = :private_owner_name,
private_owner_contact = :private_owner_contact, private_owner_bank = :private_owner_bank, school_commission = :school_commission,
advance_payment = :advance_payment, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, bus)
	if err != nil {
		return wrapWriteErr("update bus", err)
	}
	return expectAffected(res, "update bus")
}

// Delete removes a bus.
func (r *BusRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM buses WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete bus", err)
	}
	return expectAffected(res, "delete bus")
}

// expectAffected turns a zero-row write into sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
