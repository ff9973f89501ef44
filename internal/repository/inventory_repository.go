package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	"github.com/noah-isme/bus-fleet-api/internal/models"
)

// InsufficientStockError reports the stock left when a dispense exceeds it.
type InsufficientStockError struct {
	Category  models.InventoryCategory
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s in stock: %.2f available", e.Category.Label(), e.Available)
}

// advisory lock keys, one per category.
var inventoryLockKeys = map[models.InventoryCategory]int64{
	models.CategoryFuel: 7_100_001,
	models.CategoryUrea: 7_100_002,
}

const stockQuery = `SELECT
COALESCE((SELECT SUM(quantity) FROM inventory_purchases WHERE category = $1), 0) -
COALESCE((SELECT SUM(quantity) FROM inventory_dispenses WHERE category = $1), 0)`

const dispenseDetailSelect = `SELECT d.id, d.category, d.bus_id, d.vehicle_id, d.date, d.quantity, d.odometer_reading, d.dispensed_by,
d.purpose, d.notes, d.created_at, b.registration_number, v.vehicle_name, v.vehicle_number
FROM inventory_dispenses d
LEFT JOIN buses b ON b.id = d.bus_id
LEFT JOIN personal_vehicles v ON v.id = d.vehicle_id`

// InventoryRepository provides access to the fuel and urea purchase and dispense logs.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository constructs an InventoryRepository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// CreatePurchase records stock bought into the depot.
func (r *InventoryRepository) CreatePurchase(ctx context.Context, purchase *models.InventoryPurchase) error {
	if purchase.ID == "" {
		purchase.ID = uuid.NewString()
	}
	purchase.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO inventory_purchases (id, category, date, quantity, price_per_litre, total_cost, vendor_name, invoice_number, notes, created_at)
VALUES (:id, :category, :date, :quantity, :price_per_litre, :total_cost, :vendor_name, :invoice_number, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, purchase); err != nil {
		return wrapWriteErr("create inventory purchase", err)
	}
	return nil
}

// ListPurchases returns purchases newest first. limit <= 0 returns all.
func (r *InventoryRepository) ListPurchases(ctx context.Context, category models.InventoryCategory, limit int) ([]models.InventoryPurchase, error) {
	query := `SELECT id, category, date, quantity, price_per_litre, total_cost, vendor_name, invoice_number, notes, created_at
FROM inventory_purchases WHERE category = $1 ORDER BY date DESC, created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var purchases []models.InventoryPurchase
	if err := r.db.SelectContext(ctx, &purchases, query, category); err != nil {
		return nil, wrapErr("list inventory purchases", err)
	}
	return purchases, nil
}

// DeletePurchase removes a purchase of the given category.
func (r *InventoryRepository) DeletePurchase(ctx context.Context, category models.InventoryCategory, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_purchases WHERE id = $1 AND category = $2`, id, category)
	if err != nil {
		return wrapErr("delete inventory purchase", err)
	}
	return expectAffected(res, "delete inventory purchase")
}

// Dispense records stock issued to a bus or vehicle. Dispenses of one
// category are serialised with an advisory lock so the stock check holds.
func (r *InventoryRepository) Dispense(ctx context.Context, dispense *models.InventoryDispense, enforceStock bool) (err error) {
	if dispense.ID == "" {
		dispense.ID = uuid.NewString()
	}
	dispense.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin dispense", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, inventoryLockKeys[dispense.Category]); err != nil {
		return wrapErr("lock inventory", err)
	}
	if enforceStock {
		var stock float64
		if err = tx.GetContext(ctx, &stock, stockQuery, dispense.Category); err != nil {
			return wrapErr("read stock", err)
		}
		if dispense.Quantity > stock {
			err = &InsufficientStockError{Category: dispense.Category, Available: ledger.Total(stock)}
			return err
		}
	}

	const insert = `INSERT INTO inventory_dispenses (id, category, bus_id, vehicle_id, date, quantity, odometer_reading, dispensed_by, purpose, notes, created_at)
VALUES (:id, :category, :bus_id, :vehicle_id, :date, :quantity, :odometer_reading, :dispensed_by, :purpose, :notes, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, dispense); err != nil {
		return wrapWriteErr("insert dispense", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit dispense", err)
	}
	return nil
}

// ListDispenses returns dispenses newest first. limit <= 0 returns all.
func (r *InventoryRepository) ListDispenses(ctx context.Context, filter models.DispenseFilter, limit int) ([]models.DispenseDetail, error) {
	args := []interface{}{filter.Category}
	conditions := []string{"d.category = $1"}
	if filter.BusID != "" {
		args = append(args, filter.BusID)
		conditions = append(conditions, fmt.Sprintf("d.bus_id = $%d", len(args)))
	}
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		conditions = append(conditions, fmt.Sprintf("d.vehicle_id = $%d", len(args)))
	}
	if filter.PersonalOnly {
		conditions = append(conditions, "d.vehicle_id IS NOT NULL")
	}
	query := dispenseDetailSelect + whereClause(conditions) + ` ORDER BY d.date DESC, d.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var dispenses []models.DispenseDetail
	if err := r.db.SelectContext(ctx, &dispenses, query, args...); err != nil {
		return nil, wrapErr("list dispenses", err)
	}
	return dispenses, nil
}

// DeleteDispense removes a dispense of the given category.
func (r *InventoryRepository) DeleteDispense(ctx context.Context, category models.InventoryCategory, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_dispenses WHERE id = $1 AND category = $2`, id, category)
	if err != nil {
		return wrapErr("delete dispense", err)
	}
	return expectAffected(res, "delete dispense")
}

// Totals aggregates both logs of a category.
func (r *InventoryRepository) Totals(ctx context.Context, category models.InventoryCategory) (*models.InventoryTotals, error) {
	const query = `SELECT
COALESCE((SELECT SUM(quantity) FROM inventory_purchases WHERE category = $1), 0) AS total_purchased,
COALESCE((SELECT SUM(quantity) FROM inventory_dispenses WHERE category = $1), 0) AS total_dispensed,
COALESCE((SELECT SUM(total_cost) FROM inventory_purchases WHERE category = $1), 0) AS total_spent,
(SELECT COUNT(*) FROM inventory_purchases WHERE category = $1) AS purchase_count,
(SELECT COUNT(*) FROM inventory_dispenses WHERE category = $1) AS dispense_count`
	var totals models.InventoryTotals
	if err := r.db.GetContext(ctx, &totals, query, category); err != nil {
		return nil, wrapErr("inventory totals", err)
	}
	return &totals, nil
}

// BusTotals returns per-bus dispensed quantities, largest first.
func (r *InventoryRepository) BusTotals(ctx context.Context, category models.InventoryCategory) ([]models.BusDispenseTotal, error) {
	const query = `SELECT d.bus_id, b.registration_number, SUM(d.quantity) AS total_dispensed, COUNT(*) AS dispense_count
FROM inventory_dispenses d JOIN buses b ON b.id = d.bus_id
WHERE d.category = $1 GROUP BY d.bus_id, b.registration_number ORDER BY total_dispensed DESC`
	var totals []models.BusDispenseTotal
	if err := r.db.SelectContext(ctx, &totals, query, category); err != nil {
		return nil, wrapErr("bus dispense totals", err)
	}
	return totals, nil
}

type odometerRow struct {
	Date     time.Time `db:"date"`
	Odometer float64   `db:"odometer_reading"`
	Litres   float64   `db:"quantity"`
}

// FuelReadings returns fuel dispenses into a bus that carry an odometer value,
// plus the litres dispensed into the bus overall.
func (r *InventoryRepository) FuelReadings(ctx context.Context, busID string) ([]ledger.OdometerReading, float64, error) {
	const query = `SELECT date, odometer_reading, quantity FROM inventory_dispenses
WHERE category = $1 AND bus_id = $2 AND odometer_reading IS NOT NULL ORDER BY date ASC`
	var rows []odometerRow
	if err := r.db.SelectContext(ctx, &rows, query, models.CategoryFuel, busID); err != nil {
		return nil, 0, wrapErr("fuel readings", err)
	}
	var litres float64
	const total = `SELECT COALESCE(SUM(quantity), 0) FROM inventory_dispenses WHERE category = $1 AND bus_id = $2`
	if err := r.db.GetContext(ctx, &litres, total, models.CategoryFuel, busID); err != nil {
		return nil, 0, wrapErr("fuel litres", err)
	}
	readings := make([]ledger.OdometerReading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, ledger.OdometerReading{Date: row.Date, Odometer: row.Odometer, Litres: row.Litres})
	}
	return readings, litres, nil
}
