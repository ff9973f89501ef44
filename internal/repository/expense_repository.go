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

// MaxExpenseListSize bounds every expense listing.
const MaxExpenseListSize = 100

// ExpenseRepository provides access to bus running costs.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository constructs an ExpenseRepository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create logs an expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	expense.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO expenses (id, bus_id, category, amount, date, description, odometer_reading, receipt_url, created_at)
VALUES (:id, :bus_id, :category, :amount, :date, :description, :odometer_reading, :receipt_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return wrapWriteErr("create expense", err)
	}
	return nil
}

// List returns expenses newest first, capped at MaxExpenseListSize.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.ExpenseDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.BusID != "" {
		args = append(args, filter.BusID)
		conditions = append(conditions, fmt.Sprintf("e.bus_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("e.category = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("e.date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("e.date <= $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 || limit > MaxExpenseListSize {
		limit = MaxExpenseListSize
	}
	query := `SELECT e.id, e.bus_id, e.category, e.amount, e.date, e.description, e.odometer_reading, e.receipt_url, e.created_at, b.registration_number
FROM expenses e JOIN buses b ON b.id = e.bus_id` + whereClause(conditions) + fmt.Sprintf(" ORDER BY e.date DESC, e.created_at DESC LIMIT %d", limit)
	var expenses []models.ExpenseDetail
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, wrapErr("list expenses", err)
	}
	return expenses, nil
}

// CategoryTotals sums expenses per category within [start, end).
func (r *ExpenseRepository) CategoryTotals(ctx context.Context, start, end time.Time) ([]models.CategoryTotal, error) {
	const query = `SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
FROM expenses WHERE date >= $1 AND date < $2 GROUP BY category`
	var totals []models.CategoryTotal
	if err := r.db.SelectContext(ctx, &totals, query, start, end); err != nil {
		return nil, wrapErr("expense category totals", err)
	}
	return totals, nil
}

type fuelExpenseRow struct {
	BusID              string    `db:"bus_id"`
	RegistrationNumber string    `db:"registration_number"`
	Date               time.Time `db:"date"`
	Odometer           float64   `db:"odometer_reading"`
	Amount             float64   `db:"amount"`
}

// BusFuelReadings is the odometer history of one bus from fuel expenses.
type BusFuelReadings struct {
	BusID              string
	RegistrationNumber string
	Readings           []ledger.OdometerReading
}

// FuelReadings returns fuel expenses with odometer values grouped per bus.
// An empty busID covers every bus.
func (r *ExpenseRepository) FuelReadings(ctx context.Context, busID string) ([]BusFuelReadings, error) {
	query := `SELECT e.bus_id, b.registration_number, e.date, e.odometer_reading, e.amount
FROM expenses e JOIN buses b ON b.id = e.bus_id
WHERE e.category = $1 AND e.odometer_reading IS NOT NULL`
	args := []interface{}{models.ExpenseFuel}
	if busID != "" {
		query += ` AND e.bus_id = $2`
		args = append(args, busID)
	}
	query += ` ORDER BY b.registration_number ASC, e.date ASC`
	var rows []fuelExpenseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("fuel expense readings", err)
	}

	var grouped []BusFuelReadings
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.BusID]
		if !ok {
			i = len(grouped)
			index[row.BusID] = i
			grouped = append(grouped, BusFuelReadings{BusID: row.BusID, RegistrationNumber: row.RegistrationNumber})
		}
		grouped[i].Readings = append(grouped[i].Readings, ledger.OdometerReading{Date: row.Date, Odometer: row.Odometer, Cost: row.Amount})
	}
	return grouped, nil
}
