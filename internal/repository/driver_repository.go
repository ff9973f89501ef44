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

const driverColumns = `id, name, role, phone, address, license_number, license_expiry, aadhar_number, joining_date, salary, status, created_at, updated_at`

// DriverRepository provides access to drivers and conductors.
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository constructs a DriverRepository.
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// List returns crew members ordered by name.
func (r *DriverRepository) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error) {
	var conditions []string
	var args []interface{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR phone LIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + driverColumns + ` FROM drivers` + whereClause(conditions) + ` ORDER BY name ASC`
	var drivers []models.Driver
	if err := r.db.SelectContext(ctx, &drivers, query, args...); err != nil {
		return nil, wrapErr("list drivers", err)
	}
	return drivers, nil
}

// FindByID returns a crew member.
func (r *DriverRepository) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	var driver models.Driver
	if err := r.db.GetContext(ctx, &driver, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find driver", err)
	}
	return &driver, nil
}

// ListExpiringLicenses returns active drivers whose licence expires within the window.
func (r *DriverRepository) ListExpiringLicenses(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error) {
	const query = `SELECT id AS entity_id, name AS entity_name, 'driver_license' AS kind, license_expiry AS due_date
FROM drivers WHERE status = 'active' AND license_expiry IS NOT NULL AND license_expiry >= $1 AND license_expiry <= $2`
	var items []models.ExpiringItem
	if err := r.db.SelectContext(ctx, &items, query, from, until); err != nil {
		return nil, wrapErr("list expiring licences", err)
	}
	return items, nil
}

// Create inserts a crew member.
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	driver.CreatedAt = now
	driver.UpdatedAt = now
	const query = `INSERT INTO drivers (id, name, role, phone, address, license_number, license_expiry, aadhar_number, joining_date, salary, status, created_at, updated_at)
VALUES (:id, :name, :role, :phone, :address, :license_number, :license_expiry, :aadhar_number, :joining_date, :salary, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, driver); err != nil {
		return wrapWriteErr("create driver", err)
	}
	return nil
}

// Update replaces the mutable columns of a crew member.
func (r *DriverRepository) Update(ctx context.Context, driver *models.Driver) error {
	driver.UpdatedAt = time.Now().UTC()
	const query = `UPDATE drivers SET name = :name, role = :role, phone = :phone, address = :address, license_number = :license_number,
license_expiry = :license_expiry, aadhar_number = :aadhar_number, joining_date = :joining_date, salary = :salary,
status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, driver)
	if err != nil {
		return wrapWriteErr("update driver", err)
	}
	return expectAffected(res, "update driver")
}

// Delete removes a crew member; bus assignments are cleared by the foreign keys.
func (r *DriverRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete driver", err)
	}
	return expectAffected(res, "delete driver")
}
