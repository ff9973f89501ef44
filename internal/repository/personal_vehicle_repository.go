package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

// PersonalVehicleRepository provides access to non-fleet vehicles fuelled from the depot.
type PersonalVehicleRepository struct {
	db *sqlx.DB
}

// NewPersonalVehicleRepository constructs a PersonalVehicleRepository.
func NewPersonalVehicleRepository(db *sqlx.DB) *PersonalVehicleRepository {
	return &PersonalVehicleRepository{db: db}
}

// List returns active vehicles by name.
func (r *PersonalVehicleRepository) List(ctx context.Context) ([]models.PersonalVehicle, error) {
	const query = `SELECT id, vehicle_name, vehicle_number, owner_name, vehicle_type, notes, is_active, created_at
FROM personal_vehicles WHERE is_active = TRUE ORDER BY vehicle_name ASC`
	var vehicles []models.PersonalVehicle
	if err := r.db.SelectContext(ctx, &vehicles, query); err != nil {
		return nil, wrapErr("list personal vehicles", err)
	}
	return vehicles, nil
}

// FindByID returns an active vehicle.
func (r *PersonalVehicleRepository) FindByID(ctx context.Context, id string) (*models.PersonalVehicle, error) {
	const query = `SELECT id, vehicle_name, vehicle_number, owner_name, vehicle_type, notes, is_active, created_at
FROM personal_vehicles WHERE id = $1 AND is_active = TRUE`
	var vehicle models.PersonalVehicle
	if err := r.db.GetContext(ctx, &vehicle, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find personal vehicle", err)
	}
	return &vehicle, nil
}

// Create inserts a vehicle.
func (r *PersonalVehicleRepository) Create(ctx context.Context, vehicle *models.PersonalVehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	vehicle.IsActive = true
	vehicle.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO personal_vehicles (id, vehicle_name, vehicle_number, owner_name, vehicle_type, notes, is_active, created_at)
VALUES (:id, :vehicle_name, :vehicle_number, :owner_name, :vehicle_type, :notes, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return wrapWriteErr("create personal vehicle", err)
	}
	return nil
}

// Deactivate hides a vehicle while keeping its dispense history.
func (r *PersonalVehicleRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE personal_vehicles SET is_active = FALSE WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return wrapErr("deactivate personal vehicle", err)
	}
	return expectAffected(res, "deactivate personal vehicle")
}
