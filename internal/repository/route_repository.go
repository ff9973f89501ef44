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

const routeDetailSelect = `SELECT r.id, r.route_name, r.start_point, r.end_point, r.total_distance_km, r.description, r.created_at, r.updated_at,
br.bus_id, b.registration_number
FROM routes r
LEFT JOIN bus_routes br ON br.route_id = r.id AND br.end_date IS NULL
LEFT JOIN buses b ON b.id = br.bus_id`

// RouteRepository provides access to routes and their bus assignments.
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository constructs a RouteRepository.
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// List returns routes with the bus currently assigned.
func (r *RouteRepository) List(ctx context.Context) ([]models.RouteDetail, error) {
	var routes []models.RouteDetail
	if err := r.db.SelectContext(ctx, &routes, routeDetailSelect+` ORDER BY r.route_name ASC`); err != nil {
		return nil, wrapErr("list routes", err)
	}
	return routes, nil
}

// FindByID returns one route with its current bus.
func (r *RouteRepository) FindByID(ctx context.Context, id string) (*models.RouteDetail, error) {
	var route models.RouteDetail
	if err := r.db.GetContext(ctx, &route, routeDetailSelect+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find route", err)
	}
	return &route, nil
}

// Create inserts a route.
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	route.CreatedAt = now
	route.UpdatedAt = now
	const query = `INSERT INTO routes (id, route_name, start_point, end_point, total_distance_km, description, created_at, updated_at)
VALUES (:id, :route_name, :start_point, :end_point, :total_distance_km, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, route); err != nil {
		return wrapWriteErr("create route", err)
	}
	return nil
}

// Update replaces the mutable columns of a route.
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	route.UpdatedAt = time.Now().UTC()
	const query = `UPDATE routes SET route_name = :route_name, start_point = :start_point, end_point = :end_point,
total_distance_km = :total_distance_km, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, route)
	if err != nil {
		return wrapWriteErr("update route", err)
	}
	return expectAffected(res, "update route")
}

// Delete removes a route and its assignment history.
func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete route", err)
	}
	return expectAffected(res, "delete route")
}

// ActiveRouteOfBus returns the route id the bus currently runs, if any.
func (r *RouteRepository) ActiveRouteOfBus(ctx context.Context, busID string) (string, error) {
	var routeID string
	err := r.db.GetContext(ctx, &routeID, `SELECT route_id FROM bus_routes WHERE bus_id = $1 AND end_date IS NULL LIMIT 1`, busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", wrapErr("active route of bus", err)
	}
	return routeID, nil
}

// AssignBus closes the route's open assignment and opens a new one for busID.
func (r *RouteRepository) AssignBus(ctx context.Context, assignment *models.BusRoute) (err error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	if assignment.StartDate.IsZero() {
		assignment.StartDate = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin assign bus", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE bus_routes SET end_date = $2 WHERE route_id = $1 AND end_date IS NULL`, assignment.RouteID, assignment.StartDate); err != nil {
		return wrapErr("close route assignment", err)
	}
	const insert = `INSERT INTO bus_routes (id, bus_id, route_id, academic_term, start_date, end_date, created_at)
VALUES (:id, :bus_id, :route_id, :academic_term, :start_date, :end_date, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return wrapWriteErr("insert route assignment", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapErr("commit assign bus", err)
	}
	return nil
}
