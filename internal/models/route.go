package models

import "time"

// Route is a named pickup route.
type Route struct {
	ID              string    `db:"id" json:"id"`
	RouteName       string    `db:"route_name" json:"routeName"`
	StartPoint      string    `db:"start_point" json:"startPoint"`
	EndPoint        string    `db:"end_point" json:"endPoint"`
	TotalDistanceKm *float64  `db:"total_distance_km" json:"totalDistanceKm,omitempty"`
	Description     *string   `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// RouteDetail includes the bus currently running the route.
type RouteDetail struct {
	Route
	BusID              *string `db:"bus_id" json:"busId,omitempty"`
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`
}

// BusRoute is one assignment period of a bus to a route. EndDate nil means current.
type BusRoute struct {
	ID           string     `db:"id" json:"id"`
	BusID        string     `db:"bus_id" json:"busId"`
	RouteID      string     `db:"route_id" json:"routeId"`
	AcademicTerm string     `db:"academic_term" json:"academicTerm"`
	StartDate    time.Time  `db:"start_date" json:"startDate"`
	EndDate      *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// RouteRequest is the create/update payload for a route.
type RouteRequest struct {
	RouteName       string   `json:"routeName" validate:"required"`
	StartPoint      string   `json:"startPoint" validate:"required"`
	EndPoint        string   `json:"endPoint" validate:"required"`
	TotalDistanceKm *float64 `json:"totalDistanceKm" validate:"omitempty,gte=0"`
	Description     *string  `json:"description"`
}

// AssignBusRequest places a bus on a route.
type AssignBusRequest struct {
	RouteID string `json:"routeId" validate:"required,uuid"`
	BusID   string `json:"busId" validate:"required,uuid"`
}
