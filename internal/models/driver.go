package models

import "time"

// DriverRole separates licensed drivers from conductors.
type DriverRole string

const (
	DriverRoleDriver    DriverRole = "driver"
	DriverRoleConductor DriverRole = "conductor"
)

// DriverStatus values.
const (
	DriverStatusActive    = "active"
	DriverStatusInactive  = "inactive"
	DriverStatusSuspended = "suspended"
)

// Driver is a crew member: driver or conductor.
type Driver struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Role          DriverRole `db:"role" json:"role"`
	Phone         string     `db:"phone" json:"phone"`
	Address       *string    `db:"address" json:"address,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"licenseNumber,omitempty"`
	LicenseExpiry *time.Time `db:"license_expiry" json:"licenseExpiry,omitempty"`
	AadharNumber  *string    `db:"aadhar_number" json:"aadharNumber,omitempty"`
	JoiningDate   *time.Time `db:"joining_date" json:"joiningDate,omitempty"`
	Salary        *float64   `db:"salary" json:"salary,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// DriverDetail adds the buses the crew member is assigned to.
type DriverDetail struct {
	Driver
	Buses     []BusSummary `json:"buses"`
	Documents []Document   `json:"documents"`
}

// BusSummary is the minimal bus reference embedded in other responses.
type BusSummary struct {
	ID                 string `db:"id" json:"id"`
	RegistrationNumber string `db:"registration_number" json:"registrationNumber"`
}

// DriverFilter captures list filters.
type DriverFilter struct {
	Role   DriverRole
	Status string
	Search string
}

// DriverRequest is the create/update payload for a crew member.
type DriverRequest struct {
	Name          string     `json:"name" validate:"required"`
	Role          DriverRole `json:"role" validate:"required,oneof=driver conductor"`
	Phone         string     `json:"phone" validate:"required"`
	Address       *string    `json:"address"`
	LicenseNumber *string    `json:"licenseNumber" validate:"required_if=Role driver"`
	LicenseExpiry *time.Time `json:"licenseExpiry" validate:"required_if=Role driver"`
	AadharNumber  *string    `json:"aadharNumber"`
	JoiningDate   *time.Time `json:"joiningDate"`
	Salary        *float64   `json:"salary" validate:"omitempty,gte=0"`
	Status        string     `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}
