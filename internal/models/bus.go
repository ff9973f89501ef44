package models

import "time"

// OwnershipType distinguishes school buses from privately owned ones run under contract.
type OwnershipType string

const (
	OwnershipSchool  OwnershipType = "SCHOOL_OWNED"
	OwnershipPrivate OwnershipType = "PRIVATE_OWNED"
)

// BusStatus is the operational state of a bus.
type BusStatus string

const (
	BusStatusActive      BusStatus = "active"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusRetired     BusStatus = "retired"
)

// Bus is a fleet vehicle.
type Bus struct {
	ID                  string        `db:"id" json:"id"`
	RegistrationNumber  string        `db:"registration_number" json:"registrationNumber"`
	ChassisNumber       string        `db:"chassis_number" json:"chassisNumber"`
	Make                *string       `db:"make" json:"make,omitempty"`
	Model               *string       `db:"model" json:"model,omitempty"`
	SeatingCapacity     int           `db:"seating_capacity" json:"seatingCapacity"`
	PurchaseDate        *time.Time    `db:"purchase_date" json:"purchaseDate,omitempty"`
	PrimaryDriverID     *string       `db:"primary_driver_id" json:"primaryDriverId,omitempty"`
	ConductorID         *string       `db:"conductor_id" json:"conductorId,omitempty"`
	FitnessExpiry       *time.Time    `db:"fitness_expiry" json:"fitnessExpiry,omitempty"`
	RegistrationExpiry  *time.Time    `db:"registration_expiry" json:"registrationExpiry,omitempty"`
	InsuranceExpiry     *time.Time    `db:"insurance_expiry" json:"insuranceExpiry,omitempty"`
	OwnershipType       OwnershipType `db:"ownership_type" json:"ownershipType"`
	PrivateOwnerName    *string       `db:"private_owner_name" json:"privateOwnerName,omitempty"`
	PrivateOwnerContact *string       `db:"private_owner_contact" json:"privateOwnerContact,omitempty"`
	PrivateOwnerBank    *string       `db:"private_owner_bank" json:"privateOwnerBank,omitempty"`
	SchoolCommission    float64       `db:"school_commission" json:"schoolCommission"`
	AdvancePayment      float64       `db:"advance_payment" json:"advancePayment"`
	Status              BusStatus     `db:"status" json:"status"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsPrivate reports whether settlements may be recorded for the bus.
func (b *Bus) IsPrivate() bool {
	return b != nil && b.OwnershipType == OwnershipPrivate
}

// BusDetail enriches a bus with crew names and occupancy.
type BusDetail struct {
	Bus
	PrimaryDriverName *string `db:"primary_driver_name" json:"primaryDriverName,omitempty"`
	ConductorName     *string `db:"conductor_name" json:"conductorName,omitempty"`
	RouteName         *string `db:"route_name" json:"routeName,omitempty"`
	ActiveStudents    int     `db:"active_students" json:"activeStudents"`
	StudentCapacity   int     `db:"-" json:"studentCapacity"`
}

// BusFilter captures list filters.
type BusFilter struct {
	Status        BusStatus
	OwnershipType OwnershipType
	Search        string
	Page          int
	PageSize      int
}

// BusRequest is the create/update payload for a bus.
type BusRequest struct {
	RegistrationNumber  string        `json:"registrationNumber" validate:"required"`
	ChassisNumber       string        `json:"chassisNumber" validate:"required"`
	Make                *string       `json:"make"`
	Model               *string       `json:"model"`
	SeatingCapacity     int           `json:"seatingCapacity" validate:"required,gt=0"`
	PurchaseDate        *time.Time    `json:"purchaseDate"`
	PrimaryDriverID     *string       `json:"primaryDriverId" validate:"omitempty,uuid"`
	ConductorID         *string       `json:"conductorId" validate:"omitempty,uuid"`
	FitnessExpiry       *time.Time    `json:"fitnessExpiry"`
	RegistrationExpiry  *time.Time    `json:"registrationExpiry"`
	InsuranceExpiry     *time.Time    `json:"insuranceExpiry"`
	OwnershipType       OwnershipType `json:"ownershipType" validate:"required,oneof=SCHOOL_OWNED PRIVATE_OWNED"`
	PrivateOwnerName    *string       `json:"privateOwnerName" validate:"required_if=OwnershipType PRIVATE_OWNED"`
	PrivateOwnerContact *string       `json:"privateOwnerContact"`
	PrivateOwnerBank    *string       `json:"privateOwnerBank"`
	SchoolCommission    float64       `json:"schoolCommission" validate:"gte=0,lte=100"`
	AdvancePayment      float64       `json:"advancePayment" validate:"gte=0"`
	Status              BusStatus     `json:"status" validate:"omitempty,oneof=active maintenance retired"`
}
