package models

import "time"

// Student is a passenger billed a monthly transport fee.
type Student struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Class            string     `db:"class" json:"class"`
	Section          *string    `db:"section" json:"section,omitempty"`
	Village          *string    `db:"village" json:"village,omitempty"`
	ParentName       *string    `db:"parent_name" json:"parentName,omitempty"`
	ParentContact    *string    `db:"parent_contact" json:"parentContact,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergencyContact,omitempty"`
	MonthlyFee       float64    `db:"monthly_fee" json:"monthlyFee"`
	FeeWaiverPercent float64    `db:"fee_waiver_percent" json:"feeWaiverPercent"`
	BusID            *string    `db:"bus_id" json:"busId,omitempty"`
	StartDate        *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate          *time.Time `db:"end_date" json:"endDate,omitempty"`
	IsActive         bool       `db:"is_active" json:"isActive"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// StudentDetail adds the bus registration and fees collected so far.
type StudentDetail struct {
	Student
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`
	FeePaid            float64 `db:"fee_paid" json:"feePaid"`
}

// StudentFilter captures list filters.
type StudentFilter struct {
	BusID    string
	Class    string
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

// StudentRequest is the create/update payload for a student.
type StudentRequest struct {
	Name             string     `json:"name" validate:"required"`
	Class            string     `json:"class" validate:"required"`
	Section          *string    `json:"section"`
	Village          *string    `json:"village"`
	ParentName       *string    `json:"parentName"`
	ParentContact    *string    `json:"parentContact"`
	EmergencyContact *string    `json:"emergencyContact"`
	MonthlyFee       float64    `json:"monthlyFee" validate:"gte=0"`
	FeeWaiverPercent float64    `json:"feeWaiverPercent" validate:"gte=0,lte=100"`
	BusID            string     `json:"busId" validate:"required,uuid"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}

// Student status-history states.
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// StudentStatusHistory records one active or inactive period. EndDate nil means open.
type StudentStatusHistory struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"studentId"`
	Status    string     `db:"status" json:"status"`
	StartDate time.Time  `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`
	Reason    *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// StudentStatusRequest activates or deactivates a student.
type StudentStatusRequest struct {
	IsActive      *bool      `json:"isActive" validate:"required"`
	EffectiveDate *time.Time `json:"effectiveDate"`
	Reason        *string    `json:"reason"`
}

// PromoteRequest moves students up one class. Empty StudentIDs promotes every active student.
type PromoteRequest struct {
	StudentIDs []string `json:"studentIds" validate:"omitempty,dive,uuid"`
}

// PromoteResult summarises a promotion run.
type PromoteResult struct {
	Promoted int `json:"promoted"`
	Capped   int `json:"capped"`
	Skipped  int `json:"skipped"`
}

// StudentExportRow is one line of the student fee export.
type StudentExportRow struct {
	ID                 string  `db:"id" json:"id"`
	Name               string  `db:"name" json:"name"`
	Class              string  `db:"class" json:"class"`
	Section            *string `db:"section" json:"section,omitempty"`
	Village            *string `db:"village" json:"village,omitempty"`
	ParentName         *string `db:"parent_name" json:"parentName,omitempty"`
	ParentContact      *string `db:"parent_contact" json:"parentContact,omitempty"`
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`
	MonthlyFee         float64 `db:"monthly_fee" json:"monthlyFee"`
	FeeWaiverPercent   float64 `db:"fee_waiver_percent" json:"feeWaiverPercent"`
	IsActive           bool    `db:"is_active" json:"isActive"`
	PaidInYear         float64 `db:"paid_in_year" json:"paidInYear"`
	AnnualDue          float64 `db:"-" json:"annualDue"`
	Outstanding        float64 `db:"-" json:"outstanding"`
}
