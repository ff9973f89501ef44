package models

import (
	"time"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
)

// Owner payment statuses.
const (
	OwnerPaymentStatusPaid    = ledger.OwnerPaymentPaid
	OwnerPaymentStatusPending = ledger.OwnerPaymentPending
)

// BusOwnerPayment is a settlement paid by the school to a private bus owner.
type BusOwnerPayment struct {
	ID              string        `db:"id" json:"id"`
	BusID           string        `db:"bus_id" json:"busId"`
	Amount          float64       `db:"amount" json:"amount"`
	PaymentDate     time.Time     `db:"payment_date" json:"paymentDate"`
	PeriodStartDate time.Time     `db:"period_start_date" json:"periodStartDate"`
	PeriodEndDate   time.Time     `db:"period_end_date" json:"periodEndDate"`
	PaymentMethod   PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Status          string        `db:"status" json:"status"`
	TransactionRef  *string       `db:"transaction_ref" json:"transactionRef,omitempty"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// BusOwnerPaymentDetail joins the bus summary.
type BusOwnerPaymentDetail struct {
	BusOwnerPayment
	RegistrationNumber  string  `db:"registration_number" json:"registrationNumber"`
	PrivateOwnerName    *string `db:"private_owner_name" json:"privateOwnerName,omitempty"`
	PrivateOwnerContact *string `db:"private_owner_contact" json:"privateOwnerContact,omitempty"`
	PrivateOwnerBank    *string `db:"private_owner_bank" json:"privateOwnerBank,omitempty"`
}

// BusOwnerPaymentFilter captures list filters.
type BusOwnerPaymentFilter struct {
	BusID  string
	Status string
}

// BusOwnerPaymentRequest is the create payload.
type BusOwnerPaymentRequest struct {
	BusID           string        `json:"busId" validate:"required,uuid"`
	Amount          float64       `json:"amount" validate:"required,gt=0"`
	PaymentDate     *time.Time    `json:"paymentDate" validate:"required"`
	PeriodStartDate *time.Time    `json:"periodStartDate" validate:"required"`
	PeriodEndDate   *time.Time    `json:"periodEndDate" validate:"required"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" validate:"required,oneof=CASH CHEQUE UPI ONLINE_TRANSFER CARD"`
	Status          string        `json:"status" validate:"omitempty,oneof=PAID PENDING"`
	TransactionRef  *string       `json:"transactionRef"`
	Notes           *string       `json:"notes"`
}

// BusOwnerPaymentUpdate is a partial update; nil fields are left untouched.
type BusOwnerPaymentUpdate struct {
	ID              string         `json:"id" validate:"required"`
	Amount          *float64       `json:"amount" validate:"omitempty,gt=0"`
	PaymentDate     *time.Time     `json:"paymentDate"`
	PeriodStartDate *time.Time     `json:"periodStartDate"`
	PeriodEndDate   *time.Time     `json:"periodEndDate"`
	PaymentMethod   *PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=CASH CHEQUE UPI ONLINE_TRANSFER CARD"`
	Status          *string        `json:"status" validate:"omitempty,oneof=PAID PENDING"`
	TransactionRef  *string        `json:"transactionRef"`
	Notes           *string        `json:"notes"`
}

// OwnerRevenue is the collection aggregate for one private bus.
type OwnerRevenue struct {
	BusID               string     `db:"bus_id"`
	RegistrationNumber  string     `db:"registration_number"`
	PrivateOwnerName    *string    `db:"private_owner_name"`
	PrivateOwnerContact *string    `db:"private_owner_contact"`
	PrivateOwnerBank    *string    `db:"private_owner_bank"`
	SchoolCommission    float64    `db:"school_commission"`
	AdvancePayment      float64    `db:"advance_payment"`
	StudentCount        int        `db:"student_count"`
	MonthlyExpected     float64    `db:"monthly_expected"`
	TotalRevenue        float64    `db:"total_revenue"`
	LastPaymentDate     *time.Time `db:"last_payment_date"`
}

// OwnerStats is the settlement view for a private bus.
type OwnerStats struct {
	BusID               string     `json:"busId"`
	RegistrationNumber  string     `json:"registrationNumber"`
	PrivateOwnerName    *string    `json:"privateOwnerName,omitempty"`
	PrivateOwnerContact *string    `json:"privateOwnerContact,omitempty"`
	PrivateOwnerBank    *string    `json:"privateOwnerBank,omitempty"`
	StudentCount        int        `json:"studentCount"`
	MonthlyExpected     float64    `json:"monthlyExpected"`
	LastPaymentDate     *time.Time `json:"lastPaymentDate,omitempty"`
	ledger.Settlement
}

// OwnerStatusTotal is the sum of owner payments per bus and status.
type OwnerStatusTotal struct {
	BusID  string  `db:"bus_id"`
	Status string  `db:"status"`
	Total  float64 `db:"total"`
}
