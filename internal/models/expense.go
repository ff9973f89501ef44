package models

import (
	"time"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
)

// ExpenseCategory enumerates running-cost buckets.
type ExpenseCategory string

const (
	ExpenseFuel        ExpenseCategory = "Fuel"
	ExpenseMaintenance ExpenseCategory = "Maintenance"
	ExpenseSalary      ExpenseCategory = "Salary"
	ExpenseInsurance   ExpenseCategory = "Insurance"
	ExpenseOther       ExpenseCategory = "Other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{ExpenseFuel, ExpenseMaintenance, ExpenseSalary, ExpenseInsurance, ExpenseOther}

// Expense is a running cost logged against a bus.
type Expense struct {
	ID              string          `db:"id" json:"id"`
	BusID           string          `db:"bus_id" json:"busId"`
	Category        ExpenseCategory `db:"category" json:"category"`
	Amount          float64         `db:"amount" json:"amount"`
	Date            time.Time       `db:"date" json:"date"`
	Description     *string         `db:"description" json:"description,omitempty"`
	OdometerReading *float64        `db:"odometer_reading" json:"odometerReading,omitempty"`
	ReceiptURL      *string         `db:"receipt_url" json:"receiptUrl,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// ExpenseDetail joins the bus registration.
type ExpenseDetail struct {
	Expense
	RegistrationNumber string `db:"registration_number" json:"registrationNumber"`
}

// ExpenseFilter captures list filters.
type ExpenseFilter struct {
	BusID     string
	Category  ExpenseCategory
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// ExpenseRequest logs an expense.
type ExpenseRequest struct {
	BusID           string          `json:"busId" validate:"required,uuid"`
	Category        ExpenseCategory `json:"category" validate:"required,oneof=Fuel Maintenance Salary Insurance Other"`
	Amount          float64         `json:"amount" validate:"gte=0"`
	Date            *time.Time      `json:"date" validate:"required"`
	Description     *string         `json:"description"`
	OdometerReading *float64        `json:"odometerReading" validate:"omitempty,gte=0"`
	ReceiptURL      *string         `json:"receiptUrl" validate:"omitempty,url"`
}

// CategoryTotal is one row of a grouped expense sum.
type CategoryTotal struct {
	Category ExpenseCategory `db:"category"`
	Total    float64         `db:"total"`
	Count    int             `db:"count"`
}

// ExpenseAggregate sums expenses per category.
type ExpenseAggregate struct {
	Total      float64                     `json:"total"`
	ByCategory map[ExpenseCategory]float64 `json:"byCategory"`
	Count      int                         `json:"count"`
}

// MonthlyComparison compares a month against the previous one.
type MonthlyComparison struct {
	Current          ExpenseAggregate `json:"current"`
	Previous         ExpenseAggregate `json:"previous"`
	PercentageChange float64          `json:"percentageChange"`
}

// BusCostPerKm is the running cost per km for one bus.
type BusCostPerKm struct {
	BusID              string `json:"busId"`
	RegistrationNumber string `json:"registrationNumber"`
	ledger.CostPerKm
}
