package models

import (
	"time"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
)

// InventoryCategory selects the fuel or urea ledger.
type InventoryCategory string

const (
	CategoryFuel InventoryCategory = ledger.CategoryFuel
	CategoryUrea InventoryCategory = ledger.CategoryUrea
)

// Label is the lower-case name used in messages and URLs.
func (c InventoryCategory) Label() string {
	if c == CategoryUrea {
		return "urea"
	}
	return "fuel"
}

// InventoryPurchase is stock bought into the depot.
type InventoryPurchase struct {
	ID            string            `db:"id" json:"id"`
	Category      InventoryCategory `db:"category" json:"category"`
	Date          time.Time         `db:"date" json:"date"`
	Quantity      float64           `db:"quantity" json:"quantity"`
	PricePerLitre float64           `db:"price_per_litre" json:"pricePerLitre"`
	TotalCost     float64           `db:"total_cost" json:"totalCost"`
	VendorName    *string           `db:"vendor_name" json:"vendorName,omitempty"`
	InvoiceNumber *string           `db:"invoice_number" json:"invoiceNumber,omitempty"`
	Notes         *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
}

// InventoryDispense is stock issued to a bus or a personal vehicle.
type InventoryDispense struct {
	ID              string            `db:"id" json:"id"`
	Category        InventoryCategory `db:"category" json:"category"`
	BusID           *string           `db:"bus_id" json:"busId,omitempty"`
	VehicleID       *string           `db:"vehicle_id" json:"vehicleId,omitempty"`
	Date            time.Time         `db:"date" json:"date"`
	Quantity        float64           `db:"quantity" json:"quantity"`
	OdometerReading *float64          `db:"odometer_reading" json:"odometerReading,omitempty"`
	DispensedBy     *string           `db:"dispensed_by" json:"dispensedBy,omitempty"`
	Purpose         *string           `db:"purpose" json:"purpose,omitempty"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
}

// DispenseDetail joins the receiving bus or vehicle.
type DispenseDetail struct {
	InventoryDispense
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`
	VehicleName        *string `db:"vehicle_name" json:"vehicleName,omitempty"`
	VehicleNumber      *string `db:"vehicle_number" json:"vehicleNumber,omitempty"`
}

// DispenseFilter captures list filters.
type DispenseFilter struct {
	Category  InventoryCategory
	BusID     string
	VehicleID string
	// PersonalOnly restricts to dispenses into personal vehicles.
	PersonalOnly bool
}

// PurchaseRequest records a stock purchase.
type PurchaseRequest struct {
	Date          *time.Time `json:"date" validate:"required"`
	Quantity      float64    `json:"quantity" validate:"required,gt=0"`
	PricePerLitre float64    `json:"pricePerLitre" validate:"gte=0"`
	VendorName    *string    `json:"vendorName"`
	InvoiceNumber *string    `json:"invoiceNumber"`
	Notes         *string    `json:"notes"`
}

// DispenseRequest issues stock to a bus.
type DispenseRequest struct {
	BusID           string     `json:"busId" validate:"required,uuid"`
	Date            *time.Time `json:"date" validate:"required"`
	Quantity        float64    `json:"quantity" validate:"required,gt=0"`
	OdometerReading *float64   `json:"odometerReading" validate:"omitempty,gte=0"`
	DispensedBy     *string    `json:"dispensedBy"`
	Notes           *string    `json:"notes"`
}

// InventoryTotals are the raw aggregates of one category's logs.
type InventoryTotals struct {
	TotalPurchased float64 `db:"total_purchased"`
	TotalDispensed float64 `db:"total_dispensed"`
	TotalSpent     float64 `db:"total_spent"`
	PurchaseCount  int     `db:"purchase_count"`
	DispenseCount  int     `db:"dispense_count"`
}

// BusDispenseTotal is the per-bus dispensed quantity.
type BusDispenseTotal struct {
	BusID              string  `db:"bus_id" json:"busId"`
	RegistrationNumber string  `db:"registration_number" json:"registrationNumber"`
	TotalDispensed     float64 `db:"total_dispensed" json:"totalDispensed"`
	DispenseCount      int     `db:"dispense_count" json:"dispenseCount"`
}

// InventorySummary is the stock position of one category.
type InventorySummary struct {
	Category        InventoryCategory   `json:"category"`
	CurrentStock    float64             `json:"currentStock"`
	TotalPurchased  float64             `json:"totalPurchased"`
	TotalDispensed  float64             `json:"totalDispensed"`
	TotalSpent      float64             `json:"totalSpent"`
	AveragePrice    float64             `json:"averagePrice"`
	PurchaseCount   int                 `json:"purchaseCount"`
	DispenseCount   int                 `json:"dispenseCount"`
	RecentPurchases []InventoryPurchase `json:"recentPurchases"`
	RecentDispenses []DispenseDetail    `json:"recentDispenses"`
	BusSummary      []BusDispenseTotal  `json:"busSummary"`
}

// BusMileage is fuel efficiency for one bus.
type BusMileage struct {
	BusID              string `json:"busId"`
	RegistrationNumber string `json:"registrationNumber"`
	ledger.Mileage
}

// PersonalVehicle is a staff or school vehicle fuelled from the depot.
type PersonalVehicle struct {
	ID            string    `db:"id" json:"id"`
	VehicleName   string    `db:"vehicle_name" json:"vehicleName"`
	VehicleNumber string    `db:"vehicle_number" json:"vehicleNumber"`
	OwnerName     *string   `db:"owner_name" json:"ownerName,omitempty"`
	VehicleType   *string   `db:"vehicle_type" json:"vehicleType,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// PersonalVehicleRequest registers a personal vehicle.
type PersonalVehicleRequest struct {
	VehicleName   string  `json:"vehicleName" validate:"required"`
	VehicleNumber string  `json:"vehicleNumber" validate:"required"`
	OwnerName     *string `json:"ownerName"`
	VehicleType   *string `json:"vehicleType"`
	Notes         *string `json:"notes"`
}

// VehicleDispenseRequest issues fuel to a personal vehicle.
type VehicleDispenseRequest struct {
	VehicleID       string     `json:"vehicleId" validate:"required,uuid"`
	Date            *time.Time `json:"date" validate:"required"`
	Quantity        float64    `json:"quantity" validate:"required,gt=0"`
	OdometerReading *float64   `json:"odometerReading" validate:"omitempty,gte=0"`
	DispensedBy     *string    `json:"dispensedBy"`
	Purpose         *string    `json:"purpose"`
	Notes           *string    `json:"notes"`
}
