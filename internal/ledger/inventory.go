package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Inventory categories.
const (
	CategoryFuel = "FUEL"
	CategoryUrea = "UREA"
)

// Stock is purchased minus dispensed litres. It may go negative on legacy data.
func Stock(purchased, dispensed float64) float64 {
	return toFloat(decimal.NewFromFloat(purchased).Sub(decimal.NewFromFloat(dispensed)))
}

// Total sums quantities without float drift.
func Total(quantities ...float64) float64 {
	return toFloat(sum(quantities...))
}

// LineCost is quantity times unit price, rounded to paise.
func LineCost(quantity, unitPrice float64) float64 {
	return toFloat(decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)))
}

// FormatLitres renders a quantity with two decimals.
func FormatLitres(litres float64) string {
	return decimal.NewFromFloat(litres).StringFixed(2)
}

// AveragePrice is spent / litres, zero when nothing was bought.
func AveragePrice(totalSpent, totalLitres float64) float64 {
	if totalLitres <= 0 {
		return 0
	}
	return toFloat(decimal.NewFromFloat(totalSpent).Div(decimal.NewFromFloat(totalLitres)))
}

// OdometerReading is one dispense (or fuel expense) with a meter value.
type OdometerReading struct {
	Date     time.Time
	Odometer float64
	Litres   float64
	Cost     float64
}

// Mileage is fuel efficiency over a bus's odometer readings.
type Mileage struct {
	Readings      int        `json:"readings"`
	TotalDistance float64    `json:"totalDistance"`
	TotalLitres   float64    `json:"totalLitres"`
	KmPerLitre    *float64   `json:"kmPerLitre"`
	PeriodStart   *time.Time `json:"periodStart,omitempty"`
	PeriodEnd     *time.Time `json:"periodEnd,omitempty"`
}

// ComputeMileage derives km/litre from the first and last odometer readings.
// totalLitres is every litre dispensed to the bus. KmPerLitre stays nil below
// two readings or when no litres were dispensed.
func ComputeMileage(readings []OdometerReading, totalLitres float64) Mileage {
	m := Mileage{Readings: len(readings), TotalLitres: toFloat(decimal.NewFromFloat(totalLitres))}
	if len(readings) < 2 {
		return m
	}
	sorted := sortedReadings(readings)
	first, last := sorted[0], sorted[len(sorted)-1]
	distance := decimal.NewFromFloat(last.Odometer).Sub(decimal.NewFromFloat(first.Odometer))
	m.TotalDistance = toFloat(distance)
	m.PeriodStart, m.PeriodEnd = &first.Date, &last.Date
	if totalLitres > 0 {
		kmpl := toFloat(distance.Div(decimal.NewFromFloat(totalLitres)))
		m.KmPerLitre = &kmpl
	}
	return m
}

// CostPerKm is the fuel running cost over the distance between the first and last reading.
type CostPerKm struct {
	CostPerKm             float64    `json:"costPerKm"`
	TotalFuelCost         float64    `json:"totalFuelCost"`
	TotalDistanceTraveled float64    `json:"totalDistanceTraveled"`
	PeriodStart           *time.Time `json:"periodStart"`
	PeriodEnd             *time.Time `json:"periodEnd"`
}

// ComputeCostPerKm needs at least two readings; otherwise everything is zero.
func ComputeCostPerKm(readings []OdometerReading) CostPerKm {
	if len(readings) < 2 {
		return CostPerKm{}
	}
	sorted := sortedReadings(readings)
	cost := decimal.Zero
	for _, r := range sorted {
		cost = cost.Add(decimal.NewFromFloat(r.Cost))
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	distance := decimal.NewFromFloat(last.Odometer).Sub(decimal.NewFromFloat(first.Odometer))
	out := CostPerKm{
		TotalFuelCost:         toFloat(cost),
		TotalDistanceTraveled: toFloat(distance),
		PeriodStart:           &first.Date,
		PeriodEnd:             &last.Date,
	}
	if distance.IsPositive() {
		out.CostPerKm = toFloat(cost.Div(distance))
	}
	return out
}

func sortedReadings(readings []OdometerReading) []OdometerReading {
	sorted := make([]OdometerReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Odometer < sorted[j].Odometer
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
