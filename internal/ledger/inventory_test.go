package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock(t *testing.T) {
	assert.Equal(t, 70.0, Stock(100, 30))
	assert.Equal(t, -5.0, Stock(0, 5))
	assert.Equal(t, 0.3, Stock(Total(0.1, 0.2), 0))
}

func TestAveragePrice(t *testing.T) {
	assert.Equal(t, 95.5, AveragePrice(9550, 100))
	assert.Equal(t, 0.0, AveragePrice(100, 0))
}

func TestComputeMileageNeedsTwoReadings(t *testing.T) {
	m := ComputeMileage([]OdometerReading{{Date: time.Now(), Odometer: 1000, Litres: 40}}, 40)
	assert.Nil(t, m.KmPerLitre)
	assert.Equal(t, 1, m.Readings)

	m = ComputeMileage(nil, 0)
	assert.Nil(t, m.KmPerLitre)
}

func TestComputeMileageUsesFirstAndLastReading(t *testing.T) {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	readings := []OdometerReading{
		{Date: base.AddDate(0, 0, 20), Odometer: 1600, Litres: 50},
		{Date: base, Odometer: 1000, Litres: 50},
		{Date: base.AddDate(0, 0, 10), Odometer: 1300, Litres: 50},
	}
	m := ComputeMileage(readings, 150)
	require.NotNil(t, m.KmPerLitre)
	assert.Equal(t, 600.0, m.TotalDistance)
	assert.Equal(t, 4.0, *m.KmPerLitre)
	assert.Equal(t, base, *m.PeriodStart)
}

func TestComputeMileageWithoutLitres(t *testing.T) {
	base := time.Now()
	m := ComputeMileage([]OdometerReading{{Date: base, Odometer: 1}, {Date: base.Add(time.Hour), Odometer: 11}}, 0)
	assert.Nil(t, m.KmPerLitre)
	assert.Equal(t, 10.0, m.TotalDistance)
}

func TestComputeCostPerKm(t *testing.T) {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	out := ComputeCostPerKm([]OdometerReading{
		{Date: base, Odometer: 1000, Cost: 3000},
		{Date: base.AddDate(0, 1, 0), Odometer: 1500, Cost: 2000},
	})
	assert.Equal(t, 5000.0, out.TotalFuelCost)
	assert.Equal(t, 500.0, out.TotalDistanceTraveled)
	assert.Equal(t, 10.0, out.CostPerKm)

	assert.Equal(t, CostPerKm{}, ComputeCostPerKm(nil))
}

func TestLineCostAndFormatLitres(t *testing.T) {
	assert.Equal(t, 9372.71, LineCost(100.2, 93.54))
	assert.Equal(t, "42.50", FormatLitres(42.5))
	assert.Equal(t, "-3.00", FormatLitres(-3))
}
