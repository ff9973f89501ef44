package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuarterlyDue(t *testing.T) {
	assert.Equal(t, 3600.0, QuarterlyDue(1500, 20))
	assert.Equal(t, 4500.0, QuarterlyDue(1500, 0))
	assert.Equal(t, 0.0, QuarterlyDue(0, 10))
	assert.Equal(t, 0.0, QuarterlyDue(1500, 100))
	assert.Equal(t, 0.0, QuarterlyDue(1500, 150))
	assert.Equal(t, 4500.0, QuarterlyDue(1500, -5))
	assert.Equal(t, 3.6, QuarterlyDue(1.5, 20))
}

func TestQuarterlyDueIsNonIncreasingInWaiver(t *testing.T) {
	fees := []float64{0, 1, 99.99, 1500, 2750.5}
	for _, fee := range fees {
		prev := QuarterlyDue(fee, 0)
		assert.Equal(t, QuarterlyDue(fee, 0), AnnualDue(fee, 0)/4)
		for w := 1.0; w <= 100; w++ {
			due := QuarterlyDue(fee, w)
			assert.LessOrEqual(t, due, prev, "fee %v waiver %v", fee, w)
			prev = due
		}
	}
}

func TestAnnualDue(t *testing.T) {
	assert.Equal(t, 14400.0, AnnualDue(1500, 20))
}
