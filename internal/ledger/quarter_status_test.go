package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterStatusMarksOnlyMatchingQuarters(t *testing.T) {
	payments := []PaymentEntry{
		{Quarter: 1, AcademicYear: "2024-25", Amount: 3600},
		{Quarter: 3, AcademicYear: "2024-25", Amount: 1000},
		{Quarter: 2, AcademicYear: "2023-24", Amount: 3600},
	}

	states := QuarterStatus(payments, "2024-25", 3600)
	require.Len(t, states, 4)

	assert.True(t, states[0].Paid)
	assert.True(t, states[0].FullyPaid)
	assert.Equal(t, 0.0, states[0].Balance)

	assert.False(t, states[1].Paid)
	assert.Equal(t, 0.0, states[1].Amount)

	assert.True(t, states[2].Paid)
	assert.False(t, states[2].FullyPaid)
	assert.Equal(t, 2600.0, states[2].Balance)

	assert.False(t, states[3].Paid)
}

func TestQuarterStatusSumsSplitPayments(t *testing.T) {
	payments := []PaymentEntry{
		{Quarter: 2, AcademicYear: "2024-25", Amount: 1800},
		{Quarter: 2, AcademicYear: "2024-25", Amount: 1800},
	}
	states := QuarterStatus(payments, "2024-25", 3600)
	assert.Equal(t, 3600.0, states[1].Amount)
	assert.Equal(t, 2, states[1].Payments)
	assert.True(t, states[1].FullyPaid)
}

func TestSummarize(t *testing.T) {
	payments := []PaymentEntry{{Quarter: 1, AcademicYear: "2024-25", Amount: 3600}}
	summary := Summarize(payments, "2024-25", 1500, 20, time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 3600.0, summary.QuarterlyDue)
	assert.Equal(t, 14400.0, summary.AnnualDue)
	assert.Equal(t, 2, summary.QuartersStarted)
	assert.Equal(t, 7200.0, summary.DueToDate)
	assert.Equal(t, 3600.0, summary.TotalPaid)
	assert.Equal(t, 3600.0, summary.Outstanding)
}
