package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEntry is the slice of a fee payment the ledger needs.
type PaymentEntry struct {
	Quarter      int
	AcademicYear string
	Amount       float64
}

// QuarterState describes collection for one quarter of an academic year.
type QuarterState struct {
	Quarter   int     `json:"quarter"`
	Paid      bool    `json:"paid"`
	Amount    float64 `json:"amount"`
	Payments  int     `json:"payments"`
	Due       float64 `json:"due"`
	Balance   float64 `json:"balance"`
	FullyPaid bool    `json:"fullyPaid"`
}

// FeeSummary totals a student's fee position for one academic year.
type FeeSummary struct {
	AcademicYear    string         `json:"academicYear"`
	QuarterlyDue    float64        `json:"quarterlyDue"`
	AnnualDue       float64        `json:"annualDue"`
	TotalPaid       float64        `json:"totalPaid"`
	DueToDate       float64        `json:"dueToDate"`
	Outstanding     float64        `json:"outstanding"`
	QuartersStarted int            `json:"quartersStarted"`
	Quarters        []QuarterState `json:"quarters"`
}

// QuarterStatus reports, for quarters 1..4, whether any payment exists for the
// academic year. Multiple payments for one quarter are summed.
func QuarterStatus(payments []PaymentEntry, academicYear string, due float64) []QuarterState {
	totals := make(map[int]decimal.Decimal, QuartersPerYear)
	counts := make(map[int]int, QuartersPerYear)
	for _, p := range payments {
		if p.AcademicYear != academicYear || !ValidQuarter(p.Quarter) {
			continue
		}
		totals[p.Quarter] = totals[p.Quarter].Add(decimal.NewFromFloat(p.Amount))
		counts[p.Quarter]++
	}

	dueDec := decimal.NewFromFloat(due)
	states := make([]QuarterState, 0, QuartersPerYear)
	for q := 1; q <= QuartersPerYear; q++ {
		amount := totals[q]
		states = append(states, QuarterState{
			Quarter:   q,
			Paid:      counts[q] > 0,
			Amount:    toFloat(amount),
			Payments:  counts[q],
			Due:       toFloat(dueDec),
			Balance:   toFloat(dueDec.Sub(amount)),
			FullyPaid: counts[q] > 0 && amount.GreaterThanOrEqual(dueDec),
		})
	}
	return states
}

// Summarize builds the fee summary for a student's academic year as of a date.
func Summarize(payments []PaymentEntry, academicYear string, monthlyFee, waiverPercent float64, asOf time.Time) FeeSummary {
	due := QuarterlyDue(monthlyFee, waiverPercent)
	quarters := QuarterStatus(payments, academicYear, due)

	paid := decimal.Zero
	for _, q := range quarters {
		paid = paid.Add(decimal.NewFromFloat(q.Amount))
	}
	started := QuartersStarted(academicYear, asOf)
	dueToDate := decimal.NewFromFloat(due).Mul(decimal.NewFromInt(int64(started)))

	return FeeSummary{
		AcademicYear:    academicYear,
		QuarterlyDue:    due,
		AnnualDue:       AnnualDue(monthlyFee, waiverPercent),
		TotalPaid:       toFloat(paid),
		DueToDate:       toFloat(dueToDate),
		Outstanding:     toFloat(dueToDate.Sub(paid)),
		QuartersStarted: started,
		Quarters:        quarters,
	}
}
