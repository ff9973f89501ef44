package ledger

import "github.com/shopspring/decimal"

// Owner payment statuses.
const (
	OwnerPaymentPaid    = "PAID"
	OwnerPaymentPending = "PENDING"
)

// OwnerPaymentEntry is a settlement already made (or promised) to a bus owner.
type OwnerPaymentEntry struct {
	Amount float64
	Status string
}

// SettlementInput carries the aggregates needed to settle a private bus.
type SettlementInput struct {
	TotalRevenue     float64
	SchoolCommission float64
	AdvancePayment   float64
	OwnerPayments    []OwnerPaymentEntry
}

// Settlement is the owner's position for a private bus.
type Settlement struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	SchoolCommission float64 `json:"schoolCommission"`
	Commission       float64 `json:"commission"`
	NetRevenue       float64 `json:"netRevenue"`
	TotalPaid        float64 `json:"totalPaid"`
	TotalPending     float64 `json:"totalPending"`
	AdvancePayment   float64 `json:"advancePayment"`
	AmountOwing      float64 `json:"amountOwing"`
}

// Settle applies the school commission to the collected revenue and nets off
// PAID owner payments and any advance. AmountOwing is negative on overpayment.
func Settle(in SettlementInput) Settlement {
	revenue := decimal.NewFromFloat(in.TotalRevenue)
	commission := revenue.Mul(decimal.NewFromFloat(in.SchoolCommission)).Div(hundred)
	net := revenue.Sub(commission)

	paid, pending := decimal.Zero, decimal.Zero
	for _, p := range in.OwnerPayments {
		switch p.Status {
		case OwnerPaymentPaid:
			paid = paid.Add(decimal.NewFromFloat(p.Amount))
		case OwnerPaymentPending:
			pending = pending.Add(decimal.NewFromFloat(p.Amount))
		}
	}
	advance := decimal.NewFromFloat(in.AdvancePayment)

	return Settlement{
		TotalRevenue:     toFloat(revenue),
		SchoolCommission: in.SchoolCommission,
		Commission:       toFloat(commission),
		NetRevenue:       toFloat(net),
		TotalPaid:        toFloat(paid),
		TotalPending:     toFloat(pending),
		AdvancePayment:   toFloat(advance),
		AmountOwing:      toFloat(net.Sub(paid).Sub(advance)),
	}
}
