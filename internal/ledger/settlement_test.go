package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettleCommissionAndOwing(t *testing.T) {
	before := Settle(SettlementInput{TotalRevenue: 10000, SchoolCommission: 10})
	assert.Equal(t, 1000.0, before.Commission)
	assert.Equal(t, 9000.0, before.NetRevenue)
	assert.Equal(t, 9000.0, before.AmountOwing)

	after := Settle(SettlementInput{
		TotalRevenue:     10000,
		SchoolCommission: 10,
		OwnerPayments:    []OwnerPaymentEntry{{Amount: 4000, Status: OwnerPaymentPaid}},
	})
	assert.Equal(t, 4000.0, after.TotalPaid)
	assert.Equal(t, 5000.0, after.AmountOwing)
}

func TestSettlePendingIsReportedNotDeducted(t *testing.T) {
	s := Settle(SettlementInput{
		TotalRevenue:     10000,
		SchoolCommission: 10,
		OwnerPayments: []OwnerPaymentEntry{
			{Amount: 4000, Status: OwnerPaymentPaid},
			{Amount: 2000, Status: OwnerPaymentPending},
		},
	})
	assert.Equal(t, 2000.0, s.TotalPending)
	assert.Equal(t, 5000.0, s.AmountOwing)
}

func TestSettleAllowsNegativeOwing(t *testing.T) {
	s := Settle(SettlementInput{
		TotalRevenue:   5000,
		AdvancePayment: 1000,
		OwnerPayments:  []OwnerPaymentEntry{{Amount: 6000, Status: OwnerPaymentPaid}},
	})
	assert.Equal(t, 0.0, s.Commission)
	assert.Equal(t, -2000.0, s.AmountOwing)
}
