package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

func TestOwnerPaymentFSMSettleAndReopen(t *testing.T) {
	payment := &models.BusOwnerPayment{Status: models.OwnerPaymentStatusPending}
	machine := NewOwnerPaymentFSM(payment)

	require.NoError(t, machine.Settle(context.Background()))
	assert.Equal(t, models.OwnerPaymentStatusPaid, payment.Status)

	assert.ErrorIs(t, machine.Settle(context.Background()), ErrInvalidTransition)

	require.NoError(t, machine.Reopen(context.Background()))
	assert.Equal(t, models.OwnerPaymentStatusPending, payment.Status)
}

func TestOwnerPaymentFSMTransitionTo(t *testing.T) {
	payment := &models.BusOwnerPayment{Status: models.OwnerPaymentStatusPaid}
	machine := NewOwnerPaymentFSM(payment)

	require.NoError(t, machine.TransitionTo(context.Background(), models.OwnerPaymentStatusPaid))
	assert.Equal(t, models.OwnerPaymentStatusPaid, payment.Status)

	require.NoError(t, machine.TransitionTo(context.Background(), models.OwnerPaymentStatusPending))
	assert.Equal(t, models.OwnerPaymentStatusPending, machine.Current())

	assert.ErrorIs(t, machine.TransitionTo(context.Background(), "CANCELLED"), ErrInvalidTransition)
}
