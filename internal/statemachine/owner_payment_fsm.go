// Package statemachine holds the status machines of ledger records.
package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

// Owner payment events.
const (
	EventSettle = "settle"
	EventReopen = "reopen"
)

// ErrInvalidTransition is returned when no event leads to the requested status.
var ErrInvalidTransition = errors.New("invalid owner payment status transition")

// OwnerPaymentFSM wraps a bus owner payment with its status machine.
type OwnerPaymentFSM struct {
	payment *models.BusOwnerPayment
	fsm     *fsm.FSM
}

// NewOwnerPaymentFSM creates the machine in the payment's current status.
func NewOwnerPaymentFSM(payment *models.BusOwnerPayment) *OwnerPaymentFSM {
	initial := payment.Status
	if initial == "" {
		initial = models.OwnerPaymentStatusPending
	}
	return &OwnerPaymentFSM{
		payment: payment,
		fsm: fsm.NewFSM(
			initial,
			fsm.Events{
				{Name: EventSettle, Src: []string{models.OwnerPaymentStatusPending}, Dst: models.OwnerPaymentStatusPaid},
				{Name: EventReopen, Src: []string{models.OwnerPaymentStatusPaid}, Dst: models.OwnerPaymentStatusPending},
			},
			fsm.Callbacks{},
		),
	}
}

// Current returns the machine's status.
func (p *OwnerPaymentFSM) Current() string {
	return p.fsm.Current()
}

// Settle marks a pending payment as paid.
func (p *OwnerPaymentFSM) Settle(ctx context.Context) error {
	return p.fire(ctx, EventSettle)
}

// Reopen moves a paid payment back to pending.
func (p *OwnerPaymentFSM) Reopen(ctx context.Context) error {
	return p.fire(ctx, EventReopen)
}

// TransitionTo fires whichever event leads to target. Staying in the current
// status is a no-op.
func (p *OwnerPaymentFSM) TransitionTo(ctx context.Context, target string) error {
	if target == p.fsm.Current() {
		return nil
	}
	switch target {
	case models.OwnerPaymentStatusPaid:
		return p.Settle(ctx)
	case models.OwnerPaymentStatusPending:
		return p.Reopen(ctx)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.fsm.Current(), target)
}

func (p *OwnerPaymentFSM) fire(ctx context.Context, event string) error {
	if !p.fsm.Can(event) {
		return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, event, p.fsm.Current())
	}
	if err := p.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("owner payment %s: %w", event, err)
	}
	p.payment.Status = p.fsm.Current()
	return nil
}
