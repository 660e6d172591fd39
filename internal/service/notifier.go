package service

import (
	"context"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

type NopNotifier struct{}

func (NopNotifier) BookingConfirmed(context.Context, domain.TicketGrant, domain.Event) {}

// Notifiers fans a confirmation out to every notifier in order.
type Notifiers []BookingNotifier

func (ns Notifiers) BookingConfirmed(ctx context.Context, grant domain.TicketGrant, event domain.Event) {
	for _, n := range ns {
		n.BookingConfirmed(ctx, grant, event)
	}
}
