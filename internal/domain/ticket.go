package domain

import (
	"context"
	"time"
)

// TicketGrant is an immutable ledger entry: Quantity seats of Event issued to User.
type TicketGrant struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user"`
	EventID     uint      `json:"-"`
	Event       *Event    `json:"event,omitempty"`
	Quantity    int       `json:"quantity"`
	BookingTime time.Time `json:"booking_time"`
}

// LedgerTx is the view of the ledger available inside a per-event critical
// section. Aggregates reflect committed grants plus anything appended
// earlier in the same section.
type LedgerTx interface {
	// Event returns the event row as read under the lock.
	Event() Event
	// AggregateQuantity sums quantities for the locked event, restricted to
	// userID when it is non-nil.
	AggregateQuantity(ctx context.Context, userID *uint) (int, error)
	// Append records a grant for the locked event and returns it with its id.
	Append(ctx context.Context, grant TicketGrant) (TicketGrant, error)
}

type EventSummary struct {
	EventID            uint      `json:"id"`
	Title              string    `json:"title"`
	EventType          EventType `json:"event_type"`
	TicketCost         Money     `json:"ticket_cost"`
	TotalTicketsBooked int       `json:"total_tickets_booked"`
	UniqueBookers      int       `json:"unique_ticket_bookers"`
	TotalRevenue       Money     `json:"total_revenue"`
	RemainingSeats     int       `json:"remaining_seats"`
}

// LedgerTotals is the raw aggregate a summary is projected from.
type LedgerTotals struct {
	Quantity      int
	UniqueBookers int
}

func NewEventSummary(e Event, t LedgerTotals) EventSummary {
	return EventSummary{
		EventID:            e.ID,
		Title:              e.Title,
		EventType:          e.EventType,
		TicketCost:         e.TicketCost,
		TotalTicketsBooked: t.Quantity,
		UniqueBookers:      t.UniqueBookers,
		TotalRevenue:       e.TicketCost.Times(t.Quantity),
		RemainingSeats:     e.MaxSeats - t.Quantity,
	}
}
