// Package queue publishes committed bookings to RabbitMQ and consumes them
// for auditing.
package queue

import (
	"time"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

const DefaultQueueName = "booking.confirmed"

// BookingConfirmed is the JSON body of a booking.confirmed message.
type BookingConfirmed struct {
	TicketID    uint         `json:"ticket_id"`
	EventID     uint         `json:"event_id"`
	EventTitle  string       `json:"event_title"`
	UserID      uint         `json:"user_id"`
	Quantity    int          `json:"quantity"`
	TotalAmount domain.Money `json:"total_amount"`
	BookedAt    time.Time    `json:"booked_at"`
}

func NewBookingConfirmed(grant domain.TicketGrant, event domain.Event) BookingConfirmed {
	return BookingConfirmed{
		TicketID:    grant.ID,
		EventID:     event.ID,
		EventTitle:  event.Title,
		UserID:      grant.UserID,
		Quantity:    grant.Quantity,
		TotalAmount: event.TicketCost.Times(grant.Quantity),
		BookedAt:    grant.BookingTime.UTC(),
	}
}
