package domain

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type EventType string

const (
	EventOnline  EventType = "online"
	EventOffline EventType = "offline"
)

const (
	maxTitleLength    = 200
	maxLocationLength = 200
	// MaxTicketCost mirrors a DECIMAL(6,2) column.
	MaxTicketCost Money = 999999
)

type Event struct {
	ID                uint      `json:"id"`
	EventType         EventType `json:"event_type"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MaxSeats          int       `json:"max_seats"`
	MaxTicketsPerUser int       `json:"max_tickets_per_user"`
	TicketCost        Money     `json:"ticket_cost"`
	BookingStart      time.Time `json:"booking_start"`
	BookingEnd        time.Time `json:"booking_end"`
	CreatedBy         uint      `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookingOpen reports whether t lies inside [BookingStart, BookingEnd].
func (e Event) BookingOpen(t time.Time) bool {
	return !t.Before(e.BookingStart) && !t.After(e.BookingEnd)
}

// Validate checks the event as a whole. The returned error is a
// validation.Errors keyed by JSON field name.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.EventType, validation.Required, validation.In(EventOnline, EventOffline)),
		validation.Field(&e.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&e.Description, validation.Required),
		validation.Field(&e.Location, validation.Required, validation.Length(1, maxLocationLength)),
		validation.Field(&e.StartTime, validation.Required),
		validation.Field(&e.EndTime, validation.Required, validation.By(notBefore(e.StartTime, "end_time must not be before start_time"))),
		validation.Field(&e.MaxSeats, validation.Required, validation.Min(1)),
		validation.Field(&e.MaxTicketsPerUser,
			validation.Required,
			validation.Min(1),
			validation.Max(e.MaxSeats).Error("max_tickets_per_user must not exceed max_seats"),
		),
		validation.Field(&e.TicketCost, validation.By(moneyInRange(0, MaxTicketCost))),
		validation.Field(&e.BookingStart, validation.Required),
		validation.Field(&e.BookingEnd, validation.Required, validation.By(notBefore(e.BookingStart, "booking_end must not be before booking_start"))),
	)
}

func notBefore(start time.Time, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(time.Time)
		if end.Before(start) {
			return errors.New(msg)
		}
		return nil
	}
}

func moneyInRange(min, max Money) validation.RuleFunc {
	return func(value interface{}) error {
		m, _ := value.(Money)
		if m < min {
			return errors.New("must be no less than " + min.String())
		}
		if m > max {
			return errors.New("must be no greater than " + max.String())
		}
		return nil
	}
}

// EventPatch holds the fields of a partial update. Nil fields are left unchanged.
type EventPatch struct {
	EventType         *EventType
	Title             *string
	Description       *string
	Location          *string
	StartTime         *time.Time
	EndTime           *time.Time
	MaxSeats          *int
	MaxTicketsPerUser *int
	TicketCost        *Money
	BookingStart      *time.Time
	BookingEnd        *time.Time
}

func (p EventPatch) Apply(e Event) Event {
	if p.EventType != nil {
		e.EventType = *p.EventType
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.MaxSeats != nil {
		e.MaxSeats = *p.MaxSeats
	}
	if p.MaxTicketsPerUser != nil {
		e.MaxTicketsPerUser = *p.MaxTicketsPerUser
	}
	if p.TicketCost != nil {
		e.TicketCost = *p.TicketCost
	}
	if p.BookingStart != nil {
		e.BookingStart = *p.BookingStart
	}
	if p.BookingEnd != nil {
		e.BookingEnd = *p.BookingEnd
	}
	return e
}
