package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

const defaultMaxTicketsPerUser = 1

type CreateEventRequest struct {
	EventType         *domain.EventType `json:"event_type" example:"online"`
	Title             string            `json:"title" example:"My Cool Event"`
	Description       string            `json:"description" example:"This is a cool event"`
	Location          string            `json:"location" example:"Virtual"`
	StartTime         *Timestamp        `json:"start_time" swaggertype:"string" example:"2030-06-26T00:00Z"`
	EndTime           *Timestamp        `json:"end_time" swaggertype:"string" example:"2030-06-26T02:00Z"`
	MaxSeats          int               `json:"max_seats" example:"100"`
	MaxTicketsPerUser *int              `json:"max_tickets_per_user" example:"2"`
	TicketCost        *domain.Money     `json:"ticket_cost" swaggertype:"string" example:"20.00"`
	BookingStart      *Timestamp        `json:"booking_start" swaggertype:"string" example:"2030-06-20T00:00Z"`
	BookingEnd        *Timestamp        `json:"booking_end" swaggertype:"string" example:"2030-06-25T00:00Z"`
}

// Validate checks presence only; cross-field rules live on domain.Event.
func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.Location, validation.Required),
		validation.Field(&req.StartTime, validation.NotNil),
		validation.Field(&req.EndTime, validation.NotNil),
		validation.Field(&req.MaxSeats, validation.Required),
		validation.Field(&req.TicketCost, validation.NotNil),
		validation.Field(&req.BookingStart, validation.NotNil),
		validation.Field(&req.BookingEnd, validation.NotNil),
	)
}

// ToDomain applies the defaults: online, one ticket per user.
func (req *CreateEventRequest) ToDomain() domain.Event {
	e := domain.Event{
		EventType:         domain.EventOnline,
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		MaxSeats:          req.MaxSeats,
		MaxTicketsPerUser: defaultMaxTicketsPerUser,
	}
	if req.EventType != nil {
		e.EventType = *req.EventType
	}
	if req.MaxTicketsPerUser != nil {
		e.MaxTicketsPerUser = *req.MaxTicketsPerUser
	}
	if req.TicketCost != nil {
		e.TicketCost = *req.TicketCost
	}
	if req.StartTime != nil {
		e.StartTime = req.StartTime.Time
	}
	if req.EndTime != nil {
		e.EndTime = req.EndTime.Time
	}
	if req.BookingStart != nil {
		e.BookingStart = req.BookingStart.Time
	}
	if req.BookingEnd != nil {
		e.BookingEnd = req.BookingEnd.Time
	}

	return e
}

// UpdateEventRequest serves both PUT and PATCH. Omitted fields are kept.
type UpdateEventRequest struct {
	EventType         *domain.EventType `json:"event_type" example:"offline"`
	Title             *string           `json:"title" example:"My Updated Event"`
	Description       *string           `json:"description" example:"This is an updated cool event"`
	Location          *string           `json:"location"`
	StartTime         *Timestamp        `json:"start_time" swaggertype:"string"`
	EndTime           *Timestamp        `json:"end_time" swaggertype:"string"`
	MaxSeats          *int              `json:"max_seats"`
	MaxTicketsPerUser *int              `json:"max_tickets_per_user"`
	TicketCost        *domain.Money     `json:"ticket_cost" swaggertype:"string"`
	BookingStart      *Timestamp        `json:"booking_start" swaggertype:"string"`
	BookingEnd        *Timestamp        `json:"booking_end" swaggertype:"string"`
}

func (req *UpdateEventRequest) ToPatch() domain.EventPatch {
	return domain.EventPatch{
		EventType:         req.EventType,
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		StartTime:         req.StartTime.value(),
		EndTime:           req.EndTime.value(),
		MaxSeats:          req.MaxSeats,
		MaxTicketsPerUser: req.MaxTicketsPerUser,
		TicketCost:        req.TicketCost,
		BookingStart:      req.BookingStart.value(),
		BookingEnd:        req.BookingEnd.value(),
	}
}
