package domain

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	start := time.Date(2030, 6, 26, 0, 0, 0, 0, time.UTC)
	return Event{
		EventType:         EventOnline,
		Title:             "My Cool Event",
		Description:       "This is a cool event",
		Location:          "Virtual",
		StartTime:         start,
		EndTime:           start.Add(2 * time.Hour),
		MaxSeats:          100,
		MaxTicketsPerUser: 2,
		TicketCost:        2000,
		BookingStart:      start.AddDate(0, 0, -6),
		BookingEnd:        start.AddDate(0, 0, -1),
	}
}

func TestEvent_Validate(t *testing.T) {
	require.NoError(t, validEvent().Validate())

	tests := []struct {
		name   string
		modify func(e *Event)
		field  string
	}{
		{name: "unknown type", modify: func(e *Event) { e.EventType = "hybrid" }, field: "event_type"},
		{name: "empty title", modify: func(e *Event) { e.Title = "" }, field: "title"},
		{name: "long title", modify: func(e *Event) { e.Title = string(make([]byte, 201)) }, field: "title"},
		{name: "end before start", modify: func(e *Event) { e.EndTime = e.StartTime.Add(-time.Minute) }, field: "end_time"},
		{name: "no seats", modify: func(e *Event) { e.MaxSeats = 0 }, field: "max_seats"},
		{name: "negative seats", modify: func(e *Event) { e.MaxSeats = -1 }, field: "max_seats"},
		{name: "cap above seats", modify: func(e *Event) { e.MaxTicketsPerUser = 101 }, field: "max_tickets_per_user"},
		{name: "negative cost", modify: func(e *Event) { e.TicketCost = -1 }, field: "ticket_cost"},
		{name: "cost too high", modify: func(e *Event) { e.TicketCost = MaxTicketCost + 1 }, field: "ticket_cost"},
		{name: "booking end before start", modify: func(e *Event) { e.BookingEnd = e.BookingStart.Add(-time.Second) }, field: "booking_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.modify(&e)

			err := e.Validate()
			require.Error(t, err)

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestEvent_ValidateBoundaries(t *testing.T) {
	e := validEvent()
	e.EndTime = e.StartTime
	e.BookingEnd = e.BookingStart
	e.MaxTicketsPerUser = e.MaxSeats
	e.TicketCost = 0
	assert.NoError(t, e.Validate())
}

func TestEvent_BookingOpen(t *testing.T) {
	e := validEvent()

	assert.True(t, e.BookingOpen(e.BookingStart))
	assert.True(t, e.BookingOpen(e.BookingEnd))
	assert.True(t, e.BookingOpen(e.BookingStart.Add(time.Hour)))
	assert.False(t, e.BookingOpen(e.BookingStart.Add(-time.Nanosecond)))
	assert.False(t, e.BookingOpen(e.BookingEnd.Add(time.Nanosecond)))
}

func TestEventPatch_Apply(t *testing.T) {
	e := validEvent()
	e.ID = 3
	e.CreatedBy = 9

	title := "Renamed"
	seats := 50
	got := EventPatch{Title: &title, MaxSeats: &seats}.Apply(e)

	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 50, got.MaxSeats)
	assert.Equal(t, e.Description, got.Description)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.CreatedBy, got.CreatedBy)
}

func TestNewEventSummary(t *testing.T) {
	e := validEvent()
	e.ID = 1
	e.MaxSeats = 5

	s := NewEventSummary(e, LedgerTotals{Quantity: 3, UniqueBookers: 2})
	assert.Equal(t, 3, s.TotalTicketsBooked)
	assert.Equal(t, 2, s.UniqueBookers)
	assert.Equal(t, Money(6000), s.TotalRevenue)
	assert.Equal(t, 2, s.RemainingSeats)

	empty := NewEventSummary(e, LedgerTotals{})
	assert.Equal(t, Money(0), empty.TotalRevenue)
	assert.Equal(t, 5, empty.RemainingSeats)
}
