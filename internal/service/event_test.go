package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository/memory"
)

var admin = domain.Principal{UserID: 10, Role: domain.RoleAdmin}

func newEventInput() domain.Event {
	start := time.Date(2030, 6, 26, 0, 0, 0, 0, time.UTC)
	return domain.Event{
		EventType:         domain.EventOnline,
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

func TestEventService_Create(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, admin, newEventInput())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, admin.UserID, created.CreatedBy)

	got, err := svc.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
}

func TestEventService_CreateForbiddenForUsers(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())

	_, err := svc.CreateEvent(context.Background(), alice, newEventInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_CreateInvalid(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())

	e := newEventInput()
	e.MaxTicketsPerUser = 101
	_, err := svc.CreateEvent(context.Background(), admin, e)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "ValidationError", domain.ErrorKind(err))
}

func TestEventService_UpdateMergesAndValidates(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, admin, newEventInput())
	require.NoError(t, err)

	title := "My Updated Event"
	updated, err := svc.UpdateEvent(ctx, admin, created.ID, domain.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.MaxSeats, updated.MaxSeats)

	// The merged event is validated as a whole.
	seats := 1
	_, err = svc.UpdateEvent(ctx, admin, created.ID, domain.EventPatch{MaxSeats: &seats})
	assert.ErrorIs(t, err, domain.ErrValidation)

	before := created.StartTime.Add(-time.Hour)
	_, err = svc.UpdateEvent(ctx, admin, created.ID, domain.EventPatch{EndTime: &before})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventService_UpdateErrors(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())
	ctx := context.Background()
	title := "x"

	_, err := svc.UpdateEvent(ctx, admin, 404, domain.EventPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateEvent(ctx, alice, 404, domain.EventPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_ListOrderedByStart(t *testing.T) {
	svc := NewEventService(memory.NewStore().Events())
	ctx := context.Background()

	later := newEventInput()
	later.Title = "later"
	later.StartTime = later.StartTime.Add(24 * time.Hour)
	later.EndTime = later.StartTime.Add(time.Hour)
	_, err := svc.CreateEvent(ctx, admin, later)
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, admin, newEventInput())
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "My Cool Event", events[0].Title)
	assert.Equal(t, "later", events[1].Title)
}

func TestSummaryService_UnknownEvent(t *testing.T) {
	s := memory.NewStore()
	svc := NewSummaryService(s.Events(), s.Ledger())

	_, err := svc.Summarize(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryService_Empty(t *testing.T) {
	s := memory.NewStore()
	e, err := s.Events().Create(context.Background(), newEventInput())
	require.NoError(t, err)

	summary, err := NewSummaryService(s.Events(), s.Ledger()).Summarize(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventSummary{
		EventID:        e.ID,
		Title:          e.Title,
		EventType:      e.EventType,
		TicketCost:     e.TicketCost,
		RemainingSeats: e.MaxSeats,
	}, summary)
}
