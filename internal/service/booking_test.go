package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository/memory"
)

var (
	bookingOpens = time.Date(2030, 6, 20, 0, 0, 0, 0, time.UTC)
	bookingNow   = bookingOpens.Add(24 * time.Hour)
	alice        = domain.Principal{UserID: 1, Role: domain.RoleUser}
	bob          = domain.Principal{UserID: 2, Role: domain.RoleUser}
)

type bookingFixture struct {
	store   *memory.Store
	svc     *BookingService
	summary *SummaryService
	now     time.Time
}

func newBookingFixture(t *testing.T, opts ...BookingOption) *bookingFixture {
	t.Helper()

	f := &bookingFixture{store: memory.NewStore(), now: bookingNow}
	opts = append([]BookingOption{WithClock(func() time.Time { return f.now })}, opts...)
	f.svc = NewBookingService(f.store.Ledger(), f.store.Ledger(), BookingPolicy{
		LockTimeout:  time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, opts...)
	f.summary = NewSummaryService(f.store.Events(), f.store.Ledger())

	return f
}

func (f *bookingFixture) event(t *testing.T, modify func(e *domain.Event)) domain.Event {
	t.Helper()

	e := domain.Event{
		EventType:         domain.EventOnline,
		Title:             "Go meetup",
		Description:       "talks",
		Location:          "Virtual",
		StartTime:         bookingOpens.AddDate(0, 0, 6),
		EndTime:           bookingOpens.AddDate(0, 0, 6).Add(2 * time.Hour),
		MaxSeats:          100,
		MaxTicketsPerUser: 2,
		TicketCost:        2000,
		BookingStart:      bookingOpens,
		BookingEnd:        bookingOpens.AddDate(0, 0, 5),
	}
	if modify != nil {
		modify(&e)
	}

	created, err := f.store.Events().Create(context.Background(), e)
	require.NoError(t, err)
	return created
}

func (f *bookingFixture) totals(t *testing.T, eventID uint) domain.LedgerTotals {
	t.Helper()

	totals, err := f.store.Ledger().Totals(context.Background(), eventID)
	require.NoError(t, err)
	return totals
}

func TestRequestBooking_Accepts(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)

	grant, err := f.svc.RequestBooking(context.Background(), alice, e.ID, 2)
	require.NoError(t, err)

	assert.NotZero(t, grant.ID)
	assert.Equal(t, alice.UserID, grant.UserID)
	assert.Equal(t, 2, grant.Quantity)
	assert.Equal(t, bookingNow, grant.BookingTime)
	require.NotNil(t, grant.Event)
	assert.Equal(t, e.ID, grant.Event.ID)
}

// Two users race for the last seat; one wins, the other sees SoldOut.
func TestRequestBooking_LastSeatGoesToExactlyOne(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, func(e *domain.Event) {
		e.MaxSeats = 1
		e.MaxTicketsPerUser = 1
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []domain.Principal{alice, bob} {
		wg.Add(1)
		go func(i int, user domain.Principal) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestBooking(context.Background(), user, e.ID, 1)
		}(i, user)
	}
	wg.Wait()

	var ok, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrSoldOut):
			soldOut++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, soldOut)
	assert.Equal(t, 1, f.totals(t, e.ID).Quantity)
}

// The per-user cap counts earlier grants and only binds that user.
func TestRequestBooking_PerUserLimit(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)
	ctx := context.Background()

	_, err := f.svc.RequestBooking(ctx, alice, e.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.RequestBooking(ctx, alice, e.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.RequestBooking(ctx, alice, e.ID, 1)
	require.ErrorIs(t, err, domain.ErrPerUserLimitExceeded)
	assert.EqualError(t, err, "You've already booked 2 tickets. You cannot book more than 2 tickets in total for this event.")

	// Other users are unaffected.
	_, err = f.svc.RequestBooking(ctx, bob, e.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, f.totals(t, e.ID).Quantity)
}

// Asking for more than the per-user cap in one request grants nothing.
func TestRequestBooking_PerRequestLimitHasNoPartialGrant(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)

	_, err := f.svc.RequestBooking(context.Background(), alice, e.ID, 3)
	require.ErrorIs(t, err, domain.ErrPerRequestLimitExceeded)
	assert.EqualError(t, err, "You cannot book more than 2 tickets per user.")

	var rejection *domain.BookingError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, 2, rejection.Limit)
	assert.Zero(t, f.totals(t, e.ID).Quantity)
}

// The booking window is inclusive at both ends.
func TestRequestBooking_WindowClosed(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want error
	}{
		{name: "before start", now: bookingOpens.Add(-time.Second), want: domain.ErrBookingWindowClosed},
		{name: "at start", now: bookingOpens},
		{name: "at end", now: bookingOpens.AddDate(0, 0, 5)},
		{name: "after end", now: bookingOpens.AddDate(0, 0, 5).Add(time.Second), want: domain.ErrBookingWindowClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			e := f.event(t, nil)
			f.now = tt.now

			_, err := f.svc.RequestBooking(context.Background(), alice, e.ID, 1)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.totals(t, e.ID).Quantity)
		})
	}
}

// Totals count quantities, not grants.
func TestSummarize_AfterBookings(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)
	ctx := context.Background()

	for _, uid := range []uint{1, 2, 3} {
		_, err := f.svc.RequestBooking(ctx, domain.Principal{UserID: uid, Role: domain.RoleUser}, e.ID, 2)
		require.NoError(t, err)
	}

	summary, err := f.summary.Summarize(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalTicketsBooked)
	assert.Equal(t, 3, summary.UniqueBookers)
	assert.Equal(t, "120.00", summary.TotalRevenue.String())
	assert.Equal(t, 94, summary.RemainingSeats)

	again, err := f.summary.Summarize(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestRequestBooking_CheckOrder(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestBooking(ctx, alice, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Window is checked before the per-request limit.
	closed := f.event(t, func(e *domain.Event) { e.BookingEnd = bookingOpens })
	_, err = f.svc.RequestBooking(ctx, alice, closed.ID, 50)
	assert.ErrorIs(t, err, domain.ErrBookingWindowClosed)

	// Per-user limit is checked before capacity.
	full := f.event(t, func(e *domain.Event) {
		e.MaxSeats = 2
		e.MaxTicketsPerUser = 2
	})
	_, err = f.svc.RequestBooking(ctx, alice, full.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.RequestBooking(ctx, alice, full.ID, 1)
	assert.ErrorIs(t, err, domain.ErrPerUserLimitExceeded)
	_, err = f.svc.RequestBooking(ctx, bob, full.ID, 1)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
	assert.EqualError(t, err, "No more seats available for this event.")
}

func TestRequestBooking_InvalidQuantity(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)

	for _, q := range []int{0, -1} {
		_, err := f.svc.RequestBooking(context.Background(), alice, e.ID, q)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, f.totals(t, e.ID).Quantity)
}

func TestRequestBooking_UnknownRoleForbidden(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)

	_, err := f.svc.RequestBooking(context.Background(), domain.Principal{UserID: 1}, e.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestBooking_SeesCapacityUpdates(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, func(e *domain.Event) { e.MaxSeats = 3 })
	ctx := context.Background()

	_, err := f.svc.RequestBooking(ctx, alice, e.ID, 2)
	require.NoError(t, err)

	e.MaxSeats = 2
	_, err = f.store.Events().Update(ctx, e)
	require.NoError(t, err)

	_, err = f.svc.RequestBooking(ctx, bob, e.ID, 1)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
}

func TestRequestBooking_ConcurrentCapacityInvariant(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, func(e *domain.Event) {
		e.MaxSeats = 25
		e.MaxTicketsPerUser = 3
	})

	const users = 40
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			for q := 1; q <= 3; q++ {
				_, _ = f.svc.RequestBooking(context.Background(), domain.Principal{UserID: uid, Role: domain.RoleUser}, e.ID, q)
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.LessOrEqual(t, f.totals(t, e.ID).Quantity, e.MaxSeats)
	assert.Equal(t, e.MaxSeats, f.totals(t, e.ID).Quantity, "demand exceeds supply so every seat is sold")

	perUser := map[uint]int{}
	for uid := uint(1); uid <= users; uid++ {
		grants, err := f.store.Ledger().ListByUser(context.Background(), uid)
		require.NoError(t, err)
		for _, g := range grants {
			perUser[uid] += g.Quantity
		}
	}
	for uid, n := range perUser {
		assert.LessOrEqual(t, n, e.MaxTicketsPerUser, "user %d", uid)
	}
}

func TestRequestBooking_ConcurrentSameUserInvariant(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, func(e *domain.Event) { e.MaxTicketsPerUser = 2 })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.RequestBooking(context.Background(), alice, e.ID, 1)
		}()
	}
	wg.Wait()

	totals := f.totals(t, e.ID)
	assert.Equal(t, 2, totals.Quantity)
	assert.Equal(t, 1, totals.UniqueBookers)
}

type blockingStore struct {
	calls int
	mu    sync.Mutex
}

func (s *blockingStore) WithEventLock(ctx context.Context, _ uint, _ func(tx domain.LedgerTx) error) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

func TestRequestBooking_LockTimeoutIsConflict(t *testing.T) {
	store := &blockingStore{}
	svc := NewBookingService(store, nil, BookingPolicy{
		LockTimeout:  10 * time.Millisecond,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})

	_, err := svc.RequestBooking(context.Background(), alice, 1, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, store.calls, "one attempt plus two retries")
}

func TestRequestBooking_CallerCancelNotRetried(t *testing.T) {
	store := &blockingStore{}
	svc := NewBookingService(store, nil, BookingPolicy{
		LockTimeout:  time.Second,
		MaxRetries:   5,
		RetryBackoff: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.RequestBooking(ctx, alice, 1, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, store.calls)
}

type flakyStore struct {
	BookingStore
	failures int
}

func (s *flakyStore) WithEventLock(ctx context.Context, eventID uint, fn func(tx domain.LedgerTx) error) error {
	if s.failures > 0 {
		s.failures--
		return domain.ErrConflict
	}
	return s.BookingStore.WithEventLock(ctx, eventID, fn)
}

func TestRequestBooking_RetriesConflicts(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)
	store := &flakyStore{BookingStore: f.store.Ledger(), failures: 2}
	svc := NewBookingService(store, f.store.Ledger(), BookingPolicy{
		LockTimeout:  time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, WithClock(func() time.Time { return bookingNow }))

	_, err := svc.RequestBooking(context.Background(), alice, e.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.totals(t, e.ID).Quantity)
}

type recordingNotifier struct {
	mu     sync.Mutex
	grants []domain.TicketGrant
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, grant domain.TicketGrant, _ domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.grants = append(n.grants, grant)
}

func TestRequestBooking_NotifiesOnlyCommitted(t *testing.T) {
	n := &recordingNotifier{}
	f := newBookingFixture(t, WithNotifier(Notifiers{NopNotifier{}, n}))
	e := f.event(t, nil)
	ctx := context.Background()

	grant, err := f.svc.RequestBooking(ctx, alice, e.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.RequestBooking(ctx, alice, e.ID, 5)
	require.Error(t, err)

	require.Len(t, n.grants, 1)
	assert.Equal(t, grant.ID, n.grants[0].ID)
}

func TestBookingService_SetPolicy(t *testing.T) {
	svc := NewBookingService(nil, nil, BookingPolicy{})
	assert.Equal(t, DefaultBookingPolicy.LockTimeout, svc.Policy().LockTimeout)

	svc.SetPolicy(BookingPolicy{LockTimeout: time.Minute, MaxRetries: -1})
	assert.Equal(t, time.Minute, svc.Policy().LockTimeout)
	assert.Equal(t, 0, svc.Policy().MaxRetries)
}

func TestListTickets(t *testing.T) {
	f := newBookingFixture(t)
	e := f.event(t, nil)
	ctx := context.Background()

	_, err := f.svc.RequestBooking(ctx, alice, e.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.RequestBooking(ctx, bob, e.ID, 1)
	require.NoError(t, err)

	grants, err := f.svc.ListTickets(ctx, alice)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, alice.UserID, grants[0].UserID)
	require.NotNil(t, grants[0].Event)
	assert.Equal(t, "Go meetup", grants[0].Event.Title)
}
