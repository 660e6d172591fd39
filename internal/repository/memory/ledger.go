package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository"
)

type Ledger struct {
	s *Store
}

// WithEventLock serializes fn against every other section for the same
// event. Appends made by fn become visible only if fn returns nil and ctx
// is still live.
func (l *Ledger) WithEventLock(ctx context.Context, eventID uint, fn func(tx domain.LedgerTx) error) error {
	release, err := l.s.locks.acquire(ctx, eventID)
	if err != nil {
		return fmt.Errorf("l.s.locks.acquire -> %w: %w", repository.ErrLockConflict, err)
	}
	defer release()

	l.s.mu.RLock()
	event, ok := l.s.events[eventID]
	l.s.mu.RUnlock()
	if !ok {
		return repository.ErrEventNotFound
	}

	tx := &ledgerTx{s: l.s, event: event}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrLockConflict, err)
	}

	l.s.mu.Lock()
	l.s.tickets = append(l.s.tickets, tx.pending...)
	l.s.mu.Unlock()

	return nil
}

func (l *Ledger) ListByUser(_ context.Context, userID uint) ([]domain.TicketGrant, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	grants := make([]domain.TicketGrant, 0)
	for _, t := range l.s.tickets {
		if t.UserID != userID {
			continue
		}
		event := l.s.events[t.EventID]
		t.Event = &event
		grants = append(grants, t)
	}

	sort.SliceStable(grants, func(i, j int) bool {
		if grants[i].BookingTime.Equal(grants[j].BookingTime) {
			return grants[i].ID > grants[j].ID
		}
		return grants[i].BookingTime.After(grants[j].BookingTime)
	})

	return grants, nil
}

func (l *Ledger) Totals(_ context.Context, eventID uint) (domain.LedgerTotals, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	var totals domain.LedgerTotals
	bookers := make(map[uint]struct{})
	for _, t := range l.s.tickets {
		if t.EventID != eventID {
			continue
		}
		totals.Quantity += t.Quantity
		bookers[t.UserID] = struct{}{}
	}
	totals.UniqueBookers = len(bookers)

	return totals, nil
}

type ledgerTx struct {
	s       *Store
	event   domain.Event
	pending []domain.TicketGrant
}

func (t *ledgerTx) Event() domain.Event {
	return t.event
}

func (t *ledgerTx) AggregateQuantity(_ context.Context, userID *uint) (int, error) {
	total := 0
	match := func(g domain.TicketGrant) bool {
		return g.EventID == t.event.ID && (userID == nil || g.UserID == *userID)
	}

	t.s.mu.RLock()
	for _, g := range t.s.tickets {
		if match(g) {
			total += g.Quantity
		}
	}
	t.s.mu.RUnlock()

	for _, g := range t.pending {
		if match(g) {
			total += g.Quantity
		}
	}

	return total, nil
}

func (t *ledgerTx) Append(_ context.Context, grant domain.TicketGrant) (domain.TicketGrant, error) {
	t.s.mu.Lock()
	t.s.nextTicketID++
	grant.ID = t.s.nextTicketID
	t.s.mu.Unlock()

	grant.EventID = t.event.ID
	grant.Event = nil
	t.pending = append(t.pending, grant)

	return grant, nil
}

// eventLocks hands out one single-slot semaphore per event id.
type eventLocks struct {
	mu   sync.Mutex
	sems map[uint]chan struct{}
}

func newEventLocks() *eventLocks {
	return &eventLocks{
		sems: make(map[uint]chan struct{}),
	}
}

func (l *eventLocks) acquire(ctx context.Context, eventID uint) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[eventID]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[eventID] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
