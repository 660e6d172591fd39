// Package memory is a process-local storage backend with the same contracts
// as the SQL repositories. It backs tests and the "memory" database driver.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository"
)

type Store struct {
	mu      sync.RWMutex
	users   map[uint]domain.User
	events  map[uint]domain.Event
	tickets []domain.TicketGrant

	nextUserID   uint
	nextEventID  uint
	nextTicketID uint

	locks *eventLocks
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[uint]domain.User),
		events: make(map[uint]domain.Event),
		locks:  newEventLocks(),
		now:    time.Now,
	}
}

func (s *Store) Users() *Users {
	return &Users{s: s}
}

func (s *Store) Events() *Events {
	return &Events{s: s}
}

func (s *Store) Ledger() *Ledger {
	return &Ledger{s: s}
}

type Users struct {
	s *Store
}

func (u *Users) Create(_ context.Context, user domain.User) (domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == user.Username {
			return domain.User{}, repository.ErrUsernameExists
		}
	}

	u.s.nextUserID++
	user.ID = u.s.nextUserID
	user.CreatedAt = u.s.now()
	user.UpdatedAt = user.CreatedAt
	u.s.users[user.ID] = user

	return user, nil
}

func (u *Users) FindByID(_ context.Context, id uint) (domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (u *Users) FindByUsername(_ context.Context, username string) (domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

type Events struct {
	s *Store
}

func (e *Events) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	e.s.nextEventID++
	event.ID = e.s.nextEventID
	event.CreatedAt = e.s.now()
	event.UpdatedAt = event.CreatedAt
	e.s.events[event.ID] = event

	return event, nil
}

func (e *Events) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	existing, ok := e.s.events[event.ID]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = e.s.now()
	e.s.events[event.ID] = event

	return event, nil
}

func (e *Events) FindByID(_ context.Context, id uint) (domain.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	event, ok := e.s.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (e *Events) FindAll(_ context.Context) ([]domain.Event, error) {
	e.s.mu.RLock()
	events := make([]domain.Event, 0, len(e.s.events))
	for _, event := range e.s.events {
		events = append(events, event)
	}
	e.s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})

	return events, nil
}
