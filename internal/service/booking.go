package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

// BookingStore provides the per-event critical section the admission
// decision runs in.
type BookingStore interface {
	WithEventLock(ctx context.Context, eventID uint, fn func(tx domain.LedgerTx) error) error
}

type TicketLister interface {
	ListByUser(ctx context.Context, userID uint) ([]domain.TicketGrant, error)
}

// BookingNotifier is told about every committed grant, after the commit.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, grant domain.TicketGrant, event domain.Event)
}

// BookingPolicy bounds how long and how often a request competes for an event lock.
type BookingPolicy struct {
	LockTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

var DefaultBookingPolicy = BookingPolicy{
	LockTimeout:  5 * time.Second,
	MaxRetries:   3,
	RetryBackoff: 50 * time.Millisecond,
}

type BookingService struct {
	store    BookingStore
	tickets  TicketLister
	notifier BookingNotifier
	policy   atomic.Pointer[BookingPolicy]
	now      func() time.Time
}

type BookingOption func(*BookingService)

func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithNotifier(n BookingNotifier) BookingOption {
	return func(s *BookingService) {
		s.notifier = n
	}
}

func NewBookingService(store BookingStore, tickets TicketLister, policy BookingPolicy, opts ...BookingOption) *BookingService {
	s := &BookingService{
		store:    store,
		tickets:  tickets,
		notifier: NopNotifier{},
		now:      time.Now,
	}
	s.SetPolicy(policy)
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetPolicy replaces the policy for subsequent requests.
func (s *BookingService) SetPolicy(p BookingPolicy) {
	if p.LockTimeout <= 0 {
		p.LockTimeout = DefaultBookingPolicy.LockTimeout
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	s.policy.Store(&p)
}

func (s *BookingService) Policy() BookingPolicy {
	return *s.policy.Load()
}

// RequestBooking admits or rejects a request for quantity seats of an event.
// On success exactly one grant is committed; on any error nothing is.
func (s *BookingService) RequestBooking(ctx context.Context, user domain.Principal, eventID uint, quantity int) (domain.TicketGrant, error) {
	if !user.Role.Can(domain.CapBookTickets) {
		return domain.TicketGrant{}, domain.ErrForbidden
	}
	if quantity < 1 {
		return domain.TicketGrant{}, domain.NewValidationError(validation.Errors{
			"quantity": errors.New("must be no less than 1"),
		})
	}

	policy := s.Policy()

	var (
		grant domain.TicketGrant
		event domain.Event
		err   error
	)
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err = sleepCtx(ctx, policy.RetryBackoff*time.Duration(attempt)); err != nil {
				break
			}
			zap.L().Debug("retrying booking after conflict",
				zap.Uint("event_id", eventID),
				zap.Uint("user_id", user.UserID),
				zap.Int("attempt", attempt),
			)
		}

		grant, event, err = s.admit(ctx, policy.LockTimeout, user.UserID, eventID, quantity)
		if err == nil || !errors.Is(err, domain.ErrConflict) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		var rejection *domain.BookingError
		if errors.As(err, &rejection) {
			zap.L().Info("booking rejected",
				zap.Uint("event_id", eventID),
				zap.Uint("user_id", user.UserID),
				zap.Int("quantity", quantity),
				zap.String("kind", domain.ErrorKind(rejection)),
			)
			return domain.TicketGrant{}, rejection
		}

		return domain.TicketGrant{}, fmt.Errorf("s.admit -> %w", err)
	}

	zap.L().Info("booking accepted",
		zap.Uint("ticket_id", grant.ID),
		zap.Uint("event_id", eventID),
		zap.Uint("user_id", user.UserID),
		zap.Int("quantity", quantity),
	)
	s.notifier.BookingConfirmed(ctx, grant, event)

	return grant, nil
}

// admit runs all admission checks and the append in one per-event section,
// against the event row as it is under the lock.
func (s *BookingService) admit(ctx context.Context, timeout time.Duration, userID, eventID uint, quantity int) (domain.TicketGrant, domain.Event, error) {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		grant domain.TicketGrant
		event domain.Event
	)
	err := s.store.WithEventLock(lockCtx, eventID, func(tx domain.LedgerTx) error {
		event = tx.Event()
		now := s.now()

		if !event.BookingOpen(now) {
			return domain.ErrWindowClosed()
		}

		if quantity > event.MaxTicketsPerUser {
			return domain.ErrRequestLimit(event.MaxTicketsPerUser)
		}

		userBooked, err := tx.AggregateQuantity(lockCtx, &userID)
		if err != nil {
			return fmt.Errorf("tx.AggregateQuantity(user) -> %w", err)
		}
		if userBooked+quantity > event.MaxTicketsPerUser {
			return domain.ErrUserLimit(userBooked, event.MaxTicketsPerUser)
		}

		booked, err := tx.AggregateQuantity(lockCtx, nil)
		if err != nil {
			return fmt.Errorf("tx.AggregateQuantity(event) -> %w", err)
		}
		if booked+quantity > event.MaxSeats {
			return domain.ErrNoSeats(event.MaxSeats)
		}

		grant, err = tx.Append(lockCtx, domain.TicketGrant{
			UserID:      userID,
			EventID:     eventID,
			Quantity:    quantity,
			BookingTime: now,
		})
		if err != nil {
			return fmt.Errorf("tx.Append -> %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, domain.ErrConflict) {
			err = fmt.Errorf("%w: timed out waiting for event %d: %w", domain.ErrConflict, eventID, err)
		}
		return domain.TicketGrant{}, domain.Event{}, err
	}

	grant.Event = &event
	return grant, event, nil
}

func (s *BookingService) ListTickets(ctx context.Context, user domain.Principal) ([]domain.TicketGrant, error) {
	grants, err := s.tickets.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.tickets.ListByUser -> %w", err)
	}

	return grants, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
