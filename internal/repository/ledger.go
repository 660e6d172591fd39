package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository/dao"
)

type TicketDAO interface {
	WithEventLock(ctx context.Context, eventID uint, fn func(tx *gorm.DB, event dao.Event) error) error
	SumQuantity(ctx context.Context, tx *gorm.DB, eventID uint, userID *uint) (int, error)
	Insert(ctx context.Context, tx *gorm.DB, ticket dao.Ticket) (dao.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Ticket, error)
	Totals(ctx context.Context, eventID uint) (dao.TicketTotals, error)
}

// LedgerRepository is the SQL-backed booking ledger.
type LedgerRepository struct {
	dao TicketDAO
}

func NewLedgerRepository(dao TicketDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func (r *LedgerRepository) WithEventLock(ctx context.Context, eventID uint, fn func(tx domain.LedgerTx) error) error {
	err := r.dao.WithEventLock(ctx, eventID, func(tx *gorm.DB, event dao.Event) error {
		return fn(&ledgerTx{
			dao:   r.dao,
			tx:    tx,
			event: eventDaoToDomain(event),
		})
	})
	if err != nil {
		return fmt.Errorf("r.dao.WithEventLock -> %w", mapDAOError(err))
	}

	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID uint) ([]domain.TicketGrant, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	grants := make([]domain.TicketGrant, len(found))
	for i, t := range found {
		grant := ticketDaoToDomain(t)
		event := eventDaoToDomain(t.Event)
		grant.Event = &event
		grants[i] = grant
	}

	return grants, nil
}

func (r *LedgerRepository) Totals(ctx context.Context, eventID uint) (domain.LedgerTotals, error) {
	totals, err := r.dao.Totals(ctx, eventID)
	if err != nil {
		return domain.LedgerTotals{}, fmt.Errorf("r.dao.Totals -> %w", err)
	}

	return domain.LedgerTotals{
		Quantity:      totals.Quantity,
		UniqueBookers: totals.UniqueBookers,
	}, nil
}

type ledgerTx struct {
	dao   TicketDAO
	tx    *gorm.DB
	event domain.Event
}

func (l *ledgerTx) Event() domain.Event {
	return l.event
}

func (l *ledgerTx) AggregateQuantity(ctx context.Context, userID *uint) (int, error) {
	total, err := l.dao.SumQuantity(ctx, l.tx, l.event.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("l.dao.SumQuantity -> %w", err)
	}

	return total, nil
}

func (l *ledgerTx) Append(ctx context.Context, grant domain.TicketGrant) (domain.TicketGrant, error) {
	created, err := l.dao.Insert(ctx, l.tx, dao.Ticket{
		UserID:      grant.UserID,
		EventID:     l.event.ID,
		Quantity:    grant.Quantity,
		BookingTime: grant.BookingTime,
	})
	if err != nil {
		return domain.TicketGrant{}, fmt.Errorf("l.dao.Insert -> %w", err)
	}

	return ticketDaoToDomain(created), nil
}

func ticketDaoToDomain(t dao.Ticket) domain.TicketGrant {
	return domain.TicketGrant{
		ID:          t.ID,
		UserID:      t.UserID,
		EventID:     t.EventID,
		Quantity:    t.Quantity,
		BookingTime: t.BookingTime,
	}
}
