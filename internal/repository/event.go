package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository/dao"
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", mapDAOError(err))
	}

	return eventDaoToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", mapDAOError(err))
	}

	return eventDaoToDomain(updated), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", mapDAOError(err))
	}

	return eventDaoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = eventDaoToDomain(e)
	}

	return events, nil
}

func eventDomainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                e.ID,
		EventType:         string(e.EventType),
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		MaxSeats:          e.MaxSeats,
		MaxTicketsPerUser: e.MaxTicketsPerUser,
		TicketCostCents:   int64(e.TicketCost),
		BookingStart:      e.BookingStart,
		BookingEnd:        e.BookingEnd,
		CreatedByID:       e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func eventDaoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                e.ID,
		EventType:         domain.EventType(e.EventType),
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		MaxSeats:          e.MaxSeats,
		MaxTicketsPerUser: e.MaxTicketsPerUser,
		TicketCost:        domain.Money(e.TicketCostCents),
		BookingStart:      e.BookingStart,
		BookingEnd:        e.BookingEnd,
		CreatedBy:         e.CreatedByID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
