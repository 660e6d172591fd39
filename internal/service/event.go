package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, admin domain.Principal, event domain.Event) (domain.Event, error) {
	if !admin.Role.Can(domain.CapManageEvents) {
		return domain.Event{}, domain.ErrForbidden
	}

	if err := event.Validate(); err != nil {
		return domain.Event{}, domain.NewValidationError(err)
	}

	event.ID = 0
	event.CreatedBy = admin.UserID

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateEvent merges patch into the stored event and validates the result
// as a whole, so a partial update cannot leave the event inconsistent.
func (s *EventService) UpdateEvent(ctx context.Context, admin domain.Principal, id uint, patch domain.EventPatch) (domain.Event, error) {
	if !admin.Role.Can(domain.CapManageEvents) {
		return domain.Event{}, domain.ErrForbidden
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	merged := patch.Apply(existing)
	if err = merged.Validate(); err != nil {
		return domain.Event{}, domain.NewValidationError(err)
	}

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}
