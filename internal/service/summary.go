package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

type LedgerTotals interface {
	Totals(ctx context.Context, eventID uint) (domain.LedgerTotals, error)
}

// SummaryService projects the ticket ledger of an event into an EventSummary.
// It only reads committed grants.
type SummaryService struct {
	events EventRepository
	ledger LedgerTotals
}

func NewSummaryService(events EventRepository, ledger LedgerTotals) *SummaryService {
	return &SummaryService{
		events: events,
		ledger: ledger,
	}
}

func (s *SummaryService) Summarize(ctx context.Context, eventID uint) (domain.EventSummary, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.EventSummary{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	totals, err := s.ledger.Totals(ctx, eventID)
	if err != nil {
		return domain.EventSummary{}, fmt.Errorf("s.ledger.Totals -> %w", err)
	}

	return domain.NewEventSummary(event, totals), nil
}
