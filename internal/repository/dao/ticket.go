package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Ticket struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index:idx_tickets_event_user,priority:2"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	EventID     uint      `gorm:"not null;index:idx_tickets_event_user,priority:1"`
	Event       Event     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Quantity    int       `gorm:"not null;default:1"`
	BookingTime time.Time `gorm:"not null"`
}

// TicketTotals is the aggregate row behind an event summary.
type TicketTotals struct {
	Quantity      int
	UniqueBookers int
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// WithEventLock runs fn in a transaction holding a row lock on the event.
// Concurrent callers for the same event block on the SELECT ... FOR UPDATE
// until the holder commits or rolls back. fn must only use the tx it is given.
// The transaction commits when fn returns nil and rolls back otherwise.
func (d *TicketDAO) WithEventLock(ctx context.Context, eventID uint, fn func(tx *gorm.DB, event Event) error) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return result.Error
		}

		return fn(tx, event)
	})
	if err != nil && isLockConflict(err) {
		return errors.Join(ErrLockConflict, err)
	}

	return err
}

// SumQuantity returns the booked quantity for the event, for one user when
// userID is set. It must be called with the tx from WithEventLock.
func (d *TicketDAO) SumQuantity(ctx context.Context, tx *gorm.DB, eventID uint, userID *uint) (int, error) {
	var total int

	q := tx.WithContext(ctx).Model(&Ticket{}).Where("event_id = ?", eventID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	if err := q.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (d *TicketDAO) Insert(ctx context.Context, tx *gorm.DB, ticket Ticket) (Ticket, error) {
	if err := tx.WithContext(ctx).Omit("User", "Event").Create(&ticket).Error; err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

func (d *TicketDAO) FindByUserID(ctx context.Context, userID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("booking_time DESC").
		Order("id DESC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// Totals aggregates committed tickets of an event without taking any lock.
func (d *TicketDAO) Totals(ctx context.Context, eventID uint) (TicketTotals, error) {
	var totals TicketTotals

	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity, COUNT(DISTINCT user_id) AS unique_bookers").
		Where("event_id = ?", eventID).
		Scan(&totals)
	if result.Error != nil {
		return TicketTotals{}, result.Error
	}

	return totals, nil
}
