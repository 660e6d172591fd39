package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID                uint      `gorm:"primaryKey"`
	EventType         string    `gorm:"size:10;not null;default:online"`
	Title             string    `gorm:"size:200;not null"`
	Description       string    `gorm:"type:text;not null"`
	Location          string    `gorm:"size:200;not null"`
	StartTime         time.Time `gorm:"not null;index"`
	EndTime           time.Time `gorm:"not null"`
	MaxSeats          int       `gorm:"not null"`
	MaxTicketsPerUser int       `gorm:"not null;default:1"`
	TicketCostCents   int64     `gorm:"not null"`
	BookingStart      time.Time `gorm:"not null"`
	BookingEnd        time.Time `gorm:"not null"`
	CreatedByID       uint      `gorm:"not null;index"`
	CreatedBy         User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Omit("CreatedBy").Create(&event).Error; err != nil {
		return Event{}, err
	}

	return event, nil
}

// Update writes every column of the event. The row must already exist.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Model(&event).Omit("CreatedBy", "CreatedAt").Select("*").Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Order("start_time ASC").Order("id ASC").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}
