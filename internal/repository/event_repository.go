package repository

import (
	"context"
	"time"

	"github.com/farellandr/ticketbook/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventFilter narrows an event listing. The zero value matches every event.
type EventFilter struct {
	AvailableOnly bool
	StartsAfter   *time.Time
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context, filter EventFilter, skip, limit int) ([]models.Event, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})
	if filter.AvailableOnly {
		query = query.Where("available_tickets > ?", 0)
	}
	if filter.StartsAfter != nil {
		query = query.Where("date > ?", filter.StartsAfter.UTC())
	}

	events := []models.Event{}
	err := query.
		Order("date ASC").
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&events).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// Delete removes the event. Its bookings go with it through the
// ON DELETE CASCADE foreign key.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
