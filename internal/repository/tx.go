package repository

import (
	"context"

	"github.com/farellandr/ticketbook/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx is a handle scoped to one database transaction. It must not be used
// after the callback it was passed to has returned.
type Tx interface {
	// LockEvent loads the event and holds its row lock until the
	// transaction ends.
	LockEvent(id uuid.UUID) (*models.Event, error)
	SaveEvent(event *models.Event) error
	SetAvailableTickets(eventID uuid.UUID, available int) error
	FindUserBooking(userID, eventID uuid.UUID) (*models.Booking, error)
	InsertBooking(booking *models.Booking) error
	DeleteBooking(id uuid.UUID) error
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

type GormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	err := t.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	})
	return translate(err)
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockEvent(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := t.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (t *gormTx) SaveEvent(event *models.Event) error {
	return translate(t.db.Omit(clause.Associations).Save(event).Error)
}

func (t *gormTx) SetAvailableTickets(eventID uuid.UUID, available int) error {
	result := t.db.
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("available_tickets", available)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) FindUserBooking(userID, eventID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := t.db.
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&booking).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (t *gormTx) InsertBooking(booking *models.Booking) error {
	return translate(t.db.Omit(clause.Associations).Create(booking).Error)
}

func (t *gormTx) DeleteBooking(id uuid.UUID) error {
	result := t.db.Where("id = ?", id).Delete(&models.Booking{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
