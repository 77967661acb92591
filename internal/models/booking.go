package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_event" json:"user_id"`
	EventID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_event;index" json:"event_id"`
	NumberOfTickets int       `gorm:"not null" json:"number_of_tickets"`
	BookingDate     time.Time `gorm:"not null;index" json:"booking_date"`

	User  *User  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Event *Event `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}

// BookingDetail is the read model served to booking history and admin
// listings: the booking enriched with its booker and event.
type BookingDetail struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	EventID         uuid.UUID `json:"event_id"`
	NumberOfTickets int       `json:"number_of_tickets"`
	BookingDate     time.Time `json:"booking_date"`
	UserEmail       string    `json:"user_email"`
	TotalPrice      float64   `json:"total_price"`
	Event           Event     `json:"event"`
}
