package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Event struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title            string    `gorm:"not null;index" json:"title"`
	Slug             string    `gorm:"not null;index" json:"slug"`
	Description      string    `gorm:"not null" json:"description"`
	Date             time.Time `gorm:"not null;index" json:"date"`
	Venue            string    `gorm:"not null" json:"venue"`
	TotalTickets     int       `gorm:"not null" json:"total_tickets"`
	AvailableTickets int       `gorm:"not null" json:"available_tickets"`
	Price            float64   `gorm:"not null" json:"price"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Slug == "" {
		event.Slug = slug.Make(event.Title)
	}
	return
}

// BookedTickets is the number of tickets currently claimed by bookings.
func (event *Event) BookedTickets() int {
	return event.TotalTickets - event.AvailableTickets
}

// EventInput holds the fields an admin supplies when creating an event.
type EventInput struct {
	Title        string
	Description  string
	Date         time.Time
	Venue        string
	TotalTickets int
	Price        float64
}

// EventPatch is a partial update; nil fields are left unchanged.
type EventPatch struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Venue        *string
	TotalTickets *int
	Price        *float64
}
