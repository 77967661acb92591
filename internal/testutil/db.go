// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/farellandr/ticketbook/config"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the production
// schema. It is limited to one connection, so transactions run one at a
// time and must not be interleaved with queries outside them.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// InsertUser stores a user whose password hash is built at the minimum
// bcrypt cost.
func InsertUser(t *testing.T, db *gorm.DB, email, password string, isAdmin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash), IsAdmin: isAdmin}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return user
}

// InsertEvent stores an event with every ticket available.
func InsertEvent(t *testing.T, db *gorm.DB, title string, date time.Time, tickets int, price float64) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:            title,
		Description:      title + " description",
		Date:             date.UTC(),
		Venue:            "Main Hall",
		TotalTickets:     tickets,
		AvailableTickets: tickets,
		Price:            price,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return event
}

// InsertBooking stores a booking and takes its tickets from the event.
func InsertBooking(t *testing.T, db *gorm.DB, userID, eventID uuid.UUID, tickets int, at time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:          userID,
		EventID:         eventID,
		NumberOfTickets: tickets,
		BookingDate:     at.UTC(),
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	err := db.Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("available_tickets", gorm.Expr("available_tickets - ?", tickets)).
		Error
	if err != nil {
		t.Fatalf("take tickets: %v", err)
	}
	return booking
}

// Reload reads the event back from storage.
func Reload(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Event {
	t.Helper()
	var event models.Event
	if err := db.Where("id = ?", id).First(&event).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	return &event
}
