package repository

import (
	"context"
	"time"

	"github.com/farellandr/ticketbook/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingDetailColumns = `
bookings.id AS booking_id,
bookings.user_id AS user_id,
bookings.event_id AS event_id,
bookings.number_of_tickets AS number_of_tickets,
bookings.booking_date AS booking_date,
users.email AS user_email,
events.title AS event_title,
events.slug AS event_slug,
events.description AS event_description,
events.date AS event_date,
events.venue AS event_venue,
events.total_tickets AS event_total_tickets,
events.available_tickets AS event_available_tickets,
events.price AS event_price`

type bookingDetailRow struct {
	BookingID             uuid.UUID `gorm:"column:booking_id"`
	UserID                uuid.UUID `gorm:"column:user_id"`
	EventID               uuid.UUID `gorm:"column:event_id"`
	NumberOfTickets       int       `gorm:"column:number_of_tickets"`
	BookingDate           time.Time `gorm:"column:booking_date"`
	UserEmail             string    `gorm:"column:user_email"`
	EventTitle            string    `gorm:"column:event_title"`
	EventSlug             string    `gorm:"column:event_slug"`
	EventDescription      string    `gorm:"column:event_description"`
	EventDate             time.Time `gorm:"column:event_date"`
	EventVenue            string    `gorm:"column:event_venue"`
	EventTotalTickets     int       `gorm:"column:event_total_tickets"`
	EventAvailableTickets int       `gorm:"column:event_available_tickets"`
	EventPrice            float64   `gorm:"column:event_price"`
}

// detail converts the row to the read model. TotalPrice is the plain
// float64 product of ticket count and unit price, without rounding.
func (row bookingDetailRow) detail() models.BookingDetail {
	return models.BookingDetail{
		ID:              row.BookingID,
		UserID:          row.UserID,
		EventID:         row.EventID,
		NumberOfTickets: row.NumberOfTickets,
		BookingDate:     row.BookingDate,
		UserEmail:       row.UserEmail,
		TotalPrice:      float64(row.NumberOfTickets) * row.EventPrice,
		Event: models.Event{
			ID:               row.EventID,
			Title:            row.EventTitle,
			Slug:             row.EventSlug,
			Description:      row.EventDescription,
			Date:             row.EventDate,
			Venue:            row.EventVenue,
			TotalTickets:     row.EventTotalTickets,
			AvailableTickets: row.EventAvailableTickets,
			Price:            row.EventPrice,
		},
	}
}

func (r *BookingRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Select(bookingDetailColumns).
		Joins("JOIN users ON users.id = bookings.user_id").
		Joins("JOIN events ON events.id = bookings.event_id")
}

func scanDetails(query *gorm.DB) ([]models.BookingDetail, error) {
	var rows []bookingDetailRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	details := make([]models.BookingDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}

// ListDetailsByUser returns the user's bookings, most recent first.
func (r *BookingRepository) ListDetailsByUser(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error) {
	return scanDetails(r.detailQuery(ctx).
		Where("bookings.user_id = ?", userID).
		Order("bookings.booking_date DESC").
		Order("bookings.id ASC"))
}

func (r *BookingRepository) ListDetails(ctx context.Context, skip, limit int) ([]models.BookingDetail, error) {
	return scanDetails(r.detailQuery(ctx).
		Order("bookings.booking_date ASC").
		Order("bookings.id ASC").
		Offset(skip).
		Limit(limit))
}

func (r *BookingRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("booking_date ASC").
		Find(&bookings).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}
