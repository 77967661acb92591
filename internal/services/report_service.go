package services

import (
	"context"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/google/uuid"
)

type bookingReader interface {
	ListDetailsByUser(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error)
	ListDetails(ctx context.Context, skip, limit int) ([]models.BookingDetail, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Booking, error)
}

// ReportService serves read-only booking listings.
type ReportService struct {
	bookings bookingReader
}

func NewReportService(bookings bookingReader) *ReportService {
	return &ReportService{bookings: bookings}
}

// History returns the user's bookings, most recent first.
func (s *ReportService) History(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error) {
	details, err := s.bookings.ListDetailsByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence("Could not load booking history", err)
	}
	return details, nil
}

func (s *ReportService) ListForAdmin(ctx context.Context, skip, limit int) ([]models.BookingDetail, error) {
	details, err := s.bookings.ListDetails(ctx, skip, limit)
	if err != nil {
		return nil, apperror.Persistence("Could not list bookings", err)
	}
	return details, nil
}

// ListForEvent returns the event's bookings. An unknown event has none.
func (s *ReportService) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Persistence("Could not list bookings", err)
	}
	return bookings, nil
}
