package services

import (
	"context"
	"errors"
	"log"

	"github.com/farellandr/ticketbook/internal/clock"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/repository"
	"github.com/google/uuid"
)

// BookingService reserves and releases tickets. Every operation locks the
// event row first, so bookings of one event are serialised while
// different events proceed in parallel.
type BookingService struct {
	tx          repository.Transactor
	clock       clock.Clock
	maxAttempts int
}

type BookingServiceOption func(*BookingService)

// WithMaxAttempts bounds how many times a transaction aborted by a
// concurrent one is tried before giving up.
func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewBookingService(tx repository.Transactor, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		tx:          tx,
		clock:       clk,
		maxAttempts: defaultTxAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *BookingService) Book(ctx context.Context, userID, eventID uuid.UUID, count int) (*models.Booking, error) {
	if count <= 0 {
		return nil, ErrInvalidTicketCount
	}

	var booking *models.Booking
	err := runInTx(ctx, s.tx, s.maxAttempts, "booking", func(tx repository.Tx) error {
		now := s.clock.Now()

		event, err := tx.LockEvent(eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}

		if event.Date.Before(now) {
			return ErrEventInPast
		}

		_, err = tx.FindUserBooking(userID, eventID)
		if err == nil {
			return ErrAlreadyBooked
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if event.AvailableTickets < count {
			return ErrInsufficientTickets.Withf(
				"Not enough tickets available: requested %d, available %d",
				count, event.AvailableTickets,
			)
		}

		created := &models.Booking{
			UserID:          userID,
			EventID:         eventID,
			NumberOfTickets: count,
			BookingDate:     now,
		}
		if err := tx.InsertBooking(created); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyBooked
			}
			return err
		}
		if err := tx.SetAvailableTickets(eventID, event.AvailableTickets-count); err != nil {
			return err
		}

		booking = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("booking %s: user %s took %d tickets of event %s", booking.ID, userID, count, eventID)
	return booking, nil
}

// Cancel deletes the user's booking for the event and returns its tickets.
// The deleted booking is returned.
func (s *BookingService) Cancel(ctx context.Context, userID, eventID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	err := runInTx(ctx, s.tx, s.maxAttempts, "cancellation", func(tx repository.Tx) error {
		now := s.clock.Now()

		event, err := tx.LockEvent(eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		existing, err := tx.FindUserBooking(userID, eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if event.Date.Before(now) {
			return ErrEventInPast.Withf("Cannot cancel bookings for past events")
		}

		if err := tx.SetAvailableTickets(eventID, event.AvailableTickets+existing.NumberOfTickets); err != nil {
			return err
		}
		if err := tx.DeleteBooking(existing.ID); err != nil {
			return err
		}

		booking = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("booking %s: user %s cancelled, %d tickets returned to event %s", booking.ID, userID, booking.NumberOfTickets, eventID)
	return booking, nil
}
