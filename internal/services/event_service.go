package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/clock"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/repository"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type eventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, filter repository.EventFilter, skip, limit int) ([]models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventService struct {
	events      eventStore
	tx          repository.Transactor
	clock       clock.Clock
	maxAttempts int
}

func NewEventService(events eventStore, tx repository.Transactor, clk clock.Clock) *EventService {
	return &EventService{
		events:      events,
		tx:          tx,
		clock:       clk,
		maxAttempts: defaultTxAttempts,
	}
}

func (s *EventService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateVenue(in.Venue); err != nil {
		return nil, err
	}
	if err := validateTotalTickets(in.TotalTickets); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if !in.Date.After(s.clock.Now()) {
		return nil, ErrPastDate
	}

	event := &models.Event{
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Date:             in.Date.UTC(),
		Venue:            strings.TrimSpace(in.Venue),
		TotalTickets:     in.TotalTickets,
		AvailableTickets: in.TotalTickets,
		Price:            in.Price,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperror.Persistence("Could not create event", err)
	}

	log.Printf("event %s created with %d tickets", event.ID, event.TotalTickets)
	return event, nil
}

// Update applies the patch under the event's row lock. Changing the total
// shifts available tickets by the same amount; the total may not drop
// below the number already booked.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, patch models.EventPatch) (*models.Event, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Venue != nil {
		if err := validateVenue(*patch.Venue); err != nil {
			return nil, err
		}
	}
	if patch.TotalTickets != nil {
		if err := validateTotalTickets(*patch.TotalTickets); err != nil {
			return nil, err
		}
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.Date != nil && !patch.Date.After(s.clock.Now()) {
		return nil, ErrPastDate
	}

	var updated *models.Event
	err := runInTx(ctx, s.tx, s.maxAttempts, "event update", func(tx repository.Tx) error {
		event, err := tx.LockEvent(id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}

		if patch.TotalTickets != nil {
			available := event.AvailableTickets + *patch.TotalTickets - event.TotalTickets
			if available < 0 {
				return ErrTicketsAlreadyBooked.Withf(
					"Total tickets cannot be less than the %d already booked",
					event.BookedTickets(),
				)
			}
			event.TotalTickets = *patch.TotalTickets
			event.AvailableTickets = available
		}
		if patch.Title != nil {
			event.Title = strings.TrimSpace(*patch.Title)
			event.Slug = slug.Make(event.Title)
		}
		if patch.Description != nil {
			event.Description = *patch.Description
		}
		if patch.Date != nil {
			event.Date = patch.Date.UTC()
		}
		if patch.Venue != nil {
			event.Venue = strings.TrimSpace(*patch.Venue)
		}
		if patch.Price != nil {
			event.Price = *patch.Price
		}

		if err := tx.SaveEvent(event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the event together with all of its bookings.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.events.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return apperror.Persistence("Could not delete event", err)
	}
	log.Printf("event %s deleted", id)
	return nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, apperror.Persistence("Could not load event", err)
	}
	return event, nil
}

// ListAvailable returns upcoming events that still have tickets, soonest
// first.
func (s *EventService) ListAvailable(ctx context.Context, skip, limit int) ([]models.Event, error) {
	now := s.clock.Now()
	events, err := s.events.List(ctx, repository.EventFilter{AvailableOnly: true, StartsAfter: &now}, skip, limit)
	if err != nil {
		return nil, apperror.Persistence("Could not list events", err)
	}
	return events, nil
}

func (s *EventService) ListAll(ctx context.Context, skip, limit int) ([]models.Event, error) {
	events, err := s.events.List(ctx, repository.EventFilter{}, skip, limit)
	if err != nil {
		return nil, apperror.Persistence("Could not list events", err)
	}
	return events, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidEvent.Withf("Title is required")
	}
	return nil
}

func validateVenue(venue string) error {
	if strings.TrimSpace(venue) == "" {
		return ErrInvalidEvent.Withf("Venue is required")
	}
	return nil
}

func validateTotalTickets(total int) error {
	if total <= 0 {
		return ErrInvalidEvent.Withf("Total tickets must be greater than zero")
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return ErrInvalidEvent.Withf("Price must be a non-negative number")
	}
	return nil
}
