package services

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/repository"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Transactor. A transaction holds the store
// mutex for its whole duration and restores the previous state when fn
// fails.
type fakeStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]models.Event
	bookings map[uuid.UUID]models.Booking

	// conflicts aborts that many upcoming transactions after fn succeeds,
	// as a serialization failure would.
	conflicts int
	attempts  int
}

func newFakeStore(events ...models.Event) *fakeStore {
	s := &fakeStore{
		events:   map[uuid.UUID]models.Event{},
		bookings: map[uuid.UUID]models.Booking{},
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *fakeStore) Transaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++

	events := maps.Clone(s.events)
	bookings := maps.Clone(s.bookings)

	err := fn(&fakeTx{s: s})
	if err == nil && s.conflicts > 0 {
		s.conflicts--
		err = fmt.Errorf("%w: could not serialize access due to concurrent update", repository.ErrTxConflict)
	}
	if err != nil {
		s.events = events
		s.bookings = bookings
	}
	return err
}

func (s *fakeStore) event(id uuid.UUID) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *fakeStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) LockEvent(id uuid.UUID) (*models.Event, error) {
	event, ok := t.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &event, nil
}

func (t *fakeTx) SaveEvent(event *models.Event) error {
	if _, ok := t.s.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	t.s.events[event.ID] = *event
	return nil
}

func (t *fakeTx) SetAvailableTickets(eventID uuid.UUID, available int) error {
	event, ok := t.s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	event.AvailableTickets = available
	t.s.events[eventID] = event
	return nil
}

func (t *fakeTx) FindUserBooking(userID, eventID uuid.UUID) (*models.Booking, error) {
	for _, b := range t.s.bookings {
		if b.UserID == userID && b.EventID == eventID {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *fakeTx) InsertBooking(booking *models.Booking) error {
	if _, err := t.FindUserBooking(booking.UserID, booking.EventID); err == nil {
		return repository.ErrDuplicate
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	t.s.bookings[booking.ID] = *booking
	return nil
}

func (t *fakeTx) DeleteBooking(id uuid.UUID) error {
	if _, ok := t.s.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.s.bookings, id)
	return nil
}
