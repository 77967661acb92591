package services

import "github.com/farellandr/ticketbook/internal/apperror"

// Sentinel errors returned by the services. Compare with errors.Is; the
// returned value may carry a more specific message than the sentinel.
var (
	ErrInvalidEmail       = apperror.Validation("invalid_email", "A valid email address is required")
	ErrEmptyPassword      = apperror.Validation("empty_password", "Password is required")
	ErrPasswordTooLong    = apperror.Validation("password_too_long", "Password must be at most 72 bytes")
	ErrDuplicateEmail     = apperror.Validation("duplicate_email", "Email already registered")
	ErrInvalidCredentials = apperror.Authentication("invalid_credentials", "Incorrect email or password")
	ErrInvalidToken       = apperror.Authentication("invalid_token", "Could not validate credentials")
	ErrTokenExpired       = apperror.Authentication("token_expired", "Token has expired")

	ErrInvalidEvent         = apperror.Validation("invalid_event", "Invalid event")
	ErrPastDate             = apperror.Validation("past_date", "Event date must be in the future")
	ErrEventNotFound        = apperror.NotFound("event_not_found", "Event not found")
	ErrTicketsAlreadyBooked = apperror.Conflict("tickets_already_booked", "Total tickets cannot be less than tickets already booked")

	ErrInvalidTicketCount  = apperror.Validation("invalid_ticket_count", "Number of tickets must be greater than zero")
	ErrEventInPast         = apperror.Conflict("event_in_past", "Cannot book tickets for past events")
	ErrAlreadyBooked       = apperror.Conflict("already_booked", "You already have a booking for this event")
	ErrInsufficientTickets = apperror.Conflict("insufficient_tickets", "Not enough tickets available")
	ErrBookingNotFound     = apperror.NotFound("booking_not_found", "Booking not found")
)
