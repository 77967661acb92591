package handlers

import (
	"net/http"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/helpers"
	"github.com/farellandr/ticketbook/internal/middleware"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errEventIDMismatch = apperror.Validation("event_id_mismatch", "Event id in body does not match the path")

// BookingRequest may repeat the event id; when present it must match the
// path.
type BookingRequest struct {
	NumberOfTickets int        `json:"number_of_tickets"`
	EventID         *uuid.UUID `json:"event_id"`
}

type BookingHandler struct {
	bookings *services.BookingService
	reports  *services.ReportService
}

func NewBookingHandler(bookings *services.BookingService, reports *services.ReportService) *BookingHandler {
	return &BookingHandler{bookings: bookings, reports: reports}
}

func (h *BookingHandler) BookEvent(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}
	if req.EventID != nil && *req.EventID != eventID {
		helpers.RespondWithError(c, errEventIDMismatch)
		return
	}

	principal := middleware.GetPrincipal(c)
	booking, err := h.bookings.Book(c.Request.Context(), principal.UserID, eventID, req.NumberOfTickets)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	principal := middleware.GetPrincipal(c)
	booking, err := h.bookings.Cancel(c.Request.Context(), principal.UserID, eventID)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) History(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	history, err := h.reports.History(c.Request.Context(), principal.UserID)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	skip, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	bookings, err := h.reports.ListForAdmin(c.Request.Context(), skip, limit)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ListEventBookings(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	bookings, err := h.reports.ListForEvent(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
