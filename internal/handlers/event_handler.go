package handlers

import (
	"net/http"
	"time"

	"github.com/farellandr/ticketbook/internal/helpers"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/gin-gonic/gin"
)

type EventRequest struct {
	Title        string            `json:"title" binding:"required,notblank"`
	Description  string            `json:"description"`
	Date         *models.Timestamp `json:"date" binding:"required"`
	Venue        string            `json:"venue" binding:"required,notblank"`
	TotalTickets int               `json:"total_tickets" binding:"required,gt=0"`
	Price        *float64          `json:"price" binding:"required,gte=0"`
}

// EventUpdateRequest is a partial update; omitted fields keep their value.
type EventUpdateRequest struct {
	Title        *string           `json:"title" binding:"omitempty,notblank"`
	Description  *string           `json:"description"`
	Date         *models.Timestamp `json:"date"`
	Venue        *string           `json:"venue" binding:"omitempty,notblank"`
	TotalTickets *int              `json:"total_tickets" binding:"omitempty,gt=0"`
	Price        *float64          `json:"price" binding:"omitempty,gte=0"`
}

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents lists upcoming events that still have tickets.
func (h *EventHandler) ListEvents(c *gin.Context) {
	skip, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	events, err := h.events.ListAvailable(c.Request.Context(), skip, limit)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListAllEvents lists every event, past and sold out included.
func (h *EventHandler) ListAllEvents(c *gin.Context) {
	skip, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	events, err := h.events.ListAll(c.Request.Context(), skip, limit)
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	event, err := h.events.Create(c.Request.Context(), models.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date.Time,
		Venue:        req.Venue,
		TotalTickets: req.TotalTickets,
		Price:        *req.Price,
	})
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	var date *time.Time
	if req.Date != nil {
		date = &req.Date.Time
	}

	event, err := h.events.Update(c.Request.Context(), id, models.EventPatch{
		Title:        req.Title,
		Description:  req.Description,
		Date:         date,
		Venue:        req.Venue,
		TotalTickets: req.TotalTickets,
		Price:        req.Price,
	})
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
