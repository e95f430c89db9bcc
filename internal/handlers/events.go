package handlers

import (
	"net/http"

	"eventhub/internal/catalog"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultPopularTop = 5

// Events handlers

// CreateEvent - POST /api/events
// Создать событие
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Booking.CreateEvent(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// UpdateEvent - PUT /api/events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Booking.UpdateEvent(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteEvent - DELETE /api/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Booking.DeleteEvent(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete event")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListEvents - GET /api/events?page=&pageSize=&venueName=&sortBy=
// Получить страницу каталога событий
func (h *Handlers) ListEvents(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize", catalog.DefaultPageSize)
	if !ok {
		return
	}

	response, err := h.services.Booking.ListEvents(c.Request.Context(), models.EventQuery{
		Page:      page,
		PageSize:  pageSize,
		VenueName: c.Query("venueName"),
		SortBy:    c.Query("sortBy"),
	})
	if err != nil {
		h.handleServiceError(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpcomingEvents - GET /api/events/upcoming
func (h *Handlers) UpcomingEvents(c *gin.Context) {
	response, err := h.services.Booking.UpcomingEvents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to list upcoming events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// PopularEvents - GET /api/events/popular?top=N
// Самые продаваемые события
func (h *Handlers) PopularEvents(c *gin.Context) {
	top, ok := queryInt(c, "top", defaultPopularTop)
	if !ok {
		return
	}

	response, err := h.services.Booking.PopularEvents(c.Request.Context(), top)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list popular events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchEvents - GET /api/events/search?q=&page=&pageSize=
// Полнотекстовый поиск по названию и площадке
func (h *Handlers) SearchEvents(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is disabled"})
		return
	}

	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize", catalog.DefaultPageSize)
	if !ok {
		return
	}
	if page < 1 {
		badRequest(c, "page must be >= 1")
		return
	}
	if pageSize < 1 || pageSize > catalog.MaxPageSize {
		badRequest(c, "pageSize must be between 1 and 100")
		return
	}

	response, err := h.search.Search(c.Request.Context(), c.Query("q"), page, pageSize)
	if err != nil {
		h.handleServiceError(c, err, "Failed to search events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Booking.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEventTickets - GET /api/events/:id/tickets
// Событие вместе с проданными билетами
func (h *Handlers) GetEventTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Booking.GetEventWithTickets(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event tickets")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEventStats - GET /api/events/:id/stats
// Получить аналитику продаж для события
func (h *Handlers) GetEventStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.services.Booking.EventStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":     stats.EventID,
		"tickets_sold": stats.TicketsSold,
		"revenue":      models.FormatMoney(stats.Revenue),
		"capacity":     stats.Capacity,
		"remaining":    stats.Remaining,
	})
}
