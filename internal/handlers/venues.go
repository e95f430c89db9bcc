package handlers

import (
	"net/http"
	"time"

	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateVenue - POST /api/venues
// Создать площадку
func (h *Handlers) CreateVenue(c *gin.Context) {
	var req models.VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	venue, err := h.services.Booking.CreateVenue(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create venue")
		return
	}

	c.JSON(http.StatusCreated, models.NewVenueSummary(venue))
}

// UpdateVenue - PUT /api/venues/:id
func (h *Handlers) UpdateVenue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	venue, err := h.services.Booking.UpdateVenue(c.Request.Context(), id, req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update venue")
		return
	}

	c.JSON(http.StatusOK, models.NewVenueSummary(venue))
}

// GetVenue - GET /api/venues/:id
// Площадка вместе с событиями
func (h *Handlers) GetVenue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Booking.GetVenueWithEvents(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get venue")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListVenues - GET /api/venues
func (h *Handlers) ListVenues(c *gin.Context) {
	venues, err := h.services.Booking.ListVenues(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to list venues")
		return
	}

	response := make([]models.VenueSummary, len(venues))
	for i := range venues {
		response[i] = models.NewVenueSummary(&venues[i])
	}
	c.JSON(http.StatusOK, response)
}

// VenueCapacity - GET /api/venues/:id/capacity
func (h *Handlers) VenueCapacity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	capacity, err := h.services.Booking.VenueCapacity(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get venue capacity")
		return
	}

	c.JSON(http.StatusOK, models.CapacityResponse{VenueID: id, Capacity: capacity})
}

// AvailableVenues - GET /api/venues/available?startTime=&endTime=
// Площадки без событий в окне [startTime, endTime)
func (h *Handlers) AvailableVenues(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("startTime"))
	if err != nil {
		badRequest(c, "startTime must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("endTime"))
	if err != nil {
		badRequest(c, "endTime must be an RFC 3339 timestamp")
		return
	}
	if !end.After(start) {
		badRequest(c, "endTime must be after startTime")
		return
	}

	venues, err := h.services.Booking.AvailableVenues(c.Request.Context(), start.UTC(), end.UTC())
	if err != nil {
		h.handleServiceError(c, err, "Failed to list available venues")
		return
	}

	response := make([]models.VenueSummary, len(venues))
	for i := range venues {
		response[i] = models.NewVenueSummary(&venues[i])
	}
	c.JSON(http.StatusOK, response)
}

// DeleteVenue - DELETE /api/venues/:id
func (h *Handlers) DeleteVenue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Booking.DeleteVenue(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete venue")
		return
	}

	c.Status(http.StatusNoContent)
}
