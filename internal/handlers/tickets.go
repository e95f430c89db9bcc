package handlers

import (
	"net/http"

	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

// PurchaseTicket - POST /api/tickets/purchase
// Купить билет. Покупатель берется из токена; администратор может указать user_id.
func (h *Handlers) PurchaseTicket(c *gin.Context) {
	userID, admin, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !admin || req.UserID == 0 {
		req.UserID = userID
	}

	response, err := h.services.Booking.Purchase(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to purchase ticket")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// TicketsByEvent - GET /api/tickets/event/:eventId
func (h *Handlers) TicketsByEvent(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}

	response, err := h.services.Booking.TicketsByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list event tickets")
		return
	}

	c.JSON(http.StatusOK, response)
}

// TicketsByUser - GET /api/tickets/user/:userId
func (h *Handlers) TicketsByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok || !requireSelfOrAdmin(c, userID) {
		return
	}

	response, err := h.services.Booking.TicketsByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list user tickets")
		return
	}

	c.JSON(http.StatusOK, response)
}

// EventRevenue - GET /api/tickets/event/:eventId/revenue
// Выручка по событию
func (h *Handlers) EventRevenue(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}

	response, err := h.services.Booking.RevenueForEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get revenue")
		return
	}

	c.JSON(http.StatusOK, response)
}

// TicketsSold - GET /api/tickets/event/:eventId/sold
func (h *Handlers) TicketsSold(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}

	sold, err := h.services.Booking.TicketsSoldForEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to count tickets")
		return
	}

	c.JSON(http.StatusOK, models.TicketsSoldResponse{EventID: eventID, TicketsSold: sold})
}

// SeatAvailability - GET /api/tickets/event/:eventId/seat/:seat
// Проверить, свободно ли место
func (h *Handlers) SeatAvailability(c *gin.Context) {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}
	seat := models.NormalizeSeat(c.Param("seat"))

	available, err := h.services.Booking.SeatAvailable(c.Request.Context(), eventID, seat)
	if err != nil {
		h.handleServiceError(c, err, "Failed to check seat")
		return
	}

	c.JSON(http.StatusOK, models.SeatAvailabilityResponse{
		EventID:    eventID,
		SeatNumber: seat,
		Available:  available,
	})
}
