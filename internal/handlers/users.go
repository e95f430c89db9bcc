package handlers

import (
	"net/http"

	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/users/register
// Зарегистрировать посетителя
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Users.Register(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login - POST /api/users/login
// Войти и получить токен
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Users.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser - GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UsersByRole - GET /api/users/role/:role
// Получить пользователей с указанной ролью
func (h *Handlers) UsersByRole(c *gin.Context) {
	response, err := h.services.Users.UsersByRole(c.Request.Context(), models.Role(c.Param("role")))
	if err != nil {
		h.handleServiceError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateUserByAdmin - POST /api/users/admin/create-user
// Создать пользователя с произвольной ролью
func (h *Handlers) CreateUserByAdmin(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Users.CreateUserByAdmin(c.Request.Context(), adminID, req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// AssignTicket - POST /api/users/:id/tickets
// Купить билет для пользователя
func (h *Handlers) AssignTicket(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok || !requireSelfOrAdmin(c, userID) {
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	response, err := h.services.Booking.AssignTicket(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to assign ticket")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// DeleteUser - DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Users.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
