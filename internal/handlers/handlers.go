package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

// EventSearcher answers full-text queries over the event catalog.
type EventSearcher interface {
	Search(ctx context.Context, query string, page, pageSize int) (*models.SearchResponse, error)
}

type Handlers struct {
	services *service.Services
	search   EventSearcher
}

// NewHandlers creates handlers. search may be nil when Elasticsearch is disabled.
func NewHandlers(services *service.Services, search EventSearcher) *Handlers {
	return &Handlers{
		services: services,
		search:   search,
	}
}

// handleServiceError переводит ошибку сервиса в HTTP ответ
func (h *Handlers) handleServiceError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindInvalidInput:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusForbidden
		if errors.Is(err, apperrors.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
	}

	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(msg, "error", errors.Unwrap(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	logger.WithContext(c.Request.Context()).Debug(msg, "error", err, "status", status)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID читает положительный целочисленный параметр пути
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt читает целочисленный query параметр со значением по умолчанию
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}

// currentUser returns the authenticated user id and whether they are an admin.
func currentUser(c *gin.Context) (int64, bool, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false, false
	}
	role, _ := middleware.Role(c)
	return id, role == models.RoleAdmin, true
}

// requireSelfOrAdmin lets a user act on their own account, and admins on any.
func requireSelfOrAdmin(c *gin.Context, userID int64) bool {
	id, admin, ok := currentUser(c)
	if !ok {
		return false
	}
	if !admin && id != userID {
		slog.Debug("Forbidden cross-user access", "user_id", id, "target_user_id", userID)
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}
