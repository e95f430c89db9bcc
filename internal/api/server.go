package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/handlers"
	"eventhub/internal/logger"
	"eventhub/internal/metrics"
	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the already connected collaborators of the server.
type Dependencies struct {
	Services *service.Services
	Tokens   middleware.TokenParser
	// Search is nil when full-text search is disabled.
	Search handlers.EventSearcher
	Checks map[string]HealthCheck
	// Closers are closed in order by Cleanup.
	Closers []io.Closer
}

// Server представляет HTTP сервер API
type Server struct {
	router *gin.Engine
	config *config.Config
	deps   Dependencies
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())
	router.Use(middleware.Timeout(cfg.RequestTimeout()))

	server := &Server{
		router: router,
		config: cfg,
		deps:   deps,
	}

	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.deps.Services, s.deps.Search)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := s.router.Group("/api")
	{
		// Публичные эндпоинты
		api.POST("/users/register", h.Register)
		api.POST("/users/login", h.Login)
	}

	secured := api.Group("")
	secured.Use(middleware.JWTAuth(s.deps.Tokens))
	{
		users := secured.Group("/users")
		{
			users.GET("/:id", h.GetUser)
			users.GET("/role/:role", admin, h.UsersByRole)
			users.POST("/admin/create-user", admin, h.CreateUserByAdmin)
			users.POST("/:id/tickets", h.AssignTicket)
			users.DELETE("/:id", admin, h.DeleteUser)
		}

		venues := secured.Group("/venues")
		{
			venues.GET("", h.ListVenues)
			venues.GET("/available", h.AvailableVenues)
			venues.GET("/:id", h.GetVenue)
			venues.GET("/:id/capacity", h.VenueCapacity)
			venues.POST("", admin, h.CreateVenue)
			venues.PUT("/:id", admin, h.UpdateVenue)
			venues.DELETE("/:id", admin, h.DeleteVenue)
		}

		events := secured.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/upcoming", h.UpcomingEvents)
			events.GET("/popular", h.PopularEvents)
			events.GET("/search", h.SearchEvents)
			events.GET("/:id", h.GetEvent)
			events.GET("/:id/tickets", h.GetEventTickets)
			events.GET("/:id/stats", admin, h.GetEventStats)
			events.POST("", admin, h.CreateEvent)
			events.PUT("/:id", admin, h.UpdateEvent)
			events.DELETE("/:id", admin, h.DeleteEvent)
		}

		tickets := secured.Group("/tickets")
		{
			tickets.POST("/purchase", h.PurchaseTicket)
			tickets.GET("/event/:eventId", h.TicketsByEvent)
			tickets.GET("/event/:eventId/revenue", admin, h.EventRevenue)
			tickets.GET("/event/:eventId/sold", h.TicketsSold)
			tickets.GET("/event/:eventId/seat/:seat", h.SeatAvailability)
			tickets.GET("/user/:userId", h.TicketsByUser)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			logger.WithContext(ctx).Warn("Health check failed", "dependency", name, "error", err)
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "eventhub-api",
		"checks":  checks,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	var errs []error
	for _, c := range s.deps.Closers {
		if err := c.Close(); err != nil {
			logger.Get().Error("Error closing dependency", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
