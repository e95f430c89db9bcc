package service

import (
	"context"
	"time"

	"eventhub/internal/clock"
	"eventhub/internal/logger"
	"eventhub/internal/metrics"
	"eventhub/internal/models"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type VenueStore interface {
	GetByID(ctx context.Context, id int64) (*models.Venue, error)
	Create(ctx context.Context, venue *models.Venue) error
	Update(ctx context.Context, venue *models.Venue) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]models.Venue, error)
	ListAvailable(ctx context.Context, start, end time.Time) ([]models.Venue, error)
	CountEvents(ctx context.Context, venueID int64) (int64, error)
}

type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByVenue(ctx context.Context, venueID int64) ([]models.Event, error)
	ListPage(ctx context.Context, q models.EventQuery) ([]models.EventWithVenue, int, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.EventWithVenue, error)
	MostPopular(ctx context.Context, topN int) ([]models.EventTicketCount, error)
}

type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	SeatTaken(ctx context.Context, eventID int64, seat string) (bool, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Ticket, error)
	CountByEvent(ctx context.Context, eventID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	RevenueByEvent(ctx context.Context, eventID int64) (decimal.Decimal, error)
}

// Stores groups the persistence ports. Both the Postgres repositories and
// memstore satisfy them.
type Stores struct {
	Users   UserStore
	Venues  VenueStore
	Events  EventStore
	Tickets TicketStore
}

// Publisher sends domain events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// StatsCache holds derived sales figures for a short time.
type StatsCache interface {
	GetEventStats(ctx context.Context, eventID int64) (*models.EventStats, bool, error)
	SetEventStats(ctx context.Context, stats *models.EventStats) error
	GetPopular(ctx context.Context, topN int) ([]models.PopularEvent, bool, error)
	SetPopular(ctx context.Context, topN int, events []models.PopularEvent) error
	InvalidateEvent(ctx context.Context, eventID int64) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type Deps struct {
	Stores    Stores
	Clock     clock.Clock
	Publisher Publisher
	Cache     StatsCache
	Hasher    PasswordHasher
	Tokens    TokenIssuer
}

type Services struct {
	Allocator    *SeatAllocator
	Availability *AvailabilityChecker
	Catalog      *CatalogService
	Booking      *BookingService
	Users        *UserService
}

func NewServices(d Deps) *Services {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Cache == nil {
		d.Cache = nopCache{}
	}

	allocator := NewSeatAllocator(d.Stores, clock.NewMonotonic(d.Clock), d.Publisher, d.Cache)
	availability := NewAvailabilityChecker(d.Stores.Venues)
	catalog := NewCatalogService(d.Stores, d.Clock, d.Cache)

	return &Services{
		Allocator:    allocator,
		Availability: availability,
		Catalog:      catalog,
		Booking:      NewBookingService(d.Stores, allocator, availability, catalog, d.Clock, d.Publisher, d.Cache),
		Users:        NewUserService(d.Stores, d.Hasher, d.Tokens, d.Clock, d.Publisher),
	}
}

// publish logs and counts failures; it never fails the caller.
func publish(ctx context.Context, p Publisher, subject string, data any) {
	if err := p.Publish(ctx, subject, data); err != nil {
		metrics.PublishFailures.WithLabelValues(subject).Inc()
		logger.WithContext(ctx).Error("Failed to publish domain event",
			"error", err,
			"subject", subject)
	}
}

func invalidate(ctx context.Context, c StatsCache, eventID int64) {
	if err := c.InvalidateEvent(ctx, eventID); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate stats cache",
			"error", err,
			"event_id", eventID)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopCache struct{}

func (nopCache) GetEventStats(context.Context, int64) (*models.EventStats, bool, error) {
	return nil, false, nil
}
func (nopCache) SetEventStats(context.Context, *models.EventStats) error { return nil }
func (nopCache) GetPopular(context.Context, int) ([]models.PopularEvent, bool, error) {
	return nil, false, nil
}
func (nopCache) SetPopular(context.Context, int, []models.PopularEvent) error { return nil }
func (nopCache) InvalidateEvent(context.Context, int64) error                 { return nil }
