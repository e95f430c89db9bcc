package service

import (
	"context"
	"strings"

	"eventhub/internal/catalog"
	"eventhub/internal/clock"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/metrics"
	"eventhub/internal/models"

	"github.com/shopspring/decimal"
)

// CatalogService answers read-only questions about the event collection.
type CatalogService struct {
	venues  VenueStore
	events  EventStore
	tickets TicketStore
	clock   clock.Clock
	cache   StatsCache
}

func NewCatalogService(stores Stores, clk clock.Clock, cache StatsCache) *CatalogService {
	return &CatalogService{
		venues:  stores.Venues,
		events:  stores.Events,
		tickets: stores.Tickets,
		clock:   clk,
		cache:   cache,
	}
}

// ListPaginated filters by venue name, sorts, and only then pages, so
// TotalCount always describes the filtered collection.
func (s *CatalogService) ListPaginated(ctx context.Context, q models.EventQuery) (*models.EventPage, error) {
	if q.Page < 1 {
		return nil, apperrors.Invalid("page", "must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > catalog.MaxPageSize {
		return nil, apperrors.Invalid("page_size", "must be between 1 and 100")
	}
	q.VenueName = strings.TrimSpace(q.VenueName)
	q.SortBy = catalog.NormalizeSort(q.SortBy)

	items, total, err := s.events.ListPage(ctx, q)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	return models.NewEventPage(responses(items), total, q.Page, q.PageSize), nil
}

// Upcoming lists events starting now or later, soonest first.
func (s *CatalogService) Upcoming(ctx context.Context) ([]models.EventResponse, error) {
	items, err := s.events.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return responses(items), nil
}

// MostPopular ranks events by tickets sold; ties go to the lower event id.
func (s *CatalogService) MostPopular(ctx context.Context, topN int) ([]models.PopularEvent, error) {
	if topN < 1 {
		return nil, apperrors.Invalid("top", "must be at least 1")
	}

	if cached, ok := s.cachedPopular(ctx, topN); ok {
		return cached, nil
	}

	rows, err := s.events.MostPopular(ctx, topN)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	result := make([]models.PopularEvent, len(rows))
	for i := range rows {
		result[i] = models.PopularEvent{
			EventResponse: rows[i].Response(),
			TicketsSold:   rows[i].TicketsSold,
		}
	}

	if err := s.cache.SetPopular(ctx, topN, result); err != nil {
		logger.WithContext(ctx).Warn("Failed to cache popular events", "error", err)
	}
	return result, nil
}

func (s *CatalogService) RevenueForEvent(ctx context.Context, eventID int64) (decimal.Decimal, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return decimal.Zero, err
	}
	revenue, err := s.tickets.RevenueByEvent(ctx, eventID)
	if err != nil {
		return decimal.Zero, apperrors.Storage(err)
	}
	return revenue, nil
}

func (s *CatalogService) TicketsSoldForEvent(ctx context.Context, eventID int64) (int64, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return 0, err
	}
	sold, err := s.tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, apperrors.Storage(err)
	}
	return sold, nil
}

// EventStats combines sales figures with the venue capacity.
func (s *CatalogService) EventStats(ctx context.Context, eventID int64) (*models.EventStats, error) {
	if cached, ok := s.cachedStats(ctx, eventID); ok {
		return cached, nil
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if event == nil {
		return nil, apperrors.NotFound("event", eventID)
	}
	venue, err := s.venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	sold, err := s.tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	revenue, err := s.tickets.RevenueByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	stats := &models.EventStats{EventID: eventID, TicketsSold: sold, Revenue: revenue}
	if venue != nil {
		stats.Capacity = venue.Capacity
		stats.Remaining = max(venue.Capacity-int(sold), 0)
	}

	if err := s.cache.SetEventStats(ctx, stats); err != nil {
		logger.WithContext(ctx).Warn("Failed to cache event stats", "error", err, "event_id", eventID)
	}
	return stats, nil
}

func (s *CatalogService) requireEvent(ctx context.Context, eventID int64) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return apperrors.Storage(err)
	}
	if event == nil {
		return apperrors.NotFound("event", eventID)
	}
	return nil
}

func (s *CatalogService) cachedStats(ctx context.Context, eventID int64) (*models.EventStats, bool) {
	stats, ok, err := s.cache.GetEventStats(ctx, eventID)
	return stats, s.cacheResult(ctx, ok, err)
}

func (s *CatalogService) cachedPopular(ctx context.Context, topN int) ([]models.PopularEvent, bool) {
	events, ok, err := s.cache.GetPopular(ctx, topN)
	return events, s.cacheResult(ctx, ok, err)
}

func (s *CatalogService) cacheResult(ctx context.Context, ok bool, err error) bool {
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WithContext(ctx).Warn("Stats cache lookup failed", "error", err)
		return false
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return true
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
}

func responses(items []models.EventWithVenue) []models.EventResponse {
	out := make([]models.EventResponse, len(items))
	for i := range items {
		out[i] = items[i].Response()
	}
	return out
}
