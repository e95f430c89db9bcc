package service

import (
	"context"
	"errors"
	"time"

	"eventhub/internal/clock"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/repository"
)

// BookingService is the entry point the HTTP layer talks to. It manages
// venues and events and delegates seat sales, availability and catalog reads.
type BookingService struct {
	users        UserStore
	venues       VenueStore
	events       EventStore
	tickets      TicketStore
	allocator    *SeatAllocator
	availability *AvailabilityChecker
	catalog      *CatalogService
	clock        clock.Clock
	publisher    Publisher
	cache        StatsCache
}

func NewBookingService(stores Stores, allocator *SeatAllocator, availability *AvailabilityChecker, catalog *CatalogService, clk clock.Clock, publisher Publisher, cache StatsCache) *BookingService {
	return &BookingService{
		users:        stores.Users,
		venues:       stores.Venues,
		events:       stores.Events,
		tickets:      stores.Tickets,
		allocator:    allocator,
		availability: availability,
		catalog:      catalog,
		clock:        clk,
		publisher:    publisher,
		cache:        cache,
	}
}

// Venues

func (s *BookingService) CreateVenue(ctx context.Context, req models.VenueRequest) (*models.Venue, error) {
	venue := req.Venue()
	if err := venue.Validate(); err != nil {
		return nil, err
	}

	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, apperrors.Storage(err)
	}

	logger.WithContext(ctx).Info("Venue created", "venue_id", venue.ID, "capacity", venue.Capacity)
	publish(ctx, s.publisher, models.SubjectVenueCreated, models.VenueCreatedEvent{
		VenueID:   venue.ID,
		Name:      venue.Name,
		Capacity:  venue.Capacity,
		Timestamp: s.clock.Now(),
	})
	return venue, nil
}

func (s *BookingService) UpdateVenue(ctx context.Context, id int64, req models.VenueRequest) (*models.Venue, error) {
	venue := req.Venue()
	venue.ID = id
	if err := venue.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.venues.Update(ctx, venue)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if !ok {
		return nil, apperrors.NotFound("venue", id)
	}

	// Cached stats carry the venue capacity and popular lists carry its name.
	events, err := s.events.ListByVenue(ctx, id)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to list venue events for cache invalidation",
			"error", err,
			"venue_id", id)
		return venue, nil
	}
	for _, e := range events {
		invalidate(ctx, s.cache, e.ID)
	}
	return venue, nil
}

func (s *BookingService) GetVenue(ctx context.Context, id int64) (*models.Venue, error) {
	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if venue == nil {
		return nil, apperrors.NotFound("venue", id)
	}
	return venue, nil
}

func (s *BookingService) ListVenues(ctx context.Context) ([]models.Venue, error) {
	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return venues, nil
}

func (s *BookingService) GetVenueWithEvents(ctx context.Context, id int64) (*models.VenueWithEvents, error) {
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByVenue(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	result := &models.VenueWithEvents{
		VenueSummary: models.NewVenueSummary(venue),
		Events:       make([]models.EventResponse, len(events)),
	}
	for i := range events {
		result.Events[i] = models.NewEventResponse(&events[i], venue)
	}
	return result, nil
}

func (s *BookingService) VenueCapacity(ctx context.Context, id int64) (int, error) {
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return 0, err
	}
	return venue.Capacity, nil
}

// DeleteVenue refuses while the venue still has events.
func (s *BookingService) DeleteVenue(ctx context.Context, id int64) error {
	if _, err := s.GetVenue(ctx, id); err != nil {
		return err
	}

	hosted, err := s.venues.CountEvents(ctx, id)
	if err != nil {
		return apperrors.Storage(err)
	}
	if hosted > 0 {
		return apperrors.Conflict("venue %d still hosts %d events", id, hosted)
	}

	ok, err := s.venues.Delete(ctx, id)
	if errors.Is(err, repository.ErrForeignKey) {
		return apperrors.Conflict("venue %d still hosts events", id)
	}
	if err != nil {
		return apperrors.Storage(err)
	}
	if !ok {
		return apperrors.NotFound("venue", id)
	}
	return nil
}

func (s *BookingService) AvailableVenues(ctx context.Context, start, end time.Time) ([]models.Venue, error) {
	return s.availability.AvailableVenues(ctx, start, end)
}

// Events

func (s *BookingService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.EventResponse, error) {
	event := req.Event()
	if err := event.Validate(); err != nil {
		return nil, err
	}
	venue, err := s.GetVenue(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, apperrors.NotFound("venue", event.VenueID)
		}
		return nil, apperrors.Storage(err)
	}

	logger.WithContext(ctx).Info("Event created", "event_id", event.ID, "venue_id", event.VenueID)
	invalidate(ctx, s.cache, event.ID)
	publish(ctx, s.publisher, models.SubjectEventCreated, models.NewEventChanged(event, s.clock.Now()))

	resp := models.NewEventResponse(event, venue)
	return &resp, nil
}

// UpdateEvent replaces the event's fields in place. Re-pointing to another
// venue requires that venue to exist.
func (s *BookingService) UpdateEvent(ctx context.Context, id int64, req models.EventRequest) (*models.EventResponse, error) {
	event := req.Event()
	event.ID = id
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireEvent(ctx, id); err != nil {
		return nil, err
	}
	venue, err := s.GetVenue(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}

	ok, err := s.events.Update(ctx, event)
	if errors.Is(err, repository.ErrForeignKey) {
		return nil, apperrors.NotFound("venue", event.VenueID)
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if !ok {
		return nil, apperrors.NotFound("event", id)
	}

	invalidate(ctx, s.cache, id)
	publish(ctx, s.publisher, models.SubjectEventUpdated, models.NewEventChanged(event, s.clock.Now()))

	resp := models.NewEventResponse(event, venue)
	return &resp, nil
}

func (s *BookingService) GetEvent(ctx context.Context, id int64) (*models.EventResponse, error) {
	event, err := s.requireEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	venue, err := s.GetVenue(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}
	resp := models.NewEventResponse(event, venue)
	return &resp, nil
}

func (s *BookingService) GetEventWithTickets(ctx context.Context, id int64) (*models.EventWithTickets, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	tickets, err := s.TicketsByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EventWithTickets{EventResponse: *event, Tickets: tickets}, nil
}

// DeleteEvent refuses while tickets exist for the event.
func (s *BookingService) DeleteEvent(ctx context.Context, id int64) error {
	if _, err := s.requireEvent(ctx, id); err != nil {
		return err
	}

	sold, err := s.tickets.CountByEvent(ctx, id)
	if err != nil {
		return apperrors.Storage(err)
	}
	if sold > 0 {
		return apperrors.Conflict("event %d has %d tickets", id, sold)
	}

	ok, err := s.events.Delete(ctx, id)
	if errors.Is(err, repository.ErrForeignKey) {
		return apperrors.Conflict("event %d has tickets", id)
	}
	if err != nil {
		return apperrors.Storage(err)
	}
	if !ok {
		return apperrors.NotFound("event", id)
	}

	invalidate(ctx, s.cache, id)
	publish(ctx, s.publisher, models.SubjectEventDeleted, models.EventDeletedEvent{
		EventID:   id,
		Timestamp: s.clock.Now(),
	})
	return nil
}

func (s *BookingService) ListEvents(ctx context.Context, q models.EventQuery) (*models.EventPage, error) {
	return s.catalog.ListPaginated(ctx, q)
}

func (s *BookingService) UpcomingEvents(ctx context.Context) ([]models.EventResponse, error) {
	return s.catalog.Upcoming(ctx)
}

func (s *BookingService) PopularEvents(ctx context.Context, topN int) ([]models.PopularEvent, error) {
	return s.catalog.MostPopular(ctx, topN)
}

func (s *BookingService) EventStats(ctx context.Context, id int64) (*models.EventStats, error) {
	return s.catalog.EventStats(ctx, id)
}

// Tickets

func (s *BookingService) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.TicketResponse, error) {
	ticket, err := s.allocator.Purchase(ctx, req)
	if err != nil {
		return nil, err
	}
	views, err := s.ticketResponses(ctx, []models.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// AssignTicket sells a seat on behalf of userID, ignoring any user in the request.
func (s *BookingService) AssignTicket(ctx context.Context, userID int64, req models.PurchaseRequest) (*models.TicketResponse, error) {
	req.UserID = userID
	return s.Purchase(ctx, req)
}

func (s *BookingService) TicketsByEvent(ctx context.Context, eventID int64) ([]models.TicketResponse, error) {
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return s.ticketResponses(ctx, tickets)
}

func (s *BookingService) TicketsByUser(ctx context.Context, userID int64) ([]models.TicketResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user", userID)
	}
	tickets, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return s.ticketResponses(ctx, tickets)
}

func (s *BookingService) SeatAvailable(ctx context.Context, eventID int64, seat string) (bool, error) {
	seat = models.NormalizeSeat(seat)
	if err := models.ValidateSeat(seat); err != nil {
		return false, err
	}
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return false, err
	}
	taken, err := s.tickets.SeatTaken(ctx, eventID, seat)
	if err != nil {
		return false, apperrors.Storage(err)
	}
	return !taken, nil
}

func (s *BookingService) RevenueForEvent(ctx context.Context, eventID int64) (*models.RevenueResponse, error) {
	revenue, err := s.catalog.RevenueForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &models.RevenueResponse{EventID: eventID, Revenue: models.FormatMoney(revenue)}, nil
}

func (s *BookingService) TicketsSoldForEvent(ctx context.Context, eventID int64) (int64, error) {
	return s.catalog.TicketsSoldForEvent(ctx, eventID)
}

func (s *BookingService) requireEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if event == nil {
		return nil, apperrors.NotFound("event", id)
	}
	return event, nil
}

// ticketResponses resolves owners, events and venues once per distinct id.
func (s *BookingService) ticketResponses(ctx context.Context, tickets []models.Ticket) ([]models.TicketResponse, error) {
	users := map[int64]*models.User{}
	events := map[int64]*models.Event{}
	venues := map[int64]*models.Venue{}

	out := make([]models.TicketResponse, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]

		user, ok := users[t.UserID]
		if !ok {
			u, err := s.users.GetByID(ctx, t.UserID)
			if err != nil {
				return nil, apperrors.Storage(err)
			}
			if u == nil {
				return nil, apperrors.NotFound("user", t.UserID)
			}
			user, users[t.UserID] = u, u
		}

		event, ok := events[t.EventID]
		if !ok {
			e, err := s.requireEvent(ctx, t.EventID)
			if err != nil {
				return nil, err
			}
			event, events[t.EventID] = e, e
		}

		venue, ok := venues[event.VenueID]
		if !ok {
			v, err := s.GetVenue(ctx, event.VenueID)
			if err != nil {
				return nil, err
			}
			venue, venues[event.VenueID] = v, v
		}

		out = append(out, models.NewTicketResponse(t, user, event, venue))
	}
	return out, nil
}
