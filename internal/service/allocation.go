package service

import (
	"context"
	"errors"

	"eventhub/internal/clock"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/metrics"
	"eventhub/internal/models"
	"eventhub/internal/repository"
)

// SeatAllocator sells seats. The storage-level unique index on (event, seat)
// decides every race; the pre-checks only produce friendlier early answers.
type SeatAllocator struct {
	users     UserStore
	venues    VenueStore
	events    EventStore
	tickets   TicketStore
	clock     clock.Clock
	publisher Publisher
	cache     StatsCache
}

func NewSeatAllocator(stores Stores, clk clock.Clock, publisher Publisher, cache StatsCache) *SeatAllocator {
	return &SeatAllocator{
		users:     stores.Users,
		venues:    stores.Venues,
		events:    stores.Events,
		tickets:   stores.Tickets,
		clock:     clk,
		publisher: publisher,
		cache:     cache,
	}
}

func (s *SeatAllocator) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.Ticket, error) {
	seat := models.NormalizeSeat(req.SeatNumber)
	if err := validatePurchase(req, seat); err != nil {
		metrics.PurchaseRejections.WithLabelValues("invalid").Inc()
		return nil, err
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if event == nil {
		metrics.PurchaseRejections.WithLabelValues("not_found").Inc()
		return nil, apperrors.NotFound("event", req.EventID)
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil {
		metrics.PurchaseRejections.WithLabelValues("not_found").Inc()
		return nil, apperrors.NotFound("user", req.UserID)
	}

	taken, err := s.tickets.SeatTaken(ctx, event.ID, seat)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if taken {
		return nil, seatTaken(seat, event.ID)
	}

	if err := s.checkCapacity(ctx, event); err != nil {
		// The last seat may have gone to a racing buyer of this same seat.
		if apperrors.Is(err, apperrors.KindConflict) {
			if taken, terr := s.tickets.SeatTaken(ctx, event.ID, seat); terr == nil && taken {
				return nil, seatTaken(seat, event.ID)
			}
		}
		return nil, err
	}

	ticket := &models.Ticket{
		EventID:     event.ID,
		UserID:      user.ID,
		SeatNumber:  seat,
		Price:       req.Price,
		PurchasedAt: s.clock.Now(),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return nil, seatTaken(seat, event.ID)
		case errors.Is(err, repository.ErrForeignKey):
			metrics.PurchaseRejections.WithLabelValues("not_found").Inc()
			if repository.ConstraintOf(err) == repository.ConstraintTicketUser {
				return nil, apperrors.NotFound("user", user.ID)
			}
			return nil, apperrors.NotFound("event", event.ID)
		default:
			return nil, apperrors.Storage(err)
		}
	}

	metrics.TicketsPurchased.Inc()
	logger.WithContext(ctx).Info("Ticket purchased",
		"ticket_id", ticket.ID,
		"event_id", ticket.EventID,
		"user_id", ticket.UserID,
		"seat", ticket.SeatNumber)

	invalidate(ctx, s.cache, event.ID)
	publish(ctx, s.publisher, models.SubjectTicketPurchased, models.TicketPurchasedEvent{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		UserID:     ticket.UserID,
		SeatNumber: ticket.SeatNumber,
		Price:      models.FormatMoney(ticket.Price),
		Timestamp:  ticket.PurchasedAt,
	})

	return ticket, nil
}

// checkCapacity refuses a sale once the venue is full. It is advisory: two
// racing buyers of different seats can both pass it on the last free seat.
func (s *SeatAllocator) checkCapacity(ctx context.Context, event *models.Event) error {
	venue, err := s.venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return apperrors.Storage(err)
	}
	if venue == nil {
		return nil
	}

	sold, err := s.tickets.CountByEvent(ctx, event.ID)
	if err != nil {
		return apperrors.Storage(err)
	}
	if sold >= int64(venue.Capacity) {
		metrics.PurchaseRejections.WithLabelValues("sold_out").Inc()
		return apperrors.Conflict("event %d is sold out", event.ID)
	}
	return nil
}

func validatePurchase(req models.PurchaseRequest, seat string) error {
	if req.EventID <= 0 {
		return apperrors.Invalid("event_id", "must be greater than 0")
	}
	if req.UserID <= 0 {
		return apperrors.Invalid("user_id", "must be greater than 0")
	}
	if err := models.ValidateSeat(seat); err != nil {
		return err
	}
	return models.ValidatePrice(req.Price)
}

func seatTaken(seat string, eventID int64) error {
	metrics.PurchaseRejections.WithLabelValues("seat_taken").Inc()
	return apperrors.Conflict("Seat %s is already taken for event %d", seat, eventID)
}
