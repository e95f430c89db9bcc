package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/metrics"
	"eventhub/internal/models"
	"eventhub/internal/search"

	"github.com/nats-io/stan.go"
)

const handleTimeout = 10 * time.Second

type EventLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

type VenueLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Venue, error)
}

// Indexer keeps the search index in step with the catalog.
type Indexer interface {
	IndexEvent(ctx context.Context, doc models.EventDocument) error
	DeleteEvent(ctx context.Context, id int64) error
}

type Invalidator interface {
	InvalidateEvent(ctx context.Context, eventID int64) error
}

// Handlers react to domain events. indexer and cache are optional.
type Handlers struct {
	events  EventLookup
	venues  VenueLookup
	indexer Indexer
	cache   Invalidator
}

func NewHandlers(events EventLookup, venues VenueLookup, indexer Indexer, cache Invalidator) *Handlers {
	return &Handlers{
		events:  events,
		venues:  venues,
		indexer: indexer,
		cache:   cache,
	}
}

// EventChanged reindexes an event from its current stored state. An event
// that is gone by the time the message arrives is removed from the index.
func (h *Handlers) EventChanged(ctx context.Context, data []byte) error {
	var msg models.EventChangedEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal event changed: %w", err)
	}

	if err := h.invalidate(ctx, msg.EventID); err != nil {
		return err
	}
	if h.indexer == nil {
		return nil
	}

	event, err := h.events.GetByID(ctx, msg.EventID)
	if err != nil {
		return fmt.Errorf("load event %d: %w", msg.EventID, err)
	}
	if event == nil {
		return h.indexer.DeleteEvent(ctx, msg.EventID)
	}

	venueName := ""
	venue, err := h.venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return fmt.Errorf("load venue %d: %w", event.VenueID, err)
	}
	if venue != nil {
		venueName = venue.Name
	}

	slog.Debug("Reindexing event", "event_id", event.ID, "venue_id", event.VenueID)
	return h.indexer.IndexEvent(ctx, search.NewEventDocument(event, venueName))
}

func (h *Handlers) EventDeleted(ctx context.Context, data []byte) error {
	var msg models.EventDeletedEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal event deleted: %w", err)
	}

	if err := h.invalidate(ctx, msg.EventID); err != nil {
		return err
	}
	if h.indexer == nil {
		return nil
	}
	return h.indexer.DeleteEvent(ctx, msg.EventID)
}

// TicketPurchased drops cached stats for the event so other API replicas
// see the sale.
func (h *Handlers) TicketPurchased(ctx context.Context, data []byte) error {
	var msg models.TicketPurchasedEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal ticket purchased: %w", err)
	}

	slog.Info("Processing ticket purchased event",
		"ticket_id", msg.TicketID,
		"event_id", msg.EventID,
		"seat", msg.SeatNumber)
	return h.invalidate(ctx, msg.EventID)
}

func (h *Handlers) invalidate(ctx context.Context, eventID int64) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.InvalidateEvent(ctx, eventID); err != nil {
		return fmt.Errorf("invalidate event %d: %w", eventID, err)
	}
	return nil
}

// ackOnSuccess adapts a handler to a manual-ack subscription. Failed
// messages stay unacked and are redelivered after AckWait.
func ackOnSuccess(subject string, fn func(ctx context.Context, data []byte) error) stan.MsgHandler {
	return func(m *stan.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()

		if err := fn(ctx, m.Data); err != nil {
			metrics.ConsumedMessages.WithLabelValues(subject, "error").Inc()
			slog.Error("Failed to handle message",
				"subject", subject,
				"sequence", m.Sequence,
				"redelivered", m.Redelivered,
				"error", err)
			return
		}

		metrics.ConsumedMessages.WithLabelValues(subject, "ok").Inc()
		if err := m.Ack(); err != nil {
			slog.Error("Failed to ack message", "subject", subject, "sequence", m.Sequence, "error", err)
		}
	}
}
