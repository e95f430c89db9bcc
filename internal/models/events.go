package models

import "time"

// Domain event subjects
const (
	SubjectVenueCreated    = "venue.created"
	SubjectEventCreated    = "event.created"
	SubjectEventUpdated    = "event.updated"
	SubjectEventDeleted    = "event.deleted"
	SubjectTicketPurchased = "ticket.purchased"
	SubjectUserRegistered  = "user.registered"
)

// VenueCreatedEvent represents a venue creation event
type VenueCreatedEvent struct {
	VenueID   int64     `json:"venue_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Timestamp time.Time `json:"timestamp"`
}

// EventChangedEvent is published for event.created and event.updated
type EventChangedEvent struct {
	EventID   int64     `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	VenueID   int64     `json:"venue_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDeletedEvent represents an event deletion
type EventDeletedEvent struct {
	EventID   int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketPurchasedEvent represents a successful seat allocation
type TicketPurchasedEvent struct {
	TicketID   int64     `json:"ticket_id"`
	EventID    int64     `json:"event_id"`
	UserID     int64     `json:"user_id"`
	SeatNumber string    `json:"seat_number"`
	Price      string    `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserRegisteredEvent represents a new account
type UserRegisteredEvent struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventChanged(e *Event, at time.Time) EventChangedEvent {
	return EventChangedEvent{
		EventID:   e.ID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		VenueID:   e.VenueID,
		Timestamp: at,
	}
}
