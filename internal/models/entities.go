package models

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "eventhub/internal/errors"

	"github.com/shopspring/decimal"
)

const (
	MaxUserNameLength    = 50
	MinPasswordLength    = 6
	MaxVenueNameLength   = 100
	MaxAddressLength     = 200
	MaxEventTitleLength  = 100
	MaxSeatNumberLength  = 10
	MaxPriceFractionDigs = 2
)

// MaxPrice is the largest value the tickets.price NUMERIC(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// Role of a user. Stored as text.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleAttendee Role = "Attendee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAttendee
}

// User represents an account in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Venue represents a place that hosts events
type Venue struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Address  string `json:"address" db:"address"`
	Capacity int    `json:"capacity" db:"capacity"`
}

func (v *Venue) Validate() error {
	if err := requireText("name", v.Name, MaxVenueNameLength); err != nil {
		return err
	}
	if err := requireText("address", v.Address, MaxAddressLength); err != nil {
		return err
	}
	if v.Capacity <= 0 {
		return apperrors.Invalid("capacity", "must be greater than 0")
	}
	return nil
}

// Event is a time window at exactly one venue. The venue is referenced by id only.
type Event struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	VenueID   int64     `json:"venue_id" db:"venue_id"`
}

func (e *Event) Validate() error {
	if err := requireText("title", e.Title, MaxEventTitleLength); err != nil {
		return err
	}
	if e.StartTime.IsZero() {
		return apperrors.Invalid("start_time", "is required")
	}
	if e.EndTime.IsZero() {
		return apperrors.Invalid("end_time", "is required")
	}
	if !e.EndTime.After(e.StartTime) {
		return apperrors.Invalid("end_time", "must be after start_time")
	}
	if e.VenueID <= 0 {
		return apperrors.Invalid("venue_id", "must be greater than 0")
	}
	return nil
}

// Overlaps reports whether the event intersects the half-open window [start, end).
// Windows that only touch at a boundary do not overlap.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && e.EndTime.After(start)
}

// Ticket binds one seat of one event to one user. Tickets are never updated.
type Ticket struct {
	ID          int64           `json:"id" db:"id"`
	EventID     int64           `json:"event_id" db:"event_id"`
	UserID      int64           `json:"user_id" db:"user_id"`
	SeatNumber  string          `json:"seat_number" db:"seat_number"`
	Price       decimal.Decimal `json:"price" db:"price"`
	PurchasedAt time.Time       `json:"purchased_at" db:"purchased_at"`
}

// NormalizeSeat trims the seat identifier; seat "a1" and "A1" are different seats.
func NormalizeSeat(seat string) string {
	return strings.TrimSpace(seat)
}

func ValidateSeat(seat string) error {
	return requireText("seat_number", seat, MaxSeatNumberLength)
}

func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.Invalid("price", "must be >= 0")
	}
	if !price.Equal(price.Round(MaxPriceFractionDigs)) {
		return apperrors.Invalid("price", "must have at most 2 decimal places")
	}
	if price.GreaterThan(MaxPrice) {
		return apperrors.Invalid("price", "must be <= "+MaxPrice.StringFixed(MaxPriceFractionDigs))
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.Invalid("email", "is not a valid address")
	}
	return nil
}

func requireText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return apperrors.Invalid(field, "is required")
	}
	if utf8.RuneCountInString(trimmed) > max {
		return apperrors.Invalid(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
	return nil
}

// EventWithVenue is an event joined with its venue, the unit the catalog works on.
type EventWithVenue struct {
	Event
	Venue Venue
}

func (e *EventWithVenue) Response() EventResponse {
	return NewEventResponse(&e.Event, &e.Venue)
}

// EventTicketCount is a popularity ranking row.
type EventTicketCount struct {
	EventWithVenue
	TicketsSold int64
}
