package models

import (
	"strings"
	"time"

	apperrors "eventhub/internal/errors"

	"github.com/shopspring/decimal"
)

// VenueRequest - модель для создания и изменения площадки
type VenueRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

// EventRequest - модель для создания и изменения события
type EventRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	VenueID   int64     `json:"venue_id"`
}

// PurchaseRequest - покупка билета на конкретное место.
// UserID is filled from the token or the URL, never trusted from the body for attendees.
type PurchaseRequest struct {
	EventID    int64           `json:"event_id"`
	UserID     int64           `json:"user_id,omitempty"`
	SeatNumber string          `json:"seat_number"`
	Price      decimal.Decimal `json:"price"`
}

// RegisterRequest - регистрация посетителя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest - вход по email и паролю
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminCreateUserRequest - создание пользователя администратором
type AdminCreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// EventQuery - параметры каталога событий
type EventQuery struct {
	Page      int
	PageSize  int
	VenueName string
	SortBy    string
}

// Sort keys accepted by the catalog. Anything else falls back to SortByStartTime.
const (
	SortByTitle     = "title"
	SortByStartTime = "starttime"
	SortByEndTime   = "endtime"
)

// VenueSummary is the venue shape embedded in event responses. It never carries events.
type VenueSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

func NewVenueSummary(v *Venue) VenueSummary {
	return VenueSummary{ID: v.ID, Name: v.Name, Address: v.Address, Capacity: v.Capacity}
}

// EventResponse - событие с краткой информацией о площадке
type EventResponse struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Venue     VenueSummary `json:"venue"`
}

func NewEventResponse(e *Event, v *Venue) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Venue:     NewVenueSummary(v),
	}
}

// EventPage - страница каталога
type EventPage struct {
	Items           []EventResponse `json:"items"`
	TotalCount      int             `json:"total_count"`
	PageIndex       int             `json:"page_index"`
	PageSize        int             `json:"page_size"`
	TotalPages      int             `json:"total_pages"`
	HasPreviousPage bool            `json:"has_previous_page"`
	HasNextPage     bool            `json:"has_next_page"`
}

// NewEventPage computes the page metadata for an already filtered total.
func NewEventPage(items []EventResponse, totalCount, page, pageSize int) *EventPage {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []EventResponse{}
	}
	return &EventPage{
		Items:           items,
		TotalCount:      totalCount,
		PageIndex:       page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}

// PopularEvent - событие с количеством проданных билетов
type PopularEvent struct {
	EventResponse
	TicketsSold int64 `json:"tickets_sold"`
}

// EventStats - продажи по событию
type EventStats struct {
	EventID     int64           `json:"event_id"`
	TicketsSold int64           `json:"tickets_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Capacity    int             `json:"capacity"`
	Remaining   int             `json:"remaining"`
}

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// AuthResponse - токен и пользователь
type AuthResponse struct {
	Token      string       `json:"token"`
	Expiration time.Time    `json:"expiration"`
	User       UserResponse `json:"user"`
}

// TicketResponse - билет с пользователем и событием
type TicketResponse struct {
	ID          int64         `json:"id"`
	SeatNumber  string        `json:"seat_number"`
	Price       string        `json:"price"`
	PurchasedAt time.Time     `json:"purchased_at"`
	User        UserResponse  `json:"user"`
	Event       EventResponse `json:"event"`
}

func NewTicketResponse(t *Ticket, u *User, e *Event, v *Venue) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		SeatNumber:  t.SeatNumber,
		Price:       FormatMoney(t.Price),
		PurchasedAt: t.PurchasedAt,
		User:        NewUserResponse(u),
		Event:       NewEventResponse(e, v),
	}
}

// EventWithTickets - событие вместе с проданными билетами
type EventWithTickets struct {
	EventResponse
	Tickets []TicketResponse `json:"tickets"`
}

// VenueWithEvents - площадка вместе с событиями
type VenueWithEvents struct {
	VenueSummary
	Events []EventResponse `json:"events"`
}

// RevenueResponse - выручка по событию
type RevenueResponse struct {
	EventID int64  `json:"event_id"`
	Revenue string `json:"revenue"`
}

// TicketsSoldResponse - количество проданных билетов
type TicketsSoldResponse struct {
	EventID     int64 `json:"event_id"`
	TicketsSold int64 `json:"tickets_sold"`
}

// SeatAvailabilityResponse - свободно ли место
type SeatAvailabilityResponse struct {
	EventID    int64  `json:"event_id"`
	SeatNumber string `json:"seat_number"`
	Available  bool   `json:"available"`
}

// CapacityResponse - вместимость площадки
type CapacityResponse struct {
	VenueID  int64 `json:"venue_id"`
	Capacity int   `json:"capacity"`
}

// SearchResponse - результат полнотекстового поиска
type SearchResponse struct {
	Items      []EventDocument `json:"items"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// EventDocument is the event shape stored in the search index.
type EventDocument struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	VenueID   int64     `json:"venue_id"`
	VenueName string    `json:"venue_name"`
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MaxPriceFractionDigs)
}

func (r *VenueRequest) Venue() *Venue {
	return &Venue{Name: strings.TrimSpace(r.Name), Address: strings.TrimSpace(r.Address), Capacity: r.Capacity}
}

func (r *EventRequest) Event() *Event {
	return &Event{Title: strings.TrimSpace(r.Title), StartTime: r.StartTime.UTC(), EndTime: r.EndTime.UTC(), VenueID: r.VenueID}
}

// Normalize trims the name and lower-cases the email in place.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *RegisterRequest) Validate() error {
	return validateAccount(r.Name, r.Email, r.Password)
}

func (r *AdminCreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *AdminCreateUserRequest) Validate() error {
	if err := validateAccount(r.Name, r.Email, r.Password); err != nil {
		return err
	}
	if !r.Role.Valid() {
		return apperrors.Invalid("role", "must be Admin or Attendee")
	}
	return nil
}

func validateAccount(name, email, password string) error {
	if err := requireText("name", name, MaxUserNameLength); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return apperrors.Invalid("password", "must be at least 6 characters")
	}
	return nil
}
