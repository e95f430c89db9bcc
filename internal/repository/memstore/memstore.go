// Package memstore keeps all entities in process memory. It enforces the same
// unique and foreign-key constraints as the Postgres schema and reports
// violations with the same repository errors.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventhub/internal/catalog"
	"eventhub/internal/models"
	"eventhub/internal/repository"

	"github.com/shopspring/decimal"
)

type seatKey struct {
	eventID int64
	seat    string
}

// DB is the shared in-memory state behind all repositories.
type DB struct {
	mu sync.RWMutex

	users   map[int64]models.User
	venues  map[int64]models.Venue
	events  map[int64]models.Event
	tickets map[int64]models.Ticket

	emails map[string]int64
	seats  map[seatKey]int64

	lastUserID, lastVenueID, lastEventID, lastTicketID int64
}

type Repositories struct {
	Users   *UserRepository
	Venues  *VenueRepository
	Events  *EventRepository
	Tickets *TicketRepository
}

func New() *Repositories {
	db := &DB{
		users:   make(map[int64]models.User),
		venues:  make(map[int64]models.Venue),
		events:  make(map[int64]models.Event),
		tickets: make(map[int64]models.Ticket),
		emails:  make(map[string]int64),
		seats:   make(map[seatKey]int64),
	}
	return &Repositories{
		Users:   &UserRepository{db: db},
		Venues:  &VenueRepository{db: db},
		Events:  &EventRepository{db: db},
		Tickets: &TicketRepository{db: db},
	}
}

func violation(constraint string, err error) error {
	return &repository.ConstraintError{Constraint: constraint, Err: err}
}

func sortedValues[T any](m map[int64]T, keep func(*T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		item := m[id]
		if keep == nil || keep(&item) {
			out = append(out, item)
		}
	}
	return out
}

// UserRepository

type UserRepository struct {
	db *DB
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.emails[email]
	if !ok {
		return nil, nil
	}
	u := r.db.users[id]
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.emails[user.Email]; taken {
		return violation(repository.ConstraintUserEmail, repository.ErrEmailTaken)
	}
	r.db.lastUserID++
	user.ID = r.db.lastUserID
	r.db.users[user.ID] = *user
	r.db.emails[user.Email] = user.ID
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return false, nil
	}
	for _, t := range r.db.tickets {
		if t.UserID == id {
			return false, violation(repository.ConstraintTicketUser, repository.ErrForeignKey)
		}
	}
	delete(r.db.users, id)
	delete(r.db.emails, u.Email)
	return true, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return sortedValues(r.db.users, func(u *models.User) bool { return u.Role == role }), nil
}

// VenueRepository

type VenueRepository struct {
	db *DB
}

func (r *VenueRepository) GetByID(_ context.Context, id int64) (*models.Venue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	v, ok := r.db.venues[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *VenueRepository) Create(_ context.Context, venue *models.Venue) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.lastVenueID++
	venue.ID = r.db.lastVenueID
	r.db.venues[venue.ID] = *venue
	return nil
}

func (r *VenueRepository) Update(_ context.Context, venue *models.Venue) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.venues[venue.ID]; !ok {
		return false, nil
	}
	r.db.venues[venue.ID] = *venue
	return true, nil
}

func (r *VenueRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.venues[id]; !ok {
		return false, nil
	}
	for _, e := range r.db.events {
		if e.VenueID == id {
			return false, violation(repository.ConstraintEventVenue, repository.ErrForeignKey)
		}
	}
	delete(r.db.venues, id)
	return true, nil
}

func (r *VenueRepository) List(_ context.Context) ([]models.Venue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return sortedValues(r.db.venues, nil), nil
}

// ListAvailable returns venues with no event intersecting [start, end).
func (r *VenueRepository) ListAvailable(_ context.Context, start, end time.Time) ([]models.Venue, error) {
	if !end.After(start) {
		return []models.Venue{}, nil
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	busy := make(map[int64]bool)
	for _, e := range r.db.events {
		if e.Overlaps(start, end) {
			busy[e.VenueID] = true
		}
	}
	return sortedValues(r.db.venues, func(v *models.Venue) bool { return !busy[v.ID] }), nil
}

func (r *VenueRepository) CountEvents(_ context.Context, venueID int64) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var n int64
	for _, e := range r.db.events {
		if e.VenueID == venueID {
			n++
		}
	}
	return n, nil
}

// EventRepository

type EventRepository struct {
	db *DB
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	e, ok := r.db.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.venues[event.VenueID]; !ok {
		return violation(repository.ConstraintEventVenue, repository.ErrForeignKey)
	}
	r.db.lastEventID++
	event.ID = r.db.lastEventID
	r.db.events[event.ID] = *event
	return nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.events[event.ID]; !ok {
		return false, nil
	}
	if _, ok := r.db.venues[event.VenueID]; !ok {
		return false, violation(repository.ConstraintEventVenue, repository.ErrForeignKey)
	}
	r.db.events[event.ID] = *event
	return true, nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.events[id]; !ok {
		return false, nil
	}
	for _, t := range r.db.tickets {
		if t.EventID == id {
			return false, violation(repository.ConstraintTicketEvent, repository.ErrForeignKey)
		}
	}
	delete(r.db.events, id)
	return true, nil
}

func (r *EventRepository) List(_ context.Context) ([]models.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return sortedValues(r.db.events, nil), nil
}

func (r *EventRepository) ListByVenue(_ context.Context, venueID int64) ([]models.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	events := sortedValues(r.db.events, func(e *models.Event) bool { return e.VenueID == venueID })
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}

func (r *EventRepository) ListPage(_ context.Context, q models.EventQuery) ([]models.EventWithVenue, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := catalog.FilterByVenueName(r.db.joined(), q.VenueName)
	catalog.Sort(items, q.SortBy)
	return catalog.Page(items, q.Page, q.PageSize), len(items), nil
}

func (r *EventRepository) ListUpcoming(_ context.Context, from time.Time) ([]models.EventWithVenue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return catalog.Upcoming(r.db.joined(), from), nil
}

func (r *EventRepository) MostPopular(_ context.Context, topN int) ([]models.EventTicketCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	sold := make(map[int64]int64)
	for _, t := range r.db.tickets {
		sold[t.EventID]++
	}

	joined := r.db.joined()
	rows := make([]models.EventTicketCount, len(joined))
	for i, e := range joined {
		rows[i] = models.EventTicketCount{EventWithVenue: e, TicketsSold: sold[e.ID]}
	}
	return catalog.RankByTickets(rows, topN), nil
}

// joined returns every event with its venue in id order. Caller holds the lock.
func (db *DB) joined() []models.EventWithVenue {
	events := sortedValues(db.events, nil)
	out := make([]models.EventWithVenue, len(events))
	for i, e := range events {
		out[i] = models.EventWithVenue{Event: e, Venue: db.venues[e.VenueID]}
	}
	return out
}

// TicketRepository

type TicketRepository struct {
	db *DB
}

func (r *TicketRepository) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tickets[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Create claims the seat. The seat index is checked and updated under the
// write lock, so concurrent claims on one seat see exactly one winner.
func (r *TicketRepository) Create(_ context.Context, ticket *models.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.events[ticket.EventID]; !ok {
		return violation(repository.ConstraintTicketEvent, repository.ErrForeignKey)
	}
	if _, ok := r.db.users[ticket.UserID]; !ok {
		return violation(repository.ConstraintTicketUser, repository.ErrForeignKey)
	}
	key := seatKey{eventID: ticket.EventID, seat: ticket.SeatNumber}
	if _, taken := r.db.seats[key]; taken {
		return violation(repository.ConstraintTicketSeat, repository.ErrSeatTaken)
	}

	r.db.lastTicketID++
	ticket.ID = r.db.lastTicketID
	r.db.tickets[ticket.ID] = *ticket
	r.db.seats[key] = ticket.ID
	return nil
}

func (r *TicketRepository) SeatTaken(_ context.Context, eventID int64, seat string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, taken := r.db.seats[seatKey{eventID: eventID, seat: seat}]
	return taken, nil
}

func (r *TicketRepository) ListByEvent(_ context.Context, eventID int64) ([]models.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return sortedValues(r.db.tickets, func(t *models.Ticket) bool { return t.EventID == eventID }), nil
}

func (r *TicketRepository) ListByUser(_ context.Context, userID int64) ([]models.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return sortedValues(r.db.tickets, func(t *models.Ticket) bool { return t.UserID == userID }), nil
}

func (r *TicketRepository) CountByEvent(ctx context.Context, eventID int64) (int64, error) {
	tickets, _ := r.ListByEvent(ctx, eventID)
	return int64(len(tickets)), nil
}

func (r *TicketRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	tickets, _ := r.ListByUser(ctx, userID)
	return int64(len(tickets)), nil
}

func (r *TicketRepository) RevenueByEvent(ctx context.Context, eventID int64) (decimal.Decimal, error) {
	tickets, _ := r.ListByEvent(ctx, eventID)
	revenue := decimal.Zero
	for _, t := range tickets {
		revenue = revenue.Add(t.Price)
	}
	return revenue, nil
}
