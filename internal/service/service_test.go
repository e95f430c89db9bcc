package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventhub/internal/clock"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/models"
	"eventhub/internal/repository/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "hashed:"+pw }

type stubTokens struct{}

func (stubTokens) Issue(u *models.User) (string, time.Time, error) {
	return fmt.Sprintf("token-%d", u.ID), now.Add(time.Hour), nil
}

type fixture struct {
	svc   *Services
	repos *memstore.Repositories
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, nil)
}

// newFixtureWith lets a test wrap the ticket store or plug in a cache.
func newFixtureWith(t *testing.T, wrapTickets func(TicketStore) TicketStore, cache StatsCache) *fixture {
	t.Helper()
	repos := memstore.New()
	pub := &recordingPublisher{}
	var tickets TicketStore = repos.Tickets
	if wrapTickets != nil {
		tickets = wrapTickets(tickets)
	}
	svc := NewServices(Deps{
		Stores: Stores{
			Users:   repos.Users,
			Venues:  repos.Venues,
			Events:  repos.Events,
			Tickets: tickets,
		},
		Clock:     clock.NewFixed(now),
		Publisher: pub,
		Cache:     cache,
		Hasher:    plainHasher{},
		Tokens:    stubTokens{},
	})
	return &fixture{svc: svc, repos: repos, pub: pub}
}

// mapCache is a StatsCache kept in maps. Invalidation drops the event's
// stats and every popular list, like the Redis cache does.
type mapCache struct {
	mu      sync.Mutex
	stats   map[int64]models.EventStats
	popular map[int][]models.PopularEvent
}

func newMapCache() *mapCache {
	return &mapCache{stats: map[int64]models.EventStats{}, popular: map[int][]models.PopularEvent{}}
}

func (m *mapCache) GetEventStats(_ context.Context, eventID int64) (*models.EventStats, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stats[eventID]
	if !ok {
		return nil, false, nil
	}
	return &st, true, nil
}

func (m *mapCache) SetEventStats(_ context.Context, stats *models.EventStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.EventID] = *stats
	return nil
}

func (m *mapCache) GetPopular(_ context.Context, topN int) ([]models.PopularEvent, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.popular[topN]
	return items, ok, nil
}

func (m *mapCache) SetPopular(_ context.Context, topN int, events []models.PopularEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popular[topN] = events
	return nil
}

func (m *mapCache) InvalidateEvent(_ context.Context, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stats, eventID)
	m.popular = map[int][]models.PopularEvent{}
	return nil
}

// lateTickets reports the seat as free on the first lookup, as if another
// buyer took it right after.
type lateTickets struct {
	TicketStore
	mu     sync.Mutex
	missed bool
}

func (l *lateTickets) SeatTaken(ctx context.Context, eventID int64, seat string) (bool, error) {
	l.mu.Lock()
	first := !l.missed
	l.missed = true
	l.mu.Unlock()
	if first {
		return false, nil
	}
	return l.TicketStore.SeatTaken(ctx, eventID, seat)
}

func (f *fixture) venue(t *testing.T, name string, capacity int) *models.Venue {
	t.Helper()
	v, err := f.svc.Booking.CreateVenue(context.Background(), models.VenueRequest{Name: name, Address: "1 Main St", Capacity: capacity})
	require.NoError(t, err)
	return v
}

func (f *fixture) event(t *testing.T, title string, venueID int64, start time.Time, d time.Duration) int64 {
	t.Helper()
	e, err := f.svc.Booking.CreateEvent(context.Background(), models.EventRequest{
		Title: title, StartTime: start, EndTime: start.Add(d), VenueID: venueID,
	})
	require.NoError(t, err)
	return e.ID
}

func (f *fixture) user(t *testing.T, email string) int64 {
	t.Helper()
	res, err := f.svc.Users.Register(context.Background(), models.RegisterRequest{Name: "User", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.User.ID
}

func (f *fixture) buy(eventID, userID int64, seat, price string) (*models.Ticket, error) {
	return f.svc.Allocator.Purchase(context.Background(), models.PurchaseRequest{
		EventID: eventID, UserID: userID, SeatNumber: seat, Price: decimal.RequireFromString(price),
	})
}

func TestPurchaseConcurrentSameSeat(t *testing.T) {
	f := newFixture(t)
	venue := f.venue(t, "Arena", 500)
	eventID := f.event(t, "Show", venue.ID, now.Add(24*time.Hour), 2*time.Hour)

	const n = 50
	users := make([]int64, n)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("u%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.buy(eventID, users[i], "A1", "50.00")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		assert.Equal(t, fmt.Sprintf("Seat A1 is already taken for event %d", eventID), err.Error())
	}
	assert.Equal(t, 1, wins)

	sold, err := f.svc.Catalog.TicketsSoldForEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sold)
}

func TestPurchaseValidationAndLookups(t *testing.T) {
	f := newFixture(t)
	venue := f.venue(t, "Arena", 10)
	eventID := f.event(t, "Show", venue.ID, now.Add(time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")

	_, err := f.buy(eventID, userID, "   ", "10.00")
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = f.buy(eventID, userID, "A1", "-1")
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = f.buy(999, userID, "A1", "10.00")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "event 999 not found", err.Error())

	_, err = f.buy(eventID, 999, "A1", "10.00")
	assert.Equal(t, "user 999 not found", err.Error())

	ticket, err := f.buy(eventID, userID, " A1 ", "10.00")
	require.NoError(t, err)
	assert.Equal(t, "A1", ticket.SeatNumber)
	assert.Equal(t, now, ticket.PurchasedAt)
	assert.Contains(t, f.pub.Subjects(), models.SubjectTicketPurchased)

	// seat identifiers are case-sensitive
	_, err = f.buy(eventID, userID, "a1", "10.00")
	assert.NoError(t, err)
}

func TestPurchaseSoldOut(t *testing.T) {
	f := newFixture(t)
	venue := f.venue(t, "Tiny", 2)
	eventID := f.event(t, "Show", venue.ID, now.Add(time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")

	_, err := f.buy(eventID, userID, "A1", "5")
	require.NoError(t, err)
	_, err = f.buy(eventID, userID, "A2", "5")
	require.NoError(t, err)

	_, err = f.buy(eventID, userID, "A3", "5")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, fmt.Sprintf("event %d is sold out", eventID), err.Error())
}

func TestPurchaseLastSeatLostToSameSeatBuyer(t *testing.T) {
	var late *lateTickets
	f := newFixtureWith(t, func(ts TicketStore) TicketStore {
		late = &lateTickets{TicketStore: ts, missed: true}
		return late
	}, nil)
	venue := f.venue(t, "Tiny", 1)
	eventID := f.event(t, "Show", venue.ID, now.Add(time.Hour), time.Hour)
	ann := f.user(t, "ann@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.buy(eventID, ann, "A1", "5")
	require.NoError(t, err)

	late.mu.Lock()
	late.missed = false
	late.mu.Unlock()

	_, err = f.buy(eventID, bob, "A1", "5")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, fmt.Sprintf("Seat A1 is already taken for event %d", eventID), err.Error())

	_, err = f.buy(eventID, bob, "A2", "5")
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("event %d is sold out", eventID), err.Error())
}

func TestCacheInvalidatedOnCatalogChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWith(t, nil, newMapCache())
	venue := f.venue(t, "Arena", 100)
	first := f.event(t, "First", venue.ID, now.Add(time.Hour), time.Hour)

	popular, err := f.svc.Catalog.MostPopular(ctx, 5)
	require.NoError(t, err)
	require.Len(t, popular, 1)

	f.event(t, "Second", venue.ID, now.Add(2*time.Hour), time.Hour)
	popular, err = f.svc.Catalog.MostPopular(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, popular, 2)

	stats, err := f.svc.Catalog.EventStats(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.Capacity)

	_, err = f.svc.Booking.UpdateVenue(ctx, venue.ID, models.VenueRequest{Name: "Arena Grande", Address: "1 Main St", Capacity: 250})
	require.NoError(t, err)

	stats, err = f.svc.Catalog.EventStats(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 250, stats.Capacity)
	assert.Equal(t, 250, stats.Remaining)

	popular, err = f.svc.Catalog.MostPopular(ctx, 5)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Arena Grande", popular[0].Venue.Name)
}

func TestAvailableVenuesOverlap(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	hall := f.venue(t, "Hall", 50)
	ten := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f.event(t, "Morning", arena.ID, ten, time.Hour)

	ctx := context.Background()
	touching, err := f.svc.Availability.AvailableVenues(ctx, ten.Add(time.Hour), ten.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	overlap, err := f.svc.Availability.AvailableVenues(ctx, ten.Add(30*time.Minute), ten.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, overlap, 1)
	assert.Equal(t, hall.ID, overlap[0].ID)

	inverted, err := f.svc.Availability.AvailableVenues(ctx, ten.Add(time.Hour), ten)
	require.NoError(t, err)
	assert.Empty(t, inverted)
}

func TestListPaginatedFiltersBeforePaging(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	hall := f.venue(t, "Concert Hall", 100)
	for i := 0; i < 25; i++ {
		venueID := arena.ID
		if i >= 15 {
			venueID = hall.ID
		}
		f.event(t, fmt.Sprintf("E%02d", i), venueID, now.Add(time.Duration(i)*time.Hour), time.Hour)
	}

	page, err := f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{
		Page: 1, PageSize: 10, VenueName: "arena",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPreviousPage)
	for _, item := range page.Items {
		assert.Equal(t, "Arena", item.Venue.Name)
	}

	last, err := f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{
		Page: 2, PageSize: 10, VenueName: "ARENA", SortBy: "bogus",
	})
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.False(t, last.HasNextPage)

	_, err = f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{Page: 0, PageSize: 10})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	_, err = f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{Page: 1, PageSize: 0})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestListPaginatedStableOnEqualStart(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	start := now.Add(48 * time.Hour)
	first := f.event(t, "Zeta", arena.ID, start, time.Hour)
	second := f.event(t, "Alpha", arena.ID, start, time.Hour)

	page, err := f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{Page: 1, PageSize: 10, SortBy: "StartTime"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first, page.Items[0].ID)
	assert.Equal(t, second, page.Items[1].ID)

	byTitle, err := f.svc.Catalog.ListPaginated(context.Background(), models.EventQuery{Page: 1, PageSize: 10, SortBy: "title"})
	require.NoError(t, err)
	assert.Equal(t, second, byTitle.Items[0].ID)
}

func TestMostPopularTieBreak(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	e1 := f.event(t, "E1", arena.ID, now.Add(time.Hour), time.Hour)
	e2 := f.event(t, "E2", arena.ID, now.Add(3*time.Hour), time.Hour)
	e3 := f.event(t, "E3", arena.ID, now.Add(5*time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")

	for eventID, count := range map[int64]int{e2: 5, e1: 5, e3: 1} {
		for i := 0; i < count; i++ {
			_, err := f.buy(eventID, userID, fmt.Sprintf("S%d", i), "1")
			require.NoError(t, err)
		}
	}

	top, err := f.svc.Catalog.MostPopular(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, e1, top[0].ID)
	assert.Equal(t, e2, top[1].ID)
	assert.Equal(t, int64(5), top[0].TicketsSold)

	_, err = f.svc.Catalog.MostPopular(context.Background(), 0)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestRevenueAndCounts(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	eventID := f.event(t, "Show", arena.ID, now.Add(time.Hour), time.Hour)
	empty := f.event(t, "Empty", arena.ID, now.Add(3*time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")
	ctx := context.Background()

	_, err := f.buy(eventID, userID, "A1", "25.50")
	require.NoError(t, err)
	_, err = f.buy(eventID, userID, "A2", "24.50")
	require.NoError(t, err)

	revenue, err := f.svc.Catalog.RevenueForEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", models.FormatMoney(revenue))

	zero, err := f.svc.Catalog.RevenueForEvent(ctx, empty)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = f.svc.Catalog.RevenueForEvent(ctx, 999)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	stats, err := f.svc.Catalog.EventStats(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TicketsSold)
	assert.Equal(t, 98, stats.Remaining)
}

func TestUpcomingUsesClock(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)
	f.event(t, "Past", arena.ID, now.Add(-2*time.Hour), time.Hour)
	later := f.event(t, "Later", arena.ID, now.Add(5*time.Hour), time.Hour)
	soon := f.event(t, "Soon", arena.ID, now.Add(time.Hour), time.Hour)

	upcoming, err := f.svc.Catalog.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon, upcoming[0].ID)
	assert.Equal(t, later, upcoming[1].ID)
}

func TestDeleteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arena := f.venue(t, "Arena", 100)
	eventID := f.event(t, "Show", arena.ID, now.Add(time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")
	_, err := f.buy(eventID, userID, "A1", "10")
	require.NoError(t, err)

	err = f.svc.Booking.DeleteEvent(ctx, eventID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, fmt.Sprintf("event %d has 1 tickets", eventID), err.Error())

	err = f.svc.Booking.DeleteVenue(ctx, arena.ID)
	assert.Equal(t, fmt.Sprintf("venue %d still hosts 1 events", arena.ID), err.Error())

	err = f.svc.Users.DeleteUser(ctx, userID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	unsold := f.event(t, "Unsold", arena.ID, now.Add(5*time.Hour), time.Hour)
	require.NoError(t, f.svc.Booking.DeleteEvent(ctx, unsold))
	assert.Contains(t, f.pub.Subjects(), models.SubjectEventDeleted)

	err = f.svc.Booking.DeleteEvent(ctx, unsold)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateEventRepointsVenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arena := f.venue(t, "Arena", 100)
	hall := f.venue(t, "Hall", 50)
	eventID := f.event(t, "Show", arena.ID, now.Add(time.Hour), time.Hour)

	updated, err := f.svc.Booking.UpdateEvent(ctx, eventID, models.EventRequest{
		Title: "Moved", StartTime: now.Add(time.Hour), EndTime: now.Add(3 * time.Hour), VenueID: hall.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hall", updated.Venue.Name)

	_, err = f.svc.Booking.UpdateEvent(ctx, eventID, models.EventRequest{
		Title: "Moved", StartTime: now.Add(time.Hour), EndTime: now.Add(3 * time.Hour), VenueID: 999,
	})
	assert.Equal(t, "venue 999 not found", err.Error())

	got, err := f.svc.Booking.GetEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, "Moved", got.Title)
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	arena := f.venue(t, "Arena", 100)

	_, err := f.svc.Booking.CreateEvent(context.Background(), models.EventRequest{
		Title: "Bad", StartTime: now, EndTime: now, VenueID: arena.ID,
	})
	assert.Equal(t, "invalid end_time: must be after start_time", err.Error())

	_, err = f.svc.Booking.CreateEvent(context.Background(), models.EventRequest{
		Title: "Orphan", StartTime: now, EndTime: now.Add(time.Hour), VenueID: 42,
	})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Users.Register(ctx, models.RegisterRequest{Name: "Ann", Email: " Ann@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, models.RoleAttendee, res.User.Role)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Users.Register(ctx, models.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	assert.Equal(t, "email is already registered", err.Error())

	_, err = f.svc.Users.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "wrong"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	login, err := f.svc.Users.Login(ctx, models.LoginRequest{Email: "ANN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.svc.Users.CreateUserByAdmin(ctx, res.User.ID, models.AdminCreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret1", Role: models.RoleAdmin,
	})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestAdminCreatesUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := &models.User{Name: "Root", Email: "root@example.com", PasswordHash: "hashed:secret1", Role: models.RoleAdmin}
	require.NoError(t, f.repos.Users.Create(ctx, admin))

	created, err := f.svc.Users.CreateUserByAdmin(ctx, admin.ID, models.AdminCreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret1", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)

	admins, err := f.svc.Users.UsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	_, err = f.svc.Users.UsersByRole(ctx, models.Role("Guest"))
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	require.NoError(t, f.svc.Users.DeleteUser(ctx, created.ID))
	_, err = f.svc.Users.GetUser(ctx, created.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestTicketsByUserAndSeatAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arena := f.venue(t, "Arena", 100)
	eventID := f.event(t, "Show", arena.ID, now.Add(time.Hour), time.Hour)
	userID := f.user(t, "ann@example.com")

	resp, err := f.svc.Booking.AssignTicket(ctx, userID, models.PurchaseRequest{
		EventID: eventID, UserID: 12345, SeatNumber: "B7", Price: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "12.50", resp.Price)
	assert.Equal(t, "Arena", resp.Event.Venue.Name)

	tickets, err := f.svc.Booking.TicketsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	free, err := f.svc.Booking.SeatAvailable(ctx, eventID, "B7")
	require.NoError(t, err)
	assert.False(t, free)
	free, err = f.svc.Booking.SeatAvailable(ctx, eventID, "B8")
	require.NoError(t, err)
	assert.True(t, free)

	withTickets, err := f.svc.Booking.GetEventWithTickets(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, withTickets.Tickets, 1)
}
