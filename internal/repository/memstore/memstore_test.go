package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*Repositories, *models.Venue, *models.Event) {
	t.Helper()
	ctx := context.Background()
	repos := New()

	venue := &models.Venue{Name: "Arena", Address: "1 Main St", Capacity: 100}
	require.NoError(t, repos.Venues.Create(ctx, venue))

	event := &models.Event{Title: "Show", StartTime: start, EndTime: start.Add(time.Hour), VenueID: venue.ID}
	require.NoError(t, repos.Events.Create(ctx, event))

	return repos, venue, event
}

func addUser(t *testing.T, repos *Repositories, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "U", Email: email, Role: models.RoleAttendee}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestConcurrentSeatClaimsHaveOneWinner(t *testing.T) {
	repos, _, event := seed(t)
	ctx := context.Background()

	const n = 50
	users := make([]*models.User, n)
	for i := range users {
		users[i] = addUser(t, repos, fmt.Sprintf("user%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repos.Tickets.Create(ctx, &models.Ticket{
				EventID: event.ID, UserID: users[i].ID, SeatNumber: "A1", Price: decimal.NewFromInt(50),
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrSeatTaken)
	}
	assert.Equal(t, 1, wins)

	count, err := repos.Tickets.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTicketForeignKeys(t *testing.T) {
	repos, _, event := seed(t)
	ctx := context.Background()
	user := addUser(t, repos, "ann@example.com")

	err := repos.Tickets.Create(ctx, &models.Ticket{EventID: 999, UserID: user.ID, SeatNumber: "A1"})
	assert.ErrorIs(t, err, repository.ErrForeignKey)
	assert.Equal(t, repository.ConstraintTicketEvent, repository.ConstraintOf(err))

	err = repos.Tickets.Create(ctx, &models.Ticket{EventID: event.ID, UserID: 999, SeatNumber: "A1"})
	assert.Equal(t, repository.ConstraintTicketUser, repository.ConstraintOf(err))
}

func TestSeatsAreScopedPerEvent(t *testing.T) {
	repos, venue, event := seed(t)
	ctx := context.Background()
	user := addUser(t, repos, "ann@example.com")

	other := &models.Event{Title: "Other", StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), VenueID: venue.ID}
	require.NoError(t, repos.Events.Create(ctx, other))

	require.NoError(t, repos.Tickets.Create(ctx, &models.Ticket{EventID: event.ID, UserID: user.ID, SeatNumber: "A1"}))
	require.NoError(t, repos.Tickets.Create(ctx, &models.Ticket{EventID: other.ID, UserID: user.ID, SeatNumber: "A1"}))

	taken, err := repos.Tickets.SeatTaken(ctx, event.ID, "A2")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestDeleteRestrictions(t *testing.T) {
	repos, venue, event := seed(t)
	ctx := context.Background()
	user := addUser(t, repos, "ann@example.com")
	require.NoError(t, repos.Tickets.Create(ctx, &models.Ticket{EventID: event.ID, UserID: user.ID, SeatNumber: "A1"}))

	_, err := repos.Venues.Delete(ctx, venue.ID)
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	_, err = repos.Events.Delete(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	_, err = repos.Users.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	ok, err := repos.Events.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDuplicateEmail(t *testing.T) {
	repos := New()
	addUser(t, repos, "ann@example.com")

	err := repos.Users.Create(context.Background(), &models.User{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestListAvailableHalfOpen(t *testing.T) {
	repos, venue, _ := seed(t)
	ctx := context.Background()
	hall := &models.Venue{Name: "Hall", Address: "2 Side St", Capacity: 20}
	require.NoError(t, repos.Venues.Create(ctx, hall))

	touching, err := repos.Venues.ListAvailable(ctx, start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	overlapping, err := repos.Venues.ListAvailable(ctx, start.Add(30*time.Minute), start.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, hall.ID, overlapping[0].ID)
	assert.NotEqual(t, venue.ID, overlapping[0].ID)

	empty, err := repos.Venues.ListAvailable(ctx, start, start)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRevenueIsExactDecimal(t *testing.T) {
	repos, _, event := seed(t)
	ctx := context.Background()
	user := addUser(t, repos, "ann@example.com")

	for i, price := range []string{"0.10", "0.20", "49.70"} {
		require.NoError(t, repos.Tickets.Create(ctx, &models.Ticket{
			EventID: event.ID, UserID: user.ID, SeatNumber: string(rune('A' + i)), Price: decimal.RequireFromString(price),
		}))
	}

	revenue, err := repos.Tickets.RevenueByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", revenue.StringFixed(2))

	none, err := repos.Tickets.RevenueByEvent(ctx, 999)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}
