package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	indexed []models.EventDocument
	deleted []int64
}

func (f *fakeIndexer) IndexEvent(_ context.Context, doc models.EventDocument) error {
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeIndexer) DeleteEvent(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	invalidated []int64
	err         error
}

func (f *fakeCache) InvalidateEvent(_ context.Context, id int64) error {
	f.invalidated = append(f.invalidated, id)
	return f.err
}

func payload(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func seed(t *testing.T) (*memstore.Repositories, *models.Event) {
	t.Helper()
	ctx := context.Background()
	repos := memstore.New()

	venue := &models.Venue{Name: "Arena", Address: "1 Main St", Capacity: 10}
	require.NoError(t, repos.Venues.Create(ctx, venue))

	start := time.Date(2025, 7, 1, 19, 0, 0, 0, time.UTC)
	event := &models.Event{Title: "Jazz Night", StartTime: start, EndTime: start.Add(2 * time.Hour), VenueID: venue.ID}
	require.NoError(t, repos.Events.Create(ctx, event))
	return repos, event
}

func TestEventChangedIndexesWithVenueName(t *testing.T) {
	repos, event := seed(t)
	idx := &fakeIndexer{}
	c := &fakeCache{}
	h := NewHandlers(repos.Events, repos.Venues, idx, c)

	err := h.EventChanged(context.Background(), payload(t, models.NewEventChanged(event, time.Now())))
	require.NoError(t, err)

	require.Len(t, idx.indexed, 1)
	assert.Equal(t, event.ID, idx.indexed[0].ID)
	assert.Equal(t, "Jazz Night", idx.indexed[0].Title)
	assert.Equal(t, "Arena", idx.indexed[0].VenueName)
	assert.Equal(t, []int64{event.ID}, c.invalidated)
}

func TestEventChangedForMissingEventDeletesDocument(t *testing.T) {
	repos, _ := seed(t)
	idx := &fakeIndexer{}
	h := NewHandlers(repos.Events, repos.Venues, idx, nil)

	err := h.EventChanged(context.Background(), payload(t, models.EventChangedEvent{EventID: 404}))
	require.NoError(t, err)

	assert.Empty(t, idx.indexed)
	assert.Equal(t, []int64{404}, idx.deleted)
}

func TestEventDeleted(t *testing.T) {
	repos, _ := seed(t)
	idx := &fakeIndexer{}
	h := NewHandlers(repos.Events, repos.Venues, idx, nil)

	require.NoError(t, h.EventDeleted(context.Background(), payload(t, models.EventDeletedEvent{EventID: 9})))
	assert.Equal(t, []int64{9}, idx.deleted)
}

func TestTicketPurchasedInvalidatesCache(t *testing.T) {
	repos, event := seed(t)
	c := &fakeCache{}
	h := NewHandlers(repos.Events, repos.Venues, nil, c)

	msg := models.TicketPurchasedEvent{TicketID: 1, EventID: event.ID, UserID: 2, SeatNumber: "A1", Price: "50.00"}
	require.NoError(t, h.TicketPurchased(context.Background(), payload(t, msg)))
	assert.Equal(t, []int64{event.ID}, c.invalidated)

	c.err = errors.New("valkey down")
	assert.Error(t, h.TicketPurchased(context.Background(), payload(t, msg)))
}

func TestMalformedPayload(t *testing.T) {
	repos, _ := seed(t)
	h := NewHandlers(repos.Events, repos.Venues, nil, nil)

	assert.Error(t, h.EventChanged(context.Background(), []byte("{")))
	assert.Error(t, h.EventDeleted(context.Background(), []byte("nope")))
	assert.Error(t, h.TicketPurchased(context.Background(), []byte("")))
}

func TestHandlersWithoutBackendsAreNoops(t *testing.T) {
	repos, event := seed(t)
	h := NewHandlers(repos.Events, repos.Venues, nil, nil)

	assert.NoError(t, h.EventChanged(context.Background(), payload(t, models.NewEventChanged(event, time.Now()))))
	assert.NoError(t, h.EventDeleted(context.Background(), payload(t, models.EventDeletedEvent{EventID: event.ID})))
}
