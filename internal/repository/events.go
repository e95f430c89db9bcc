package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/catalog"
	"eventhub/internal/database"
	"eventhub/internal/models"
)

var eventsTable = table[models.Event]{
	name:    "events",
	columns: []string{"title", "start_time", "end_time", "venue_id"},
	scan: func(row scanner) (*models.Event, error) {
		e := &models.Event{}
		err := row.Scan(&e.ID, &e.Title, &e.StartTime, &e.EndTime, &e.VenueID)
		return e, err
	},
	values: func(e *models.Event) []any {
		return []any{e.Title, e.StartTime, e.EndTime, e.VenueID}
	},
	id:    func(e *models.Event) int64 { return e.ID },
	setID: func(e *models.Event, id int64) { e.ID = id },
}

const eventWithVenueColumns = `e.id, e.title, e.start_time, e.end_time, e.venue_id,
		       v.id, v.name, v.address, v.capacity`

// Sort columns per catalog key. Title compares bytewise to match in-memory ordering.
var sortColumns = map[string]string{
	models.SortByTitle:     `e.title COLLATE "C"`,
	models.SortByStartTime: "e.start_time",
	models.SortByEndTime:   "e.end_time",
}

type EventRepository struct {
	*Store[models.Event]
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{Store: newStore(db, eventsTable)}
}

func (r *EventRepository) ListByVenue(ctx context.Context, venueID int64) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE venue_id = $1 ORDER BY start_time, id", r.t.selectList())
	return r.query(ctx, query, venueID)
}

// ListPage filters by venue name over the whole table, sorts, then cuts the page.
// The returned total is the filtered count before paging.
func (r *EventRepository) ListPage(ctx context.Context, q models.EventQuery) ([]models.EventWithVenue, int, error) {
	needle := strings.TrimSpace(q.VenueName)
	pattern := "%" + escapeLike(needle) + "%"
	where := `WHERE ($1 = '' OR v.name ILIKE $2)`

	total, err := r.count(ctx, `
		SELECT COUNT(*)
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		`+where, needle, pattern)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		%s
		ORDER BY %s, e.id
		LIMIT $3 OFFSET $4`,
		eventWithVenueColumns, where, sortColumns[catalog.NormalizeSort(q.SortBy)])

	items, err := r.queryWithVenue(ctx, query, needle, pattern, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.EventWithVenue, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		WHERE e.start_time >= $1
		ORDER BY e.start_time, e.id`, eventWithVenueColumns)

	return r.queryWithVenue(ctx, query, from)
}

// MostPopular ranks every event, including unsold ones, by tickets sold.
func (r *EventRepository) MostPopular(ctx context.Context, topN int) ([]models.EventTicketCount, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(t.id) AS sold
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		LEFT JOIN tickets t ON t.event_id = e.id
		GROUP BY e.id, v.id
		ORDER BY sold DESC, e.id
		LIMIT $1`, eventWithVenueColumns)

	rows, err := r.db.QueryContext(ctx, query, topN)
	if err != nil {
		return nil, fmt.Errorf("query popular events: %w", err)
	}
	defer rows.Close()

	result := []models.EventTicketCount{}
	for rows.Next() {
		var row models.EventTicketCount
		if err := scanEventWithVenue(rows, &row.EventWithVenue, &row.TicketsSold); err != nil {
			return nil, fmt.Errorf("scan popular event: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *EventRepository) queryWithVenue(ctx context.Context, query string, args ...any) ([]models.EventWithVenue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	result := []models.EventWithVenue{}
	for rows.Next() {
		var item models.EventWithVenue
		if err := scanEventWithVenue(rows, &item); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanEventWithVenue(row scanner, item *models.EventWithVenue, extra ...any) error {
	dest := []any{
		&item.ID, &item.Title, &item.StartTime, &item.EndTime, &item.VenueID,
		&item.Venue.ID, &item.Venue.Name, &item.Venue.Address, &item.Venue.Capacity,
	}
	return row.Scan(append(dest, extra...)...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
