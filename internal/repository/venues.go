package repository

import (
	"context"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/models"
)

var venuesTable = table[models.Venue]{
	name:    "venues",
	columns: []string{"name", "address", "capacity"},
	scan: func(row scanner) (*models.Venue, error) {
		v := &models.Venue{}
		err := row.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity)
		return v, err
	},
	values: func(v *models.Venue) []any {
		return []any{v.Name, v.Address, v.Capacity}
	},
	id:    func(v *models.Venue) int64 { return v.ID },
	setID: func(v *models.Venue, id int64) { v.ID = id },
}

type VenueRepository struct {
	*Store[models.Venue]
}

func NewVenueRepository(db *database.DB) *VenueRepository {
	return &VenueRepository{Store: newStore(db, venuesTable)}
}

// ListAvailable returns venues with no event intersecting [start, end).
// Events that only touch the window at a boundary do not block the venue.
func (r *VenueRepository) ListAvailable(ctx context.Context, start, end time.Time) ([]models.Venue, error) {
	if !end.After(start) {
		return []models.Venue{}, nil
	}

	query := `
		SELECT v.id, v.name, v.address, v.capacity
		FROM venues v
		WHERE NOT EXISTS (
			SELECT 1 FROM events e
			WHERE e.venue_id = v.id
			  AND e.start_time < $2
			  AND e.end_time > $1
		)
		ORDER BY v.id`

	return r.query(ctx, query, start, end)
}

func (r *VenueRepository) CountEvents(ctx context.Context, venueID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM events WHERE venue_id = $1`, venueID)
}
