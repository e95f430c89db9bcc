package service

import (
	"context"
	"time"

	apperrors "eventhub/internal/errors"
	"eventhub/internal/models"
)

type AvailabilityChecker struct {
	venues VenueStore
}

func NewAvailabilityChecker(venues VenueStore) *AvailabilityChecker {
	return &AvailabilityChecker{venues: venues}
}

// AvailableVenues returns the venues free for the whole window [start, end).
// An empty or inverted window yields an empty result.
func (a *AvailabilityChecker) AvailableVenues(ctx context.Context, start, end time.Time) ([]models.Venue, error) {
	if !end.After(start) {
		return []models.Venue{}, nil
	}

	venues, err := a.venues.ListAvailable(ctx, start, end)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return venues, nil
}
