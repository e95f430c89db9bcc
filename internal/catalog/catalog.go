// Package catalog holds the filter, sort and paging rules of the event catalog
// as pure functions over already loaded events.
package catalog

import (
	"sort"
	"strings"
	"time"

	"eventhub/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizeSort maps a client sort key onto one of the supported keys.
// Matching is case-insensitive; unknown and blank keys sort by start time.
func NormalizeSort(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case models.SortByTitle:
		return models.SortByTitle
	case models.SortByEndTime:
		return models.SortByEndTime
	default:
		return models.SortByStartTime
	}
}

// FilterByVenueName keeps events whose venue name contains needle, ignoring case.
// A blank needle keeps everything.
func FilterByVenueName(items []models.EventWithVenue, needle string) []models.EventWithVenue {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return items
	}

	out := make([]models.EventWithVenue, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Venue.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Sort orders items ascending by key. The sort is stable, so callers that pass
// items in id order get id as the tie-breaker.
func Sort(items []models.EventWithVenue, key string) {
	var less func(a, b *models.EventWithVenue) bool
	switch NormalizeSort(key) {
	case models.SortByTitle:
		less = func(a, b *models.EventWithVenue) bool { return a.Title < b.Title }
	case models.SortByEndTime:
		less = func(a, b *models.EventWithVenue) bool { return a.EndTime.Before(b.EndTime) }
	default:
		less = func(a, b *models.EventWithVenue) bool { return a.StartTime.Before(b.StartTime) }
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

// Page returns the 1-based page of items. Pages past the end are empty.
func Page[T any](items []T, page, pageSize int) []T {
	offset := (page - 1) * pageSize
	if offset >= len(items) {
		return []T{}
	}
	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Upcoming keeps events starting at or after from, ordered by start time.
func Upcoming(items []models.EventWithVenue, from time.Time) []models.EventWithVenue {
	out := make([]models.EventWithVenue, 0, len(items))
	for _, it := range items {
		if !it.StartTime.Before(from) {
			out = append(out, it)
		}
	}
	Sort(out, models.SortByStartTime)
	return out
}

// RankByTickets orders events by tickets sold, most first, ties by ascending
// event id, and truncates to topN.
func RankByTickets(items []models.EventTicketCount, topN int) []models.EventTicketCount {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TicketsSold != items[j].TicketsSold {
			return items[i].TicketsSold > items[j].TicketsSold
		}
		return items[i].ID < items[j].ID
	})
	if topN < len(items) {
		items = items[:topN]
	}
	return items
}
