package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"eventhub/internal/app"
	"eventhub/internal/config"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/shopspring/decimal"
)

var (
	venueCount  = flag.Int("venues", 5, "Number of venues to create")
	eventCount  = flag.Int("events", 20, "Number of events to create")
	userCount   = flag.Int("users", 50, "Number of attendees to register")
	ticketCount = flag.Int("tickets", 200, "Number of tickets to sell")
	seed        = flag.Int64("seed", 0, "Random seed (0 = time based)")
	dryRun      = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var venueNames = []string{"Arena", "Concert Hall", "Opera House", "Jazz Club", "Stadium", "Theatre", "Expo Center"}
var eventTitles = []string{"Rock Night", "Symphony", "Stand-up Evening", "Jazz Session", "Ballet", "Derby", "Tech Talk"}

// Seeder fills the catalog with demo data through the service layer, so
// every invariant enforced for API clients holds for generated data too.
type Seeder struct {
	services *service.Services
	rnd      *rand.Rand
	now      time.Time
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if *dryRun {
		slog.Info("[DRY RUN] Would generate demo data",
			"storage", cfg.StorageDriver,
			"venues", *venueCount,
			"events", *eventCount,
			"users", *userCount,
			"tickets", *ticketCount)
		return
	}

	ctx := context.Background()
	application, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}
	defer application.Close()

	s := newSeeder(application.Services, *seed)
	if err := s.Run(ctx); err != nil {
		slog.Error("Failed to generate data", "error", err)
		application.Close()
		os.Exit(1)
	}

	slog.Info("Data generation completed successfully!")
}

func newSeeder(services *service.Services, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		services: services,
		rnd:      rand.New(rand.NewSource(seed)),
		now:      time.Now().UTC(),
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	venues, err := s.createVenues(ctx, *venueCount)
	if err != nil {
		return err
	}
	events, err := s.createEvents(ctx, venues, *eventCount)
	if err != nil {
		return err
	}
	users, err := s.registerUsers(ctx, *userCount)
	if err != nil {
		return err
	}
	sold := s.sellTickets(ctx, events, users, *ticketCount)

	slog.Info("Generated demo data",
		"venues", len(venues),
		"events", len(events),
		"users", len(users),
		"tickets", sold)
	return nil
}

func (s *Seeder) createVenues(ctx context.Context, n int) ([]*models.Venue, error) {
	venues := make([]*models.Venue, 0, n)
	for i := 0; i < n; i++ {
		venue, err := s.services.Booking.CreateVenue(ctx, models.VenueRequest{
			Name:     fmt.Sprintf("%s %d", venueNames[i%len(venueNames)], i+1),
			Address:  fmt.Sprintf("%d Main Street", s.rnd.Intn(900)+100),
			Capacity: s.rnd.Intn(901) + 100,
		})
		if err != nil {
			return nil, fmt.Errorf("create venue: %w", err)
		}
		venues = append(venues, venue)
	}
	return venues, nil
}

func (s *Seeder) createEvents(ctx context.Context, venues []*models.Venue, n int) ([]*models.EventResponse, error) {
	if len(venues) == 0 {
		return nil, nil
	}

	day := time.Date(s.now.Year(), s.now.Month(), s.now.Day(), 19, 0, 0, 0, time.UTC)
	events := make([]*models.EventResponse, 0, n)
	for i := 0; i < n; i++ {
		start := day.AddDate(0, 0, s.rnd.Intn(90)+1)
		event, err := s.services.Booking.CreateEvent(ctx, models.EventRequest{
			Title:     fmt.Sprintf("%s #%d", eventTitles[i%len(eventTitles)], i+1),
			StartTime: start,
			EndTime:   start.Add(time.Duration(s.rnd.Intn(3)+2) * time.Hour),
			VenueID:   venues[s.rnd.Intn(len(venues))].ID,
		})
		if err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *Seeder) registerUsers(ctx context.Context, n int) ([]int64, error) {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		res, err := s.services.Users.Register(ctx, models.RegisterRequest{
			Name:     fmt.Sprintf("Attendee %d", i+1),
			Email:    fmt.Sprintf("attendee%d@example.com", i+1),
			Password: "password",
		})
		if apperrors.Is(err, apperrors.KindConflict) {
			slog.Info("User already exists, skipping", "index", i+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("register user: %w", err)
		}
		ids = append(ids, res.User.ID)
	}
	return ids, nil
}

// sellTickets buys random seats. Taken seats and sold out events are
// expected collisions and are skipped.
func (s *Seeder) sellTickets(ctx context.Context, events []*models.EventResponse, users []int64, n int) int {
	if len(events) == 0 || len(users) == 0 {
		return 0
	}

	sold := 0
	for i := 0; i < n; i++ {
		event := events[s.rnd.Intn(len(events))]
		row := s.rnd.Intn(20)
		_, err := s.services.Allocator.Purchase(ctx, models.PurchaseRequest{
			EventID:    event.ID,
			UserID:     users[s.rnd.Intn(len(users))],
			SeatNumber: seatLabel(row, s.rnd.Intn(30)+1),
			Price:      seatPrice(row, s.rnd),
		})
		if apperrors.Is(err, apperrors.KindConflict) {
			continue
		}
		if err != nil {
			slog.Error("Failed to sell ticket", "event_id", event.ID, "error", err)
			continue
		}
		sold++
	}
	return sold
}

// seatLabel names a seat by row letter and number, e.g. "C12".
func seatLabel(row, number int) string {
	return fmt.Sprintf("%c%d", 'A'+rune(row%26), number)
}

// seatPrice makes front rows more expensive.
func seatPrice(row int, rnd *rand.Rand) decimal.Decimal {
	base := int64(20)
	switch {
	case row < 3:
		base += int64(rnd.Intn(30) + 20)
	case row < 10:
		base += int64(rnd.Intn(20) + 10)
	default:
		base += int64(rnd.Intn(10))
	}
	return decimal.New(base*100+int64(rnd.Intn(100)), -2)
}
