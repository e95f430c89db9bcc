package database

import (
	"context"
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createVenuesTable,
		createEventsTable,
		createTicketsTable,
		createTicketsSeatIndex,
		createEventsVenueTimeIndex,
		createTicketsUserIndex,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "steps", len(migrations))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(50) NOT NULL,
    email VARCHAR(255) NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'Attendee',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT users_email_key UNIQUE (email),
    CHECK (role IN ('Admin', 'Attendee'))
);`

const createVenuesTable = `
CREATE TABLE IF NOT EXISTS venues (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    address VARCHAR(200) NOT NULL,
    capacity INTEGER NOT NULL,

    CHECK (capacity > 0)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(100) NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    venue_id BIGINT NOT NULL,

    CONSTRAINT events_venue_id_fkey FOREIGN KEY (venue_id) REFERENCES venues(id) ON DELETE RESTRICT,
    CHECK (end_time > start_time)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    seat_number VARCHAR(10) NOT NULL,
    price NUMERIC(10,2) NOT NULL,
    purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT tickets_event_id_fkey FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE RESTRICT,
    CONSTRAINT tickets_user_id_fkey FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT,
    CHECK (seat_number <> ''),
    CHECK (price >= 0)
);`

// The seat index is the only arbiter of seat ownership.
const createTicketsSeatIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS tickets_event_seat_uq
ON tickets (event_id, seat_number);`

const createEventsVenueTimeIndex = `
CREATE INDEX IF NOT EXISTS events_venue_time_idx
ON events (venue_id, start_time, end_time);`

const createTicketsUserIndex = `
CREATE INDEX IF NOT EXISTS tickets_user_idx
ON tickets (user_id);`
