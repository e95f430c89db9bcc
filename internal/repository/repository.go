package repository

import (
	"eventhub/internal/database"
)

type Repositories struct {
	Users   *UserRepository
	Venues  *VenueRepository
	Events  *EventRepository
	Tickets *TicketRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(db),
		Venues:  NewVenueRepository(db),
		Events:  NewEventRepository(db),
		Tickets: NewTicketRepository(db),
	}
}
