package repository

import (
	"context"
	"fmt"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/shopspring/decimal"
)

var ticketsTable = table[models.Ticket]{
	name:    "tickets",
	columns: []string{"event_id", "user_id", "seat_number", "price", "purchased_at"},
	scan: func(row scanner) (*models.Ticket, error) {
		t := &models.Ticket{}
		err := row.Scan(&t.ID, &t.EventID, &t.UserID, &t.SeatNumber, &t.Price, &t.PurchasedAt)
		return t, err
	},
	values: func(t *models.Ticket) []any {
		return []any{t.EventID, t.UserID, t.SeatNumber, t.Price, t.PurchasedAt}
	},
	id:    func(t *models.Ticket) int64 { return t.ID },
	setID: func(t *models.Ticket, id int64) { t.ID = id },
}

// TicketRepository exposes no Update or Delete: tickets are immutable once sold.
type TicketRepository struct {
	store *Store[models.Ticket]
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{store: newStore(db, ticketsTable)}
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return r.store.GetByID(ctx, id)
}

// Create is the single authoritative seat claim. A second claim on the same
// (event, seat) fails with ErrSeatTaken from the unique index.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.store.Create(ctx, ticket)
}

func (r *TicketRepository) SeatTaken(ctx context.Context, eventID int64, seat string) (bool, error) {
	var taken bool
	err := r.store.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1 AND seat_number = $2)`,
		eventID, seat).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check seat: %w", err)
	}
	return taken, nil
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE event_id = $1 ORDER BY id", ticketsTable.selectList())
	return r.store.query(ctx, query, eventID)
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE user_id = $1 ORDER BY id", ticketsTable.selectList())
	return r.store.query(ctx, query, userID)
}

func (r *TicketRepository) CountByEvent(ctx context.Context, eventID int64) (int64, error) {
	return r.store.count(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID)
}

func (r *TicketRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return r.store.count(ctx, `SELECT COUNT(*) FROM tickets WHERE user_id = $1`, userID)
}

func (r *TicketRepository) RevenueByEvent(ctx context.Context, eventID int64) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.store.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price), 0) FROM tickets WHERE event_id = $1`, eventID).Scan(&revenue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return revenue, nil
}
