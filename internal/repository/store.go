package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/database"
)

type scanner interface {
	Scan(dest ...any) error
}

// table describes how one entity maps onto its Postgres table.
// columns lists every column except id, in the order values returns them.
type table[T any] struct {
	name    string
	columns []string
	scan    func(row scanner) (*T, error)
	values  func(item *T) []any
	id      func(item *T) int64
	setID   func(item *T, id int64)
}

func (t table[T]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

// Store is the generic CRUD part every entity repository shares.
type Store[T any] struct {
	db *database.DB
	t  table[T]
}

func newStore[T any](db *database.DB, t table[T]) *Store[T] {
	return &Store[T]{db: db, t: t}
}

// GetByID returns nil, nil when the row does not exist.
func (s *Store[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", s.t.selectList(), s.t.name)

	item, err := s.t.scan(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.t.name, id, err)
	}
	return item, nil
}

func (s *Store[T]) Create(ctx context.Context, item *T) error {
	placeholders := make([]string, len(s.t.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.t.name, strings.Join(s.t.columns, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := s.db.QueryRowContext(ctx, query, s.t.values(item)...).Scan(&id); err != nil {
		return translate(err)
	}
	s.t.setID(item, id)
	return nil
}

// Update reports false when no row has the item's id.
func (s *Store[T]) Update(ctx context.Context, item *T) (bool, error) {
	sets := make([]string, len(s.t.columns))
	for i, col := range s.t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args := append(s.t.values(item), s.t.id(item))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		s.t.name, strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete reports false when no row has the id.
func (s *Store[T]) Delete(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.t.name)

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", s.t.selectList(), s.t.name)
	return s.query(ctx, query)
}

func (s *Store[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.t.name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := s.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.t.name, err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *Store[T]) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.t.name, err)
	}
	return n, nil
}
