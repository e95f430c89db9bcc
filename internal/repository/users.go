package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/database"
	"eventhub/internal/models"
)

var usersTable = table[models.User]{
	name:    "users",
	columns: []string{"name", "email", "password_hash", "role", "created_at"},
	scan: func(row scanner) (*models.User, error) {
		u := &models.User{}
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
		return u, err
	},
	values: func(u *models.User) []any {
		return []any{u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt}
	},
	id:    func(u *models.User) int64 { return u.ID },
	setID: func(u *models.User, id int64) { u.ID = id },
}

type UserRepository struct {
	*Store[models.User]
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{Store: newStore(db, usersTable)}
}

// GetByEmail expects an already normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", r.t.selectList())

	user, err := r.t.scan(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1 ORDER BY id", r.t.selectList())
	return r.query(ctx, query, role)
}
