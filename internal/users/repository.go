package users

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcompanion/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a user row keyed by token. Returns false without touching
// the stored row (or its timestamp) when the token is already registered.
func (r *Repository) Create(ctx context.Context, token string, createdAt time.Time) (bool, error) {
	const q = `INSERT INTO users (token, created_at) VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, token, createdAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether a token is registered.
func (r *Repository) Exists(ctx context.Context, token string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE token = $1)`
	var ok bool
	err := r.pool.QueryRow(ctx, q, token).Scan(&ok)
	return ok, err
}

// Get returns a user by token.
func (r *Repository) Get(ctx context.Context, token string) (*models.User, error) {
	const q = `SELECT token, created_at FROM users WHERE token = $1`
	var u models.User
	if err := r.pool.QueryRow(ctx, q, token).Scan(&u.Token, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
