package votes

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcompanion/backend/internal/models"
)

// Repository handles vote persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a votes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert writes a vote, overwriting any earlier vote by the same user for
// the same session (last write wins).
func (r *Repository) Upsert(ctx context.Context, v *models.Vote) error {
	const q = `INSERT INTO votes (user_token, session_id, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_token, session_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, q, v.UserToken, v.SessionID, v.Score, v.UpdatedAt)
	return err
}

// ListByUser returns all votes cast by one user.
func (r *Repository) ListByUser(ctx context.Context, token string) ([]models.Vote, error) {
	const q = `SELECT session_id, score, updated_at FROM votes WHERE user_token = $1 ORDER BY updated_at`
	rows, err := r.pool.Query(ctx, q, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.SessionID, &v.Score, &v.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// ListAll returns the full vote table for admin export.
func (r *Repository) ListAll(ctx context.Context) ([]models.Vote, error) {
	const q = `SELECT user_token, session_id, score, updated_at FROM votes ORDER BY session_id, user_token`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.UserToken, &v.SessionID, &v.Score, &v.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
