package feedback

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcompanion/backend/internal/models"
)

// Repository handles feedback persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert writes feedback, overwriting any earlier feedback by the same user
// for the same session.
func (r *Repository) Upsert(ctx context.Context, f *models.Feedback) error {
	const q = `INSERT INTO feedback (user_token, session_id, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_token, session_id) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, q, f.UserToken, f.SessionID, f.Value, f.UpdatedAt)
	return err
}

// ListAll returns all feedback rows ordered per session.
func (r *Repository) ListAll(ctx context.Context) ([]models.Feedback, error) {
	const q = `SELECT user_token, session_id, value, updated_at FROM feedback ORDER BY session_id, updated_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.UserToken, &f.SessionID, &f.Value, &f.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
