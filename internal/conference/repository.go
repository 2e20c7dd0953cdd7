package conference

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/pkg/database"
)

// Repository handles conference reference-data persistence: sessions,
// speakers, rooms, categories and the junction tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a conference repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession inserts a session. An empty ID gets a generated UUID.
func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = "draft"
	}
	const q = `INSERT INTO sessions (id, title, description, starts_at, ends_at, room_id, is_service_session, is_plenum_session, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.ID, s.Title, s.Description, s.StartsAt, s.EndsAt, s.RoomID, s.IsServiceSession, s.IsPlenumSession, s.Status).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

// UpsertSession inserts or updates a session, preserving its upstream id.
func (r *Repository) UpsertSession(ctx context.Context, s *models.Session) error {
	if s.Status == "" {
		s.Status = "draft"
	}
	const q = `INSERT INTO sessions (id, title, description, starts_at, ends_at, room_id, is_service_session, is_plenum_session, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			room_id = EXCLUDED.room_id,
			is_service_session = EXCLUDED.is_service_session,
			is_plenum_session = EXCLUDED.is_plenum_session,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.ID, s.Title, s.Description, s.StartsAt, s.EndsAt, s.RoomID, s.IsServiceSession, s.IsPlenumSession, s.Status).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetSession returns a session by id.
func (r *Repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const q = `SELECT id, title, description, starts_at, ends_at, room_id, is_service_session, is_plenum_session, status, created_at, updated_at
		FROM sessions WHERE id = $1`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Title, &s.Description, &s.StartsAt, &s.EndsAt, &s.RoomID, &s.IsServiceSession, &s.IsPlenumSession, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSessions returns all sessions ordered by start time.
func (r *Repository) ListSessions(ctx context.Context) ([]models.Session, error) {
	const q = `SELECT id, title, description, starts_at, ends_at, room_id, is_service_session, is_plenum_session, status, created_at, updated_at
		FROM sessions ORDER BY starts_at, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.StartsAt, &s.EndsAt, &s.RoomID, &s.IsServiceSession, &s.IsPlenumSession, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CreateRoom inserts a room and returns its generated id.
func (r *Repository) CreateRoom(ctx context.Context, room *models.Room) error {
	const q = `INSERT INTO rooms (name, sort_order) VALUES ($1, $2) RETURNING id`
	return r.pool.QueryRow(ctx, q, room.Name, room.SortOrder).Scan(&room.ID)
}

// UpsertRoom inserts or updates a room under its upstream id. The id sequence
// is bumped past the explicit id in the same transaction so later CreateRoom
// calls cannot be handed an id the sync already took.
func (r *Repository) UpsertRoom(ctx context.Context, room *models.Room) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO rooms (id, name, sort_order) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order`
	if _, err := tx.Exec(ctx, q, room.ID, room.Name, room.SortOrder); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('rooms', 'id'), (SELECT GREATEST(MAX(id), 1) FROM rooms))`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListRooms returns all rooms ordered by sort order.
func (r *Repository) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sort_order FROM rooms ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.SortOrder); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}

// CreateSpeaker inserts a speaker. An empty ID gets a generated UUID.
func (r *Repository) CreateSpeaker(ctx context.Context, s *models.Speaker) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	const q = `INSERT INTO speakers (id, first_name, last_name, bio, tagline, profile_picture, is_top_speaker)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, q, s.ID, s.FirstName, s.LastName, s.Bio, s.Tagline, s.ProfilePicture, s.IsTopSpeaker)
	return err
}

// UpsertSpeaker inserts or updates a speaker, preserving its upstream id.
func (r *Repository) UpsertSpeaker(ctx context.Context, s *models.Speaker) error {
	const q = `INSERT INTO speakers (id, first_name, last_name, bio, tagline, profile_picture, is_top_speaker)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			bio = EXCLUDED.bio,
			tagline = EXCLUDED.tagline,
			profile_picture = EXCLUDED.profile_picture,
			is_top_speaker = EXCLUDED.is_top_speaker`
	_, err := r.pool.Exec(ctx, q, s.ID, s.FirstName, s.LastName, s.Bio, s.Tagline, s.ProfilePicture, s.IsTopSpeaker)
	return err
}

// ListSpeakers returns all speakers ordered by last name.
func (r *Repository) ListSpeakers(ctx context.Context) ([]models.Speaker, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, first_name, last_name, bio, tagline, profile_picture, is_top_speaker FROM speakers ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Speaker
	for rows.Next() {
		var s models.Speaker
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Bio, &s.Tagline, &s.ProfilePicture, &s.IsTopSpeaker); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CreateCategory inserts a category and returns its generated id.
func (r *Repository) CreateCategory(ctx context.Context, cat *models.Category) error {
	const q = `INSERT INTO categories (title, sort_order, type) VALUES ($1, $2, $3) RETURNING id`
	return r.pool.QueryRow(ctx, q, cat.Title, cat.SortOrder, cat.Type).Scan(&cat.ID)
}

// UpsertCategory inserts or updates a category under its upstream id, bumping
// the id sequence the same way UpsertRoom does.
func (r *Repository) UpsertCategory(ctx context.Context, cat *models.Category) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO categories (id, title, sort_order, type) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, sort_order = EXCLUDED.sort_order, type = EXCLUDED.type`
	if _, err := tx.Exec(ctx, q, cat.ID, cat.Title, cat.SortOrder, cat.Type); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT GREATEST(MAX(id), 1) FROM categories))`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListCategories returns all categories ordered by sort order.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, sort_order, type FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.SortOrder, &cat.Type); err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

// AddSessionSpeaker links a speaker to a session. Both sides are checked
// inside the same transaction as the insert so the relation cannot race a
// concurrent delete. Returns ErrSessionNotFound, ErrSpeakerNotFound or
// ErrDuplicateRelation accordingly.
func (r *Repository) AddSessionSpeaker(ctx context.Context, sessionID, speakerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM speakers WHERE id = $1)`, speakerID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrSpeakerNotFound
	}
	if _, err := tx.Exec(ctx, `INSERT INTO session_speakers (session_id, speaker_id) VALUES ($1, $2)`, sessionID, speakerID); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateRelation
		}
		return err
	}
	return tx.Commit(ctx)
}

// AddSessionCategory links a category to a session. Same contract as
// AddSessionSpeaker.
func (r *Repository) AddSessionCategory(ctx context.Context, sessionID string, categoryID int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrCategoryNotFound
	}
	if _, err := tx.Exec(ctx, `INSERT INTO session_categories (session_id, category_id) VALUES ($1, $2)`, sessionID, categoryID); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateRelation
		}
		return err
	}
	return tx.Commit(ctx)
}

// UpsertSessionSpeaker links a speaker to a session, ignoring duplicates.
// Used by the upstream sync, which re-applies the full relation set on every
// run.
func (r *Repository) UpsertSessionSpeaker(ctx context.Context, sessionID, speakerID string) error {
	const q = `INSERT INTO session_speakers (session_id, speaker_id) VALUES ($1, $2)
		ON CONFLICT (session_id, speaker_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, sessionID, speakerID)
	return err
}

// UpsertSessionCategory links a category to a session, ignoring duplicates.
// Sync counterpart of AddSessionCategory.
func (r *Repository) UpsertSessionCategory(ctx context.Context, sessionID string, categoryID int) error {
	const q = `INSERT INTO session_categories (session_id, category_id) VALUES ($1, $2)
		ON CONFLICT (session_id, category_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, sessionID, categoryID)
	return err
}

// SessionSpeakerMap returns speaker ids grouped per session.
func (r *Repository) SessionSpeakerMap(ctx context.Context) (map[string][]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT session_id, speaker_id FROM session_speakers ORDER BY session_id, speaker_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[string][]string)
	for rows.Next() {
		var sessionID, speakerID string
		if err := rows.Scan(&sessionID, &speakerID); err != nil {
			return nil, err
		}
		m[sessionID] = append(m[sessionID], speakerID)
	}
	return m, rows.Err()
}

// SessionCategoryMap returns category ids grouped per session.
func (r *Repository) SessionCategoryMap(ctx context.Context) (map[string][]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT session_id, category_id FROM session_categories ORDER BY session_id, category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[string][]int)
	for rows.Next() {
		var sessionID string
		var categoryID int
		if err := rows.Scan(&sessionID, &categoryID); err != nil {
			return nil, err
		}
		m[sessionID] = append(m[sessionID], categoryID)
	}
	return m, rows.Err()
}

// ConferenceData assembles the full denormalized dataset served to clients.
func (r *Repository) ConferenceData(ctx context.Context) (*models.ConferenceData, error) {
	sessions, err := r.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	speakers, err := r.ListSpeakers(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := r.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	speakerMap, err := r.SessionSpeakerMap(ctx)
	if err != nil {
		return nil, err
	}
	categoryMap, err := r.SessionCategoryMap(ctx)
	if err != nil {
		return nil, err
	}

	data := &models.ConferenceData{
		Sessions:   make([]models.SessionWithRelations, 0, len(sessions)),
		Speakers:   speakers,
		Rooms:      rooms,
		Categories: categories,
	}
	for _, s := range sessions {
		data.Sessions = append(data.Sessions, models.SessionWithRelations{
			Session:     s,
			SpeakerIDs:  speakerMap[s.ID],
			CategoryIDs: categoryMap[s.ID],
		})
	}
	return data, nil
}
