package podcast

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcompanion/backend/internal/models"
)

// Repository handles podcast persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a podcast repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Import upserts one channel with its categories and episodes as a single
// transaction: either the whole import lands or none of it does. Channels
// are keyed by (title, link), episodes by guid, categories by
// (channel, name), so re-importing the same feed never duplicates rows.
func (r *Repository) Import(ctx context.Context, ch *models.PodcastChannel, categories []string, episodes []models.PodcastEpisode) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const channelQ = `INSERT INTO podcast_channels (title, link, description, copyright, language, author, owner_email, owner_name, image_url, last_build_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (title, link) DO UPDATE SET
			description = EXCLUDED.description,
			copyright = EXCLUDED.copyright,
			language = EXCLUDED.language,
			author = EXCLUDED.author,
			owner_email = EXCLUDED.owner_email,
			owner_name = EXCLUDED.owner_name,
			image_url = EXCLUDED.image_url,
			last_build_date = EXCLUDED.last_build_date
		RETURNING id`
	if err := tx.QueryRow(ctx, channelQ,
		ch.Title, ch.Link, ch.Description, ch.Copyright, ch.Language, ch.Author,
		ch.OwnerEmail, ch.OwnerName, ch.ImageURL, ch.LastBuildDate,
	).Scan(&ch.ID); err != nil {
		return 0, fmt.Errorf("upsert channel: %w", err)
	}

	const categoryQ = `INSERT INTO podcast_categories (channel_id, name) VALUES ($1, $2)
		ON CONFLICT (channel_id, name) DO NOTHING`
	for _, name := range categories {
		if _, err := tx.Exec(ctx, categoryQ, ch.ID, name); err != nil {
			return 0, fmt.Errorf("upsert category %q: %w", name, err)
		}
	}

	const episodeQ = `INSERT INTO podcast_episodes (channel_id, guid, title, description, link, pub_date, duration_sec, explicit, image_url, media_url, media_type, media_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (guid) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			link = EXCLUDED.link,
			pub_date = EXCLUDED.pub_date,
			duration_sec = EXCLUDED.duration_sec,
			explicit = EXCLUDED.explicit,
			image_url = EXCLUDED.image_url,
			media_url = EXCLUDED.media_url,
			media_type = EXCLUDED.media_type,
			media_length = EXCLUDED.media_length`
	for _, e := range episodes {
		if _, err := tx.Exec(ctx, episodeQ,
			ch.ID, e.GUID, e.Title, e.Description, e.Link, e.PubDate, e.DurationSec,
			e.Explicit, e.ImageURL, e.MediaURL, e.MediaType, e.MediaLength,
		); err != nil {
			return 0, fmt.Errorf("upsert episode %q: %w", e.GUID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return ch.ID, nil
}

// ListChannels returns all channels denormalized with categories, episodes
// and aggregate stats.
func (r *Repository) ListChannels(ctx context.Context) ([]models.PodcastChannelExport, error) {
	const channelQ = `SELECT id, title, link, description, copyright, language, author, owner_email, owner_name, image_url, last_build_date
		FROM podcast_channels ORDER BY id`
	rows, err := r.pool.Query(ctx, channelQ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []models.PodcastChannelExport
	index := make(map[int]int)
	for rows.Next() {
		var ch models.PodcastChannel
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Link, &ch.Description, &ch.Copyright, &ch.Language, &ch.Author, &ch.OwnerEmail, &ch.OwnerName, &ch.ImageURL, &ch.LastBuildDate); err != nil {
			return nil, err
		}
		index[ch.ID] = len(exports)
		exports = append(exports, models.PodcastChannelExport{
			PodcastChannel: ch,
			Categories:     []string{},
			Episodes:       []models.PodcastEpisode{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := r.pool.Query(ctx, `SELECT channel_id, name FROM podcast_categories ORDER BY channel_id, name`)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var channelID int
		var name string
		if err := catRows.Scan(&channelID, &name); err != nil {
			return nil, err
		}
		if i, ok := index[channelID]; ok {
			exports[i].Categories = append(exports[i].Categories, name)
		}
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	const episodeQ = `SELECT id, channel_id, guid, title, description, link, pub_date, duration_sec, explicit, image_url, media_url, media_type, media_length
		FROM podcast_episodes ORDER BY channel_id, pub_date`
	epRows, err := r.pool.Query(ctx, episodeQ)
	if err != nil {
		return nil, err
	}
	defer epRows.Close()
	for epRows.Next() {
		var e models.PodcastEpisode
		if err := epRows.Scan(&e.ID, &e.ChannelID, &e.GUID, &e.Title, &e.Description, &e.Link, &e.PubDate, &e.DurationSec, &e.Explicit, &e.ImageURL, &e.MediaURL, &e.MediaType, &e.MediaLength); err != nil {
			return nil, err
		}
		i, ok := index[e.ChannelID]
		if !ok {
			continue
		}
		exp := &exports[i]
		exp.Episodes = append(exp.Episodes, e)
		exp.EpisodeCount++
		pub := e.PubDate
		if exp.EarliestPubDate == nil || pub.Before(*exp.EarliestPubDate) {
			p := pub
			exp.EarliestPubDate = &p
		}
		if exp.LatestPubDate == nil || pub.After(*exp.LatestPubDate) {
			p := pub
			exp.LatestPubDate = &p
		}
	}
	return exports, epRows.Err()
}
