package sessionize

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/models"
)

// Source provides upstream schedule data.
type Source interface {
	FetchSchedule(ctx context.Context) (GridResponse, error)
	FetchSpeakers(ctx context.Context) ([]Speaker, error)
	FetchImage(ctx context.Context, imageID string) (io.ReadCloser, string, error)
}

// SyncStore is the reconciliation surface on the conference repository.
// All operations are upserts keyed by upstream ids, so a sync can run any
// number of times.
type SyncStore interface {
	UpsertRoom(ctx context.Context, room *models.Room) error
	UpsertSession(ctx context.Context, s *models.Session) error
	UpsertSpeaker(ctx context.Context, s *models.Speaker) error
	UpsertCategory(ctx context.Context, cat *models.Category) error
	UpsertSessionSpeaker(ctx context.Context, sessionID, speakerID string) error
	UpsertSessionCategory(ctx context.Context, sessionID string, categoryID int) error
}

// Invalidator drops the conference dataset cache after a sync.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Stats summarizes one sync run. Relations counts both session-speaker and
// session-category links.
type Stats struct {
	Rooms      int `json:"rooms"`
	Sessions   int `json:"sessions"`
	Speakers   int `json:"speakers"`
	Categories int `json:"categories"`
	Relations  int `json:"relations"`
}

// Syncer reconciles the upstream schedule into the local reference tables.
type Syncer struct {
	source Source
	store  SyncStore
	cache  Invalidator
	logger *zap.Logger
}

// NewSyncer creates a schedule syncer. cache may be nil.
func NewSyncer(source Source, store SyncStore, cache Invalidator, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{source: source, store: store, cache: cache, logger: logger}
}

// Sync re-pulls the upstream schedule and upserts rooms, sessions, speakers,
// categories and their session relations, preserving upstream ids throughout.
func (s *Syncer) Sync(ctx context.Context) (*Stats, error) {
	grid, err := s.source.FetchSchedule(ctx)
	if err != nil {
		return nil, err
	}
	speakers, err := s.source.FetchSpeakers(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}

	for _, sp := range speakers {
		speaker := &models.Speaker{
			ID:             sp.ID,
			FirstName:      sp.FirstName,
			LastName:       sp.LastName,
			Bio:            sp.Bio,
			Tagline:        sp.TagLine,
			ProfilePicture: sp.ProfilePicture,
			IsTopSpeaker:   sp.IsTopSpeaker,
		}
		if err := s.store.UpsertSpeaker(ctx, speaker); err != nil {
			return nil, fmt.Errorf("upsert speaker %s: %w", sp.ID, err)
		}
		stats.Speakers++
	}

	seenRooms := make(map[int]bool)
	seenCategories := make(map[int]bool)
	for _, day := range grid {
		for _, room := range day.Rooms {
			if !seenRooms[room.ID] {
				if err := s.store.UpsertRoom(ctx, &models.Room{ID: room.ID, Name: room.Name}); err != nil {
					return nil, fmt.Errorf("upsert room %d: %w", room.ID, err)
				}
				seenRooms[room.ID] = true
				stats.Rooms++
			}

			for _, us := range room.Sessions {
				roomID := us.RoomID
				session := &models.Session{
					ID:               us.ID,
					Title:            us.Title,
					Description:      us.Description,
					StartsAt:         us.StartsAt.Time,
					EndsAt:           us.EndsAt.Time,
					RoomID:           &roomID,
					IsServiceSession: us.IsServiceS,
					IsPlenumSession:  us.IsPlenum,
					Status:           "accepted",
				}
				if err := s.store.UpsertSession(ctx, session); err != nil {
					return nil, fmt.Errorf("upsert session %s: %w", us.ID, err)
				}
				stats.Sessions++

				for _, ref := range us.Speakers {
					if err := s.store.UpsertSessionSpeaker(ctx, us.ID, ref.ID); err != nil {
						return nil, fmt.Errorf("link session %s speaker %s: %w", us.ID, ref.ID, err)
					}
					stats.Relations++
				}

				for _, ref := range us.Categories {
					if !seenCategories[ref.ID] {
						if err := s.store.UpsertCategory(ctx, &models.Category{ID: ref.ID, Title: ref.Name}); err != nil {
							return nil, fmt.Errorf("upsert category %d: %w", ref.ID, err)
						}
						seenCategories[ref.ID] = true
						stats.Categories++
					}
					if err := s.store.UpsertSessionCategory(ctx, us.ID, ref.ID); err != nil {
						return nil, fmt.Errorf("link session %s category %d: %w", us.ID, ref.ID, err)
					}
					stats.Relations++
				}
			}
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.logger.Info("schedule sync finished",
		zap.Int("rooms", stats.Rooms),
		zap.Int("sessions", stats.Sessions),
		zap.Int("speakers", stats.Speakers),
		zap.Int("categories", stats.Categories),
		zap.Int("relations", stats.Relations),
	)
	return stats, nil
}
