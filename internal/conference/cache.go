package conference

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/models"
)

const datasetKey = "conference:dataset"

// Cache holds the denormalized conference dataset in Redis so GET /conference
// does not hit PostgreSQL on every poll. Invalidated explicitly after the
// upstream sync and after admin mutations of reference data.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a dataset cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached dataset, or nil on miss. Cache errors are treated
// as misses: the dataset can always be rebuilt from the database.
func (c *Cache) Get(ctx context.Context) *models.ConferenceData {
	raw, err := c.client.Get(ctx, datasetKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("conference cache read failed", zap.Error(err))
		}
		return nil
	}
	var data models.ConferenceData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("conference cache decode failed", zap.Error(err))
		return nil
	}
	return &data
}

// Set stores the dataset.
func (c *Cache) Set(ctx context.Context, data *models.ConferenceData) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("conference cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, datasetKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("conference cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached dataset.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, datasetKey).Err(); err != nil {
		c.logger.Warn("conference cache invalidate failed", zap.Error(err))
	}
}
