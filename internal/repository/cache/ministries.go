// internal/repository/cache/ministries.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

const DefaultTTL = 10 * time.Minute

// MinistryRepository serves the active ministry list from Redis and falls back to the
// wrapped repository on a miss. Redis errors never fail a lookup.
type MinistryRepository struct {
	next   pipeline.MinistryRepository
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

var _ pipeline.MinistryRepository = (*MinistryRepository)(nil)

func NewMinistryRepository(next pipeline.MinistryRepository, client redis.Cmdable, ttl time.Duration, log logger.Logger) *MinistryRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &MinistryRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "ministry-cache"}),
	}
}

func Key(tenantID string) string {
	return "ministries:" + tenantID
}

func (c *MinistryRepository) ListActiveMinistries(ctx context.Context, tenantID string) ([]models.Ministry, error) {
	key := Key(tenantID)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var ministries []models.Ministry
		if jsonErr := json.Unmarshal([]byte(val), &ministries); jsonErr == nil {
			c.logger.Debug("ministry cache hit", map[string]interface{}{"tenantId": tenantID})
			return ministries, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("ministry cache unavailable", map[string]interface{}{"key": key, "error": err.Error()})
	}

	ministries, err := c.next.ListActiveMinistries(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ministries)
	if err != nil {
		return ministries, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache ministries", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return ministries, nil
}

// Invalidate drops the cached list for a tenant.
func (c *MinistryRepository) Invalidate(ctx context.Context, tenantID string) error {
	return c.redis.Del(ctx, Key(tenantID)).Err()
}
