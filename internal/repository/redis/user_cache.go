package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
)

const userPrefix = "tastetracker:user:"

// UserCache is a read-through cache in front of a UserRepository. Redis
// errors are logged and the request falls through to the repository.
type UserCache struct {
	client redis.UniversalClient
	next   repository.UserRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewUserCache wraps next with a Redis cache whose entries live for ttl.
func NewUserCache(client redis.UniversalClient, next repository.UserRepository, ttl time.Duration, logger *slog.Logger) *UserCache {
	return &UserCache{client: client, next: next, ttl: ttl, logger: logger}
}

// Upsert writes through to the repository and drops the cached entry.
func (c *UserCache) Upsert(ctx context.Context, u *domain.UserProfile) error {
	if err := c.next.Upsert(ctx, u); err != nil {
		return err
	}
	if err := c.client.Del(ctx, userPrefix+u.ID).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate cached user",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ListByIDs serves what it can from Redis and loads the rest.
func (c *UserCache) ListByIDs(ctx context.Context, ids []string) (map[string]domain.UserProfile, error) {
	out := make(map[string]domain.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := c.fromCache(ctx, ids, out)
	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := c.next.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for id, u := range loaded {
		out[id] = u
		data, err := json.Marshal(u)
		if err != nil {
			return nil, fmt.Errorf("marshal user: %w", err)
		}
		pipe.Set(ctx, userPrefix+id, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to cache users",
			slog.Int("count", len(loaded)),
			slog.String("error", err.Error()),
		)
	}
	return out, nil
}

// fromCache fills out with cached profiles and returns the ids not found.
func (c *UserCache) fromCache(ctx context.Context, ids []string, out map[string]domain.UserProfile) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userPrefix + id
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "user cache unavailable",
			slog.String("error", err.Error()),
		)
		return ids
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var u domain.UserProfile
		if err := json.Unmarshal([]byte(s), &u); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = u
	}
	return missing
}

var _ repository.UserRepository = (*UserCache)(nil)
