package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Brodino96/TasteTracker/internal/review"
)

const lockPrefix = "tastetracker:submit-lock:"

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another submission is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// SubmissionLock is a review.Guard shared by every instance pointed at the
// same Redis. Locks expire after ttl even if never released.
type SubmissionLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewSubmissionLock creates a Redis-backed submission guard.
func NewSubmissionLock(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *SubmissionLock {
	return &SubmissionLock{client: client, ttl: ttl, logger: logger}
}

// Acquire implements review.Guard with SET NX PX.
func (l *SubmissionLock) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := lockPrefix + key
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", redisKey, err)
	}
	if !ok {
		return nil, review.ErrGuardHeld
	}

	return func() {
		// The request context may already be cancelled by the time the
		// submission resolves.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		err := releaseScript.Run(relCtx, l.client, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.WarnContext(ctx, "failed to release submission lock",
				slog.String("key", redisKey),
				slog.String("error", err.Error()),
			)
		}
	}, nil
}

var _ review.Guard = (*SubmissionLock)(nil)
