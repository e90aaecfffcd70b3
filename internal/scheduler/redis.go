package scheduler

import (
	"context"
	"fmt"
	"time"

	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const deadlineKey = "cinetix:booking_deadlines"

// Lua script that atomically pops all entries due at or before now. Popping
// and removing in one script means two worker instances never hand the same
// entry to their handlers for the same sweep.
const luaPopDue = `
-- KEYS[1] = deadline zset
-- ARGV[1] = now (unix seconds)
-- ARGV[2] = batch size

local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, ARGV[2])
if #due > 0 then
    redis.call("ZREM", KEYS[1], unpack(due))
end
return due
`

// RedisScheduler stores booking deadlines in a Redis sorted set scored by
// due time. Entries persist across restarts, giving the at-least-once
// durable-timer guarantee the reservation flow depends on.
type RedisScheduler struct {
	client *redis.Client

	pollInterval time.Duration
	retryDelay   time.Duration
	batchSize    int
	done         chan struct{}
}

func NewRedisScheduler(client *redis.Client, pollInterval time.Duration) *RedisScheduler {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &RedisScheduler{
		client:       client,
		pollInterval: pollInterval,
		retryDelay:   30 * time.Second,
		batchSize:    100,
		done:         make(chan struct{}),
	}
}

// Schedule registers a deadline for the booking
func (s *RedisScheduler) Schedule(ctx context.Context, at time.Time, bookingID uuid.UUID) error {
	err := s.client.ZAdd(ctx, deadlineKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: bookingID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule deadline: %w", err)
	}
	return nil
}

// Start runs the polling worker until ctx is cancelled or Stop is called.
// Handler failures push the entry back with a retry delay so a release is
// never dropped.
func (s *RedisScheduler) Start(ctx context.Context, handler Handler) {
	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		logger.GetDefault().Info("expiry scheduler started", "poll_interval", s.pollInterval.String())

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx, handler)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the polling worker
func (s *RedisScheduler) Stop() {
	close(s.done)
}

// sweep pops due entries and dispatches them to the handler
func (s *RedisScheduler) sweep(ctx context.Context, handler Handler) {
	now := time.Now()

	result, err := s.client.Eval(ctx, luaPopDue, []string{deadlineKey},
		now.Unix(), s.batchSize).Result()
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to pop due deadlines", err, nil)
		return
	}

	members, ok := result.([]interface{})
	if !ok {
		logger.GetDefault().Error("unexpected redis response for due deadlines")
		return
	}

	for _, member := range members {
		raw, ok := member.(string)
		if !ok {
			continue
		}

		bookingID, err := uuid.Parse(raw)
		if err != nil {
			logger.GetDefault().Error("invalid booking id in deadline set", "member", raw)
			continue
		}

		if err := handler(ctx, bookingID); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "expiry handler failed, requeueing", err, map[string]interface{}{
				"booking_id": bookingID.String(),
			})
			// Re-add with a delay instead of dropping the release.
			if reErr := s.Schedule(ctx, now.Add(s.retryDelay), bookingID); reErr != nil {
				logger.GetDefault().ErrorWithContext(ctx, "failed to requeue deadline", reErr, map[string]interface{}{
					"booking_id": bookingID.String(),
				})
			}
		}
	}
}
