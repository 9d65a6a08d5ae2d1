// Package cache keeps per-user stats in Redis between submissions.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/quiz-backend/rpc"
)

const statsKeyPrefix = "quiz:stats:"

// RedisStats is a read-through cache. Redis errors count as misses; the
// caller always has the datastore to fall back on.
type RedisStats struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisStats(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisStats {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisStats{client: client, ttl: ttl, log: log}
}

// Connect dials addr and checks it answers PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func statsKey(userID string) string { return statsKeyPrefix + userID }

func (c *RedisStats) Get(ctx context.Context, userID string) (rpc.Stats, bool) {
	raw, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rpc.Stats{}, false
	}
	if err != nil {
		c.log.WarnContext(ctx, "stats cache read failed", "user_id", userID, "error", err)
		return rpc.Stats{}, false
	}
	var st rpc.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		return rpc.Stats{}, false
	}
	if st.BySubject == nil {
		st.BySubject = map[string]rpc.SubjectStats{}
	}
	return st, true
}

func (c *RedisStats) Set(ctx context.Context, userID string, st rpc.Stats) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "stats cache write failed", "user_id", userID, "error", err)
	}
}

func (c *RedisStats) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		c.log.WarnContext(ctx, "stats cache invalidate failed", "user_id", userID, "error", err)
	}
}
