package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/quiz-backend/rpc"
)

func TestStatsKey(t *testing.T) {
	if got := statsKey("user001"); got != "quiz:stats:user001" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRedisStatsUnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisStats(client, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, "u", rpc.Stats{TotalQuestions: 1})
	if _, ok := c.Get(ctx, "u"); ok {
		t.Fatalf("expected miss when redis is down")
	}
	c.Invalidate(ctx, "u")
}
