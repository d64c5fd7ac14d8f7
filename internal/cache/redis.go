package cache

import (
	"context"
	"fmt"
	"time"

	"agenthub/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// ViewGate remembers (listing, viewer) pairs for the dedup window so repeat views skip the database.
type ViewGate struct {
	rdb    redis.Cmdable
	window time.Duration
}

func NewViewGate(rdb redis.Cmdable, window time.Duration) *ViewGate {
	return &ViewGate{rdb: rdb, window: window}
}

func viewKey(listingID, viewerID int64) string {
	return fmt.Sprintf("listing:%d:viewer:%d", listingID, viewerID)
}

// Admit returns true when no view of the pair was seen inside the window.
func (g *ViewGate) Admit(ctx context.Context, listingID, viewerID int64) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, viewKey(listingID, viewerID), 1, g.window).Result()
	if err != nil {
		return true, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Forget drops the pair so the next view is checked against the database again.
func (g *ViewGate) Forget(ctx context.Context, listingID, viewerID int64) error {
	if err := g.rdb.Del(ctx, viewKey(listingID, viewerID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
