package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"storytime/pkg/domain"
)

const feedCacheKey = "stories:feed:recent"

// FeedCache caches the public recent-stories feed.
type FeedCache interface {
	Get(ctx context.Context) ([]domain.Story, bool, error)
	Set(ctx context.Context, stories []domain.Story) error
	Invalidate(ctx context.Context) error
}

// RedisFeedCache keeps the rendered feed in Redis with a short TTL so the
// public listing does not hit the database on every request.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFeedCache builds a Redis-backed feed cache.
func NewRedisFeedCache(addr, password string, ttl time.Duration) *RedisFeedCache {
	return &RedisFeedCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// Get returns the cached feed, reporting a miss when absent.
func (c *RedisFeedCache) Get(ctx context.Context) ([]domain.Story, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	raw, err := c.client.Get(ctx, feedCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stories []domain.Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		// Corrupt entry: treat as a miss so the next Set repairs it.
		return nil, false, nil
	}
	return stories, true, nil
}

// Set stores the feed with the configured TTL.
func (c *RedisFeedCache) Set(ctx context.Context, stories []domain.Story) error {
	raw, err := json.Marshal(stories)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.client.Set(ctx, feedCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached feed, typically after a new story is published.
func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.client.Del(ctx, feedCacheKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
