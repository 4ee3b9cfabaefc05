package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort redis fast path for token lookups. Entries carry
// a TTL slightly past the validity window; the relational store stays
// authoritative, so every cache failure silently falls through to it.
type Cache struct {
	client *redis.Client
}

// NewCache wraps a redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func cacheKey(token Token) string { return "rollcall:session:" + string(token) }

// Put stores the session for the window plus a minute of slack.
func (c *Cache) Put(ctx context.Context, sess Session, window time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(sess.Token), payload, window+time.Minute)
}

// Get returns the cached session, or nil on miss or any redis error.
func (c *Cache) Get(ctx context.Context, token Token) *Session {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := c.client.Get(ctx, cacheKey(token)).Bytes()
	if err != nil {
		return nil
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil
	}
	return &sess
}
