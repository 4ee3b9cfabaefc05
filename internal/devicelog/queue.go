// Package devicelog is the best-effort "last used device" bookkeeping that
// rides along with attendance marking. Sightings are queued by the API and
// applied by the worker; a lost sighting never fails a scan.
package devicelog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrFull reports a dropped sighting. Callers log it at most; a full queue
// must never hold up the request that produced the sighting.
var ErrFull = errors.New("devicelog: queue full, sighting dropped")

// Sighting reports that a student redeemed a session from a device.
type Sighting struct {
	StudentID string    `json:"student_id"`
	DeviceID  string    `json:"device_id"`
	SeenAt    time.Time `json:"seen_at"`
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, s Sighting) error
	Consume(ctx context.Context) (<-chan Sighting, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan Sighting
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Sighting, size)}
}

// Publish enqueues a sighting, dropping it when the buffer is full.
func (q *InMemory) Publish(ctx context.Context, s Sighting) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	select {
	case q.ch <- s:
		return nil
	default:
		return ErrFull
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan Sighting, error) {
	out := make(chan Sighting)
	go func() {
		defer close(out)
		for {
			select {
			case s := <-q.ch:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "rollcall:sightings"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a sighting as JSON.
func (q *RedisQueue) Publish(ctx context.Context, s Sighting) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Consume streams sightings using BRPOP.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Sighting, error) {
	out := make(chan Sighting)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var s Sighting
				if err := json.Unmarshal([]byte(res[1]), &s); err == nil {
					select {
					case out <- s:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}
