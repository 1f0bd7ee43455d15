package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mmradar/pkg/errors"
)

// CursorStore persists per-feed pagination cursors for incremental
// disclosure fetching. Implementations must tolerate re-reads: a cursor
// that failed to advance simply causes the next fetch to re-read a page
// (at-least-once), which deduplication absorbs.
type CursorStore interface {
	Get(ctx context.Context, feed string) (string, error)
	Advance(ctx context.Context, feed, cursor string) error
}

// MemoryCursorStore keeps cursors in process memory. Used when Redis is
// not configured; cursors reset on restart, which only costs a re-read.
type MemoryCursorStore struct {
	mu      sync.RWMutex
	cursors map[string]string
}

// NewMemoryCursorStore creates an in-memory cursor store
func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[string]string)}
}

// Get returns the stored cursor for a feed, empty when unknown
func (s *MemoryCursorStore) Get(_ context.Context, feed string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[feed], nil
}

// Advance stores the new cursor for a feed
func (s *MemoryCursorStore) Advance(_ context.Context, feed, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[feed] = cursor
	return nil
}

// RedisCursorStore persists cursors in Redis so incremental feeds
// survive restarts
type RedisCursorStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCursorStore creates a Redis-backed cursor store
func NewRedisCursorStore(client *redis.Client, ttl time.Duration) *RedisCursorStore {
	return &RedisCursorStore{client: client, ttl: ttl}
}

// Get returns the stored cursor for a feed, empty when unknown
func (s *RedisCursorStore) Get(ctx context.Context, feed string) (string, error) {
	val, err := s.client.Get(ctx, cursorKey(feed)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "get cursor %s", feed)
	}
	return val, nil
}

// Advance stores the new cursor for a feed
func (s *RedisCursorStore) Advance(ctx context.Context, feed, cursor string) error {
	if err := s.client.Set(ctx, cursorKey(feed), cursor, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "advance cursor %s", feed)
	}
	return nil
}

func cursorKey(feed string) string {
	return "mmradar:cursor:" + feed
}
