// Package redis persists watermarks, translation cache entries and channel
// bindings in Redis. Values are JSON documents under prefixed keys.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// DefaultCacheTTL is the lifespan of a translation cache entry.
const DefaultCacheTTL = time.Hour

// Store implements domain.WatermarkStore, domain.TranslationCache and
// domain.ChannelDirectory on top of a Redis client.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    domain.Clock
}

// Option customizes a Store.
type Option func(*Store)

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now domain.Clock) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		ttl:    DefaultCacheTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
