package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Put creates or overwrites an entry and restarts its TTL.
func (s *Store) Put(ctx context.Context, key, original string, translations map[string]string, meta domain.EntryMetadata) error {
	now := s.now().UTC()
	entry := domain.TranslationEntry{
		Key:          key,
		Original:     original,
		Translations: maps.Clone(translations),
		Metadata:     meta,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if entry.Translations == nil {
		entry.Translations = map[string]string{}
	}
	return s.write(ctx, &entry, s.ttl)
}

// Get returns a live entry or domain.ErrCacheMiss.
func (s *Store) Get(ctx context.Context, key string) (*domain.TranslationEntry, error) {
	data, err := s.client.Get(ctx, CacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
		}
		return nil, persistenceErr("get cache entry", err)
	}

	var entry domain.TranslationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, persistenceErr("decode cache entry", err)
	}
	// Redis expiry is authoritative; this covers clock skew between writers.
	if entry.Expired(s.now()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
	}
	return &entry, nil
}

// AddTranslation merges one language into an existing entry. The original
// text, metadata and expiry are kept. The write only lands on a key that
// still exists, so an entry expiring mid-update is reported as a miss
// instead of being recreated without a TTL. Concurrent calls on the same
// key are last-write-wins.
func (s *Store) AddTranslation(ctx context.Context, key, language, text string) error {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if entry.Translations == nil {
		entry.Translations = map[string]string{}
	}
	entry.Translations[language] = text

	data, err := json.Marshal(entry)
	if err != nil {
		return persistenceErr("encode cache entry", err)
	}
	err = s.client.SetArgs(ctx, CacheKey(key), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
	}
	if err != nil {
		return persistenceErr("save cache entry", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, entry *domain.TranslationEntry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return persistenceErr("encode cache entry", err)
	}
	if err := s.client.Set(ctx, CacheKey(entry.Key), data, ttl).Err(); err != nil {
		return persistenceErr("save cache entry", err)
	}
	return nil
}
