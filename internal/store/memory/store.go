// Package memory is an in-process store for single-instance deployments
// and tests. It honors the same TTL semantics as the Redis store.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Store implements domain.WatermarkStore, domain.TranslationCache and
// domain.ChannelDirectory with mutex-guarded maps.
type Store struct {
	mu         sync.RWMutex
	watermarks map[domain.Category]domain.Watermark
	entries    map[string]domain.TranslationEntry
	channels   map[string]domain.ChannelBinding

	ttl time.Duration
	now domain.Clock
}

// New returns an empty store. A nil clock means time.Now.
func New(ttl time.Duration, now domain.Clock) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		watermarks: make(map[domain.Category]domain.Watermark),
		entries:    make(map[string]domain.TranslationEntry),
		channels:   make(map[string]domain.ChannelBinding),
		ttl:        ttl,
		now:        now,
	}
}

func (s *Store) GetLast(_ context.Context, category domain.Category) (domain.Watermark, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wm, ok := s.watermarks[category]
	return wm, ok, nil
}

func (s *Store) SetLast(_ context.Context, category domain.Category, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermarks[category] = domain.Watermark{Category: category, URL: url, SeenAt: s.now().UTC()}
	return nil
}

func (s *Store) Put(_ context.Context, key, original string, translations map[string]string, meta domain.EntryMetadata) error {
	now := s.now().UTC()
	tr := maps.Clone(translations)
	if tr == nil {
		tr = map[string]string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = domain.TranslationEntry{
		Key:          key,
		Original:     original,
		Translations: tr,
		Metadata:     meta,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	return nil
}

// Get returns a copy of a live entry. Expired entries are evicted lazily.
func (s *Store) Get(_ context.Context, key string) (*domain.TranslationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.live(key)
	if err != nil {
		return nil, err
	}
	entry.Translations = maps.Clone(entry.Translations)
	return &entry, nil
}

// AddTranslation keeps the entry's original expiry.
func (s *Store) AddTranslation(_ context.Context, key, language, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.live(key)
	if err != nil {
		return err
	}
	tr := maps.Clone(entry.Translations)
	if tr == nil {
		tr = map[string]string{}
	}
	tr[language] = text
	entry.Translations = tr
	s.entries[key] = entry
	return nil
}

// live must be called with mu held for writing.
func (s *Store) live(key string) (domain.TranslationEntry, error) {
	entry, ok := s.entries[key]
	if !ok {
		return domain.TranslationEntry{}, fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
	}
	if entry.Expired(s.now()) {
		delete(s.entries, key)
		return domain.TranslationEntry{}, fmt.Errorf("%w: %s", domain.ErrCacheMiss, key)
	}
	return entry, nil
}

// Sweep drops every expired cache entry and returns how many were removed.
func (s *Store) Sweep(_ context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) SetChannel(_ context.Context, guildID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[guildID] = domain.ChannelBinding{GuildID: guildID, ChannelID: channelID, UpdatedAt: s.now().UTC()}
	return nil
}

func (s *Store) ChannelFor(_ context.Context, guildID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.channels[guildID]
	return b.ChannelID, ok, nil
}

func (s *Store) Channels(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.channels))
	for guild, b := range s.channels {
		out[guild] = b.ChannelID
	}
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
