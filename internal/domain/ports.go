package domain

import (
	"context"
	"time"
)

// WatermarkStore persists the last notified post per category.
// Reads and writes are atomic per key, last write wins.
type WatermarkStore interface {
	GetLast(ctx context.Context, category Category) (Watermark, bool, error)
	SetLast(ctx context.Context, category Category, url string) error
}

// TranslationCache is a content-addressed, TTL-bounded cache.
//
// AddTranslation is a read-modify-write without cross-process locking:
// concurrent calls on the same key may lose an update.
type TranslationCache interface {
	Put(ctx context.Context, key, original string, translations map[string]string, meta EntryMetadata) error
	Get(ctx context.Context, key string) (*TranslationEntry, error)
	AddTranslation(ctx context.Context, key, language, text string) error
}

// ChannelDirectory stores which channel each guild receives notifications in.
type ChannelDirectory interface {
	SetChannel(ctx context.Context, guildID, channelID string) error
	ChannelFor(ctx context.Context, guildID string) (string, bool, error)
	Channels(ctx context.Context) (map[string]string, error)
}

// Clock returns the current time. Stores take one so TTLs are testable.
type Clock func() time.Time
