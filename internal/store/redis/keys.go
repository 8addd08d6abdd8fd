package redis

import "github.com/MrSnakeDoc/boardwatch/internal/domain"

const (
	// KeyPrefixWatermark is the prefix for per-category watermark keys
	KeyPrefixWatermark = "boardwatch:watermark:"
	// KeyPrefixCache is the prefix for translation cache keys
	KeyPrefixCache = "boardwatch:cache:"
	// KeyChannels is the hash of guild id -> channel binding
	KeyChannels = "boardwatch:channels"
)

// WatermarkKey returns the Redis key for a category watermark
func WatermarkKey(category domain.Category) string {
	return KeyPrefixWatermark + category.Slug()
}

// CacheKey returns the Redis key for a translation cache entry
func CacheKey(key string) string {
	return KeyPrefixCache + key
}
