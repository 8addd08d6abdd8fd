package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// GetLast returns the watermark of a category. ok is false when the
// category was never notified.
func (s *Store) GetLast(ctx context.Context, category domain.Category) (domain.Watermark, bool, error) {
	data, err := s.client.Get(ctx, WatermarkKey(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Watermark{}, false, nil
		}
		return domain.Watermark{}, false, persistenceErr("get watermark", err)
	}

	var wm domain.Watermark
	if err := json.Unmarshal(data, &wm); err != nil {
		return domain.Watermark{}, false, persistenceErr("decode watermark", err)
	}
	return wm, true, nil
}

// SetLast overwrites the watermark of a category. Watermarks never expire.
func (s *Store) SetLast(ctx context.Context, category domain.Category, url string) error {
	data, err := json.Marshal(domain.Watermark{
		Category: category,
		URL:      url,
		SeenAt:   s.now().UTC(),
	})
	if err != nil {
		return persistenceErr("encode watermark", err)
	}

	if err := s.client.Set(ctx, WatermarkKey(category), data, 0).Err(); err != nil {
		return persistenceErr("save watermark", err)
	}
	return nil
}
