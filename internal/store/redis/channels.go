package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// SetChannel binds a guild to the channel receiving notifications.
func (s *Store) SetChannel(ctx context.Context, guildID, channelID string) error {
	data, err := json.Marshal(domain.ChannelBinding{
		GuildID:   guildID,
		ChannelID: channelID,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return persistenceErr("encode channel binding", err)
	}
	if err := s.client.HSet(ctx, KeyChannels, guildID, data).Err(); err != nil {
		return persistenceErr("save channel binding", err)
	}
	return nil
}

// ChannelFor returns the channel bound to a guild.
func (s *Store) ChannelFor(ctx context.Context, guildID string) (string, bool, error) {
	data, err := s.client.HGet(ctx, KeyChannels, guildID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, persistenceErr("get channel binding", err)
	}

	var b domain.ChannelBinding
	if err := json.Unmarshal(data, &b); err != nil {
		return "", false, persistenceErr("decode channel binding", err)
	}
	return b.ChannelID, b.ChannelID != "", nil
}

// Channels returns every guild -> channel binding.
func (s *Store) Channels(ctx context.Context) (map[string]string, error) {
	raw, err := s.client.HGetAll(ctx, KeyChannels).Result()
	if err != nil {
		return nil, persistenceErr("list channel bindings", err)
	}

	out := make(map[string]string, len(raw))
	for guild, data := range raw {
		var b domain.ChannelBinding
		if err := json.Unmarshal([]byte(data), &b); err != nil || b.ChannelID == "" {
			// Skip bindings that couldn't be decoded
			continue
		}
		out[guild] = b.ChannelID
	}
	return out, nil
}
