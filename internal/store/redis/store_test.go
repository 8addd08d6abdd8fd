package redis

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{t: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(client, WithCacheTTL(time.Hour), WithClock(clock.Now)), mr, clock
}

func TestWatermarkRoundTrip(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetLast(ctx, domain.CategoryNotice)
	require.NoError(t, err)
	assert.False(t, ok, "a category never notified has no watermark")

	require.NoError(t, s.SetLast(ctx, domain.CategoryNotice, "https://forum.example/board/1"))
	require.NoError(t, s.SetLast(ctx, domain.CategoryNotice, "https://forum.example/board/2"))

	wm, ok, err := s.GetLast(ctx, domain.CategoryNotice)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://forum.example/board/2", wm.URL)
	assert.Equal(t, domain.CategoryNotice, wm.Category)
	assert.Equal(t, time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC), wm.SeenAt)

	assert.True(t, mr.Exists(WatermarkKey(domain.CategoryNotice)))
	assert.Equal(t, time.Duration(0), mr.TTL(WatermarkKey(domain.CategoryNotice)), "watermarks never expire")
}

func TestCacheRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	meta := domain.EntryMetadata{Title: "Patch Note v2.0", URL: "https://forum.example/board/9"}

	require.NoError(t, s.Put(ctx, "k1", "original text", nil, meta))
	require.NoError(t, s.AddTranslation(ctx, "k1", "es", "texto"))

	entry, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "original text", entry.Original)
	assert.Equal(t, map[string]string{"es": "texto"}, entry.Translations)
	assert.Equal(t, meta, entry.Metadata)
}

func TestCacheAddTranslationKeepsExpiry(t *testing.T) {
	s, mr, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "orig", map[string]string{"pt": "texto"}, domain.EntryMetadata{}))
	created, err := s.Get(ctx, "k1")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	mr.FastForward(30 * time.Minute)
	require.NoError(t, s.AddTranslation(ctx, "k1", "es", "texto es"))

	updated, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, created.ExpiresAt, updated.ExpiresAt)
	assert.Equal(t, 30*time.Minute, mr.TTL(CacheKey("k1")))
	assert.Equal(t, map[string]string{"pt": "texto", "es": "texto es"}, updated.Translations)
}

// expireBeforeSet drops the target key right before a SET reaches the server,
// as if its TTL ran out between the read and the write.
type expireBeforeSet struct {
	mr  *miniredis.Miniredis
	key string
}

func (h expireBeforeSet) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h expireBeforeSet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if strings.EqualFold(cmd.Name(), "set") && len(cmd.Args()) > 1 && cmd.Args()[1] == h.key {
			h.mr.Del(h.key)
		}
		return next(ctx, cmd)
	}
}

func (h expireBeforeSet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestCacheAddTranslationDoesNotRecreateExpiredKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStore(client, WithCacheTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "orig", nil, domain.EntryMetadata{}))
	client.AddHook(expireBeforeSet{mr: mr, key: CacheKey("k1")})

	err := s.AddTranslation(ctx, "k1", "es", "texto")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.False(t, mr.Exists(CacheKey("k1")), "an expired entry must not come back without a TTL")
}

func TestCacheExpiry(t *testing.T) {
	t.Run("redis expiry", func(t *testing.T) {
		s, mr, _ := newTestStore(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "k1", "orig", nil, domain.EntryMetadata{}))

		mr.FastForward(time.Hour + time.Second)

		_, err := s.Get(ctx, "k1")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.ErrorIs(t, s.AddTranslation(ctx, "k1", "es", "x"), domain.ErrCacheMiss)
	})

	t.Run("entry expiry", func(t *testing.T) {
		s, _, clock := newTestStore(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "k1", "orig", nil, domain.EntryMetadata{}))

		clock.Advance(time.Hour)

		_, err := s.Get(ctx, "k1")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})
}

func TestCachePutOverwritesAndRestartsTTL(t *testing.T) {
	s, mr, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "first", map[string]string{"es": "uno"}, domain.EntryMetadata{}))
	clock.Advance(50 * time.Minute)
	mr.FastForward(50 * time.Minute)
	require.NoError(t, s.Put(ctx, "k1", "second", nil, domain.EntryMetadata{}))

	entry, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "second", entry.Original)
	assert.Empty(t, entry.Translations)
	assert.Equal(t, time.Hour, mr.TTL(CacheKey("k1")))
}

func TestChannels(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.ChannelFor(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetChannel(ctx, "g1", "c1"))
	require.NoError(t, s.SetChannel(ctx, "g2", "c2"))
	require.NoError(t, s.SetChannel(ctx, "g1", "c3"))

	ch, ok, err := s.ChannelFor(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c3", ch)

	all, err := s.Channels(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"g1": "c3", "g2": "c2"}, all)
}

func TestPersistenceErrors(t *testing.T) {
	s, mr, _ := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := s.GetLast(ctx, domain.CategoryEvent)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, s.SetLast(ctx, domain.CategoryEvent, "u"), domain.ErrPersistence)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, s.Ping(ctx), domain.ErrPersistence)
}
