package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
)

type stubSender struct {
	fail map[string]bool
	sent []string
}

func (s *stubSender) Send(_ context.Context, channelID string, _ discord.Message) error {
	if s.fail[channelID] {
		return errors.New("missing access")
	}
	s.sent = append(s.sent, channelID)
	return nil
}

func TestNotifyContinuesAfterFailure(t *testing.T) {
	sender := &stubSender{fail: map[string]bool{"c2": true}}
	n := NewNotifier(sender, logger.NewNop(), metrics.New())

	got := n.Notify(context.Background(), []string{"c1", "c2", "c3"}, discord.Message{Content: "x"})

	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"c1", "c3"}, sender.sent)
}

func TestNotifyNoRecipients(t *testing.T) {
	n := NewNotifier(&stubSender{}, logger.NewNop(), nil)
	assert.Zero(t, n.Notify(context.Background(), nil, discord.Message{}))
}

func TestMessageKey(t *testing.T) {
	a := MessageKey("https://forum.mir4global.com/board/notice/1")
	b := MessageKey("https://forum.mir4global.com/board/notice/1")
	c := MessageKey("https://forum.mir4global.com/board/notice/2")

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRenderPost(t *testing.T) {
	got := RenderPost(Post{
		Category: domain.CategoryPatchNote,
		Title:    "Patch Note v2.0",
		URL:      "https://forum.example/board/1",
		Body:     "• Fixed bugs.",
		New:      true,
	})
	assert.Equal(t, "🐉 **New Patch Note Detected**\n**Patch Note v2.0**\n\n**Summary:**\n• Fixed bugs.\n\n🔗 https://forum.example/board/1", got)

	cmd := RenderPost(Post{Category: domain.CategoryEvent, Title: "T", URL: "u", Body: "b"})
	assert.True(t, strings.HasPrefix(cmd, "🐉 **Event**\n"), cmd)
}

func TestRenderPostIsBounded(t *testing.T) {
	got := RenderPost(Post{
		Category: domain.CategoryNotice,
		Title:    "Long",
		URL:      "https://forum.example/board/1",
		Body:     strings.Repeat("漢", 3000),
	})
	assert.Equal(t, MaxMessageLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "...\n\n🔗 https://forum.example/board/1"))
}

func TestRenderPostCapsLongTitle(t *testing.T) {
	got := RenderPost(Post{
		Category: domain.CategoryNotice,
		Title:    strings.Repeat("t", 1990),
		URL:      "https://forum.example/board/1",
		Body:     "• Short body.",
		New:      true,
	})
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxMessageLength)
	assert.Contains(t, got, "**"+strings.Repeat("t", MaxTitleLength-3)+"...**")
	assert.True(t, strings.HasSuffix(got, "• Short body.\n\n🔗 https://forum.example/board/1"), got)
}

func TestRenderPostBoundedWithLongTitleAndBody(t *testing.T) {
	got := RenderPost(Post{
		Category: domain.CategoryPatchNote,
		Title:    strings.Repeat("漢", 3000),
		URL:      "https://forum.example/board/1",
		Body:     strings.Repeat("b", 3000),
	})
	assert.Equal(t, MaxMessageLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "...\n\n🔗 https://forum.example/board/1"))
}

func TestRenderPostOversizedLinkStillBounded(t *testing.T) {
	got := RenderPost(Post{
		Category: domain.CategoryEvent,
		Title:    "T",
		URL:      "https://forum.example/" + strings.Repeat("p", 2500),
		Body:     "• b",
	})
	assert.Equal(t, MaxMessageLength, utf8.RuneCountInString(got))
}

func TestRenderTranslation(t *testing.T) {
	es, _ := domain.LookupLanguage("es")

	got := RenderTranslation(es, "• Hola", "https://forum.example/1")
	assert.Equal(t, "**Translation 🇪🇸 Español:**\n• Hola\n\n🔗 https://forum.example/1", got)

	noLink := RenderTranslation(es, "• Hola", "")
	assert.Equal(t, "**Translation 🇪🇸 Español:**\n• Hola", noLink)

	long := RenderTranslation(es, strings.Repeat("a", 2500), "https://forum.example/1")
	assert.Equal(t, MaxMessageLength, utf8.RuneCountInString(long))
	assert.True(t, strings.HasSuffix(long, "...\n\n🔗 https://forum.example/1"))
}

func TestCustomIDRoundTrip(t *testing.T) {
	id := TranslateCustomID("zh", "abc_def")
	assert.Equal(t, "translate_zh_abc_def", id)

	action, lang, key, ok := ParseCustomID(id)
	require.True(t, ok)
	assert.Equal(t, "translate", action)
	assert.Equal(t, "zh", lang)
	assert.Equal(t, "abc_def", key)

	for _, bad := range []string{"", "translate", "translate_es", "translate__k", "_es_k"} {
		_, _, _, ok := ParseCustomID(bad)
		assert.False(t, ok, bad)
	}
}

func TestTranslateAffordances(t *testing.T) {
	rows := TranslateAffordances("k1")
	require.Len(t, rows, 1)
	row, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 3)

	var ids []string
	for _, c := range row.Components {
		ids = append(ids, c.(discordgo.Button).CustomID)
	}
	assert.Equal(t, []string{"translate_es_k1", "translate_pt_k1", "translate_zh_k1"}, ids)
}
