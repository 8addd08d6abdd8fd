package board

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/sources/rules"
)

type stubPages struct {
	body []byte
	err  error
	urls []string
}

func (s *stubPages) Get(_ context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.body, s.err
}

func newTestClient(t *testing.T, html string) (*Client, *stubPages) {
	t.Helper()
	pages := &stubPages{body: []byte(html)}
	c, err := NewClient(pages, "https://forum.mir4global.com", rules.Default())
	require.NoError(t, err)
	return c, pages
}

const eventListing = `<html><body>
<article class="article">
  <em class="article_category">Event</em>
  <a href="/board/newevent/111"><span class="subject">Facebook Livestream</span></a>
</article>
<article class="article">
  <em class="article_category">Event</em>
  <a href="/board/newevent/222"><span class="subject">Halloween Event Begins</span></a>
</article>
</body></html>`

func TestFetchLatestSkipsSocialMedia(t *testing.T) {
	c, pages := newTestClient(t, eventListing)

	post, err := c.FetchLatest(context.Background(), domain.CategoryEvent)
	require.NoError(t, err)

	assert.Equal(t, "Halloween Event Begins", post.Title)
	assert.Equal(t, "https://forum.mir4global.com/board/newevent/222", post.URL)
	assert.Equal(t, domain.CategoryEvent, post.Category)
	assert.Equal(t, []string{"https://forum.mir4global.com/board/newevent?category_id=1"}, pages.urls)
}

func TestFetchLatestMatchesCategoryCaseInsensitively(t *testing.T) {
	html := `<article class="article">
  <em class="article_category">Notice</em>
  <a href="/board/notice/1"><span class="subject">Server Maintenance</span></a>
</article>
<article class="article">
  <em class="article_category">PATCH NOTE</em>
  <a href="https://forum.mir4global.com/board/patchnote/9"><span class="subject">Patch Note v2.0</span></a>
</article>`
	c, _ := newTestClient(t, html)

	post, err := c.FetchLatest(context.Background(), domain.CategoryPatchNote)
	require.NoError(t, err)
	assert.Equal(t, "Patch Note v2.0", post.Title)
	assert.Equal(t, "https://forum.mir4global.com/board/patchnote/9", post.URL)
}

func TestFetchLatestNotFound(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "empty page", html: "<html><body></body></html>"},
		{name: "entry without category", html: `<article class="article"><a href="/x">x</a></article>`},
		{name: "only other categories", html: `<article class="article"><em class="article_category">Notice</em><a href="/x">x</a></article>`},
		{name: "only social posts", html: `<article class="article"><em class="article_category">Event</em><a href="/x">Instagram Giveaway</a></article>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.html)
			_, err := c.FetchLatest(context.Background(), domain.CategoryEvent)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestFetchLatestTitleFallsBackToAnchor(t *testing.T) {
	html := `<article class="article"><em class="article_category">notice</em><a href="/board/notice/5"> Server Notice </a></article>`
	c, _ := newTestClient(t, html)

	post, err := c.FetchLatest(context.Background(), domain.CategoryNotice)
	require.NoError(t, err)
	assert.Equal(t, "Server Notice", post.Title)
}

func TestFetchLatestPropagatesFetchError(t *testing.T) {
	pages := &stubPages{err: domain.ErrFetch}
	c, err := NewClient(pages, "https://forum.mir4global.com", rules.Default())
	require.NoError(t, err)

	_, err = c.FetchLatest(context.Background(), domain.CategoryNotice)
	assert.True(t, errors.Is(err, domain.ErrFetch))
}

func TestFetchLatestUnknownCategory(t *testing.T) {
	c, _ := newTestClient(t, eventListing)
	_, err := c.FetchLatest(context.Background(), domain.Category("giveaway"))
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestAbsolute(t *testing.T) {
	c, _ := newTestClient(t, "")

	got, err := c.Absolute("/board/123456")
	require.NoError(t, err)
	assert.Equal(t, "https://forum.mir4global.com/board/123456", got)

	abs := "https://forum.mir4global.com/board/123456"
	got, err = c.Absolute(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	_, err = c.Absolute("   ")
	assert.Error(t, err)
}

func TestNewClientRejectsBadBase(t *testing.T) {
	_, err := NewClient(&stubPages{}, "not a url", rules.Default())
	assert.Error(t, err)
}
