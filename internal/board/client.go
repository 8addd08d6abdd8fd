// Package board reads forum listing pages and picks the freshest post per category.
package board

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/sources/rules"
)

const (
	entrySelector    = "article.article"
	categorySelector = "em.article_category"
	titleSelector    = "span.subject"
)

// PageGetter fetches a raw page body.
type PageGetter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client fetches listing pages.
type Client struct {
	pages PageGetter
	base  *url.URL
	rules *rules.Rules
}

// NewClient builds a board client. baseURL is the origin used for relative links.
func NewClient(pages PageGetter, baseURL string, r *rules.Rules) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid board base url %q", baseURL)
	}
	return &Client{pages: pages, base: base, rules: r}, nil
}

// FetchLatest returns the first listing entry of category that is not social-media
// marketing. It returns domain.ErrNotFound when nothing survives the filters.
func (c *Client) FetchLatest(ctx context.Context, category domain.Category) (domain.CandidatePost, error) {
	listing, ok := c.rules.Boards[category]
	if !ok {
		return domain.CandidatePost{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	body, err := c.pages.Get(ctx, listing)
	if err != nil {
		return domain.CandidatePost{}, err
	}

	return c.parseListing(body, category)
}

func (c *Client) parseListing(body []byte, category domain.Category) (domain.CandidatePost, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.CandidatePost{}, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}

	var (
		found domain.CandidatePost
		ok    bool
	)
	doc.Find(entrySelector).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		label := strings.TrimSpace(entry.Find(categorySelector).First().Text())
		if label == "" || !strings.EqualFold(label, string(category)) {
			return true
		}
		if rules.ContainsAny(entry.Text(), c.rules.SocialMarkers) {
			return true
		}

		link := entry.Find("a[href]").First()
		href, _ := link.Attr("href")
		abs, err := c.Absolute(href)
		if err != nil {
			return true
		}

		title := strings.TrimSpace(entry.Find(titleSelector).First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}

		found = domain.CandidatePost{Category: category, Title: title, URL: abs}
		ok = true
		return false
	})

	if !ok {
		return domain.CandidatePost{}, domain.ErrNotFound
	}
	return found, nil
}

// Absolute resolves href against the board origin. Absolute URLs pass through.
func (c *Client) Absolute(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return href, nil
	}
	return c.base.ResolveReference(ref).String(), nil
}
