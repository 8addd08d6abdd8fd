// Package extract derives the cleaned body text of a forum post.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/sources/rules"
)

// FailureText is shown to users in place of a summary when extraction fails.
const FailureText = "Could not extract the post content."

const (
	// MinViableLength is the shortest cleaned text accepted from a structural strategy.
	MinViableLength = 50
	// BlockScanThreshold is the stripped length above which a div is treated as the body.
	BlockScanThreshold = 200
)

// unwantedSelector lists elements removed before reading text.
const unwantedSelector = "script, style, meta, link, noscript"

// PageGetter fetches a raw page body.
type PageGetter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Page is one fetched post, shared by the strategies.
type Page struct {
	URL *url.URL
	Raw []byte
	Doc *goquery.Document

	// ContainerMatched is set once a known content container was found,
	// even if its text was too short to use. Block scanning is then skipped.
	ContainerMatched bool
}

// Strategy is one step of the extraction cascade. It reports found=false
// instead of failing; the extractor moves on to the next strategy.
type Strategy interface {
	Name() string
	Extract(p *Page) (text string, found bool)
}

// Extractor runs the strategy cascade over a fetched post.
type Extractor struct {
	pages      PageGetter
	strategies []Strategy
	logger     logger.Logger
	now        func() time.Time
}

// DefaultStrategies returns selectors, block scan, then readability.
func DefaultStrategies(r *rules.Rules) []Strategy {
	return []Strategy{
		NewSelectorStrategy(r.ContentSelectors, r.BoilerplatePhrases),
		NewBlockScanStrategy(BlockScanThreshold, r.BoilerplatePhrases),
		NewReadabilityStrategy(r.BoilerplatePhrases),
	}
}

// New builds an extractor. With no strategies, DefaultStrategies(r) is used.
func New(pages PageGetter, r *rules.Rules, log logger.Logger, strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies(r)
	}
	return &Extractor{
		pages:      pages,
		strategies: strategies,
		logger:     log,
		now:        time.Now,
	}
}

// Extract fetches rawURL and returns its cleaned text. Errors wrap
// domain.ErrFetch or domain.ErrParse; callers surface FailureText instead.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (domain.ExtractedContent, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("%w: invalid url %q: %w", domain.ErrParse, rawURL, err)
	}

	raw, err := e.pages.Get(ctx, rawURL)
	if err != nil {
		return domain.ExtractedContent{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	doc.Find(unwantedSelector).Remove()

	page := &Page{URL: u, Raw: raw, Doc: doc}
	for _, s := range e.strategies {
		text, found := run(s, page)
		if !found {
			e.logger.Debug("extraction strategy found nothing",
				logger.String("strategy", s.Name()),
				logger.String("url", rawURL))
			continue
		}
		return domain.ExtractedContent{
			URL:       rawURL,
			Text:      text,
			Strategy:  s.Name(),
			FetchedAt: e.now(),
		}, nil
	}

	return domain.ExtractedContent{}, fmt.Errorf("%w: no strategy matched %s", domain.ErrParse, rawURL)
}

// run isolates a strategy so a panic inside a parser counts as not found.
func run(s Strategy, p *Page) (text string, found bool) {
	defer func() {
		if r := recover(); r != nil {
			text, found = "", false
		}
	}()
	return s.Extract(p)
}
