// Package pipeline runs the poll cycle: detect new posts per category,
// summarize them and notify every configured channel.
package pipeline

import (
	"context"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/extract"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/summary"
)

// BoardClient returns the freshest post of a category.
type BoardClient interface {
	FetchLatest(ctx context.Context, category domain.Category) (domain.CandidatePost, error)
}

// ContentExtractor returns the cleaned text of a post.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (domain.ExtractedContent, error)
}

// Digester turns a post URL into the bullet text shown to users.
type Digester struct {
	extractor ContentExtractor
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func NewDigester(ex ContentExtractor, log logger.Logger, m *metrics.Metrics) *Digester {
	return &Digester{extractor: ex, logger: log, metrics: m}
}

// Digest extracts, summarizes and bullets a post. Extraction failures
// yield extract.FailureText instead of an error.
func (d *Digester) Digest(ctx context.Context, url string) string {
	content, err := d.extractor.Extract(ctx, url)
	if err != nil {
		d.logger.Warn("content extraction failed",
			logger.String("url", url),
			logger.Error(err))
		d.metrics.RecordExtraction("failed")
		return extract.FailureText
	}
	d.metrics.RecordExtraction(content.Strategy)

	bullets := summary.ToBullets(summary.Summarize(content.Text).String())
	if len(bullets) == 0 {
		return extract.FailureText
	}
	return bullets.String()
}
