package pipeline

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/notify"
)

// Outcome of one category in a poll cycle.
type Outcome string

const (
	OutcomeNew       Outcome = "new"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// CategoryResult reports what a cycle did for one category.
type CategoryResult struct {
	Category  domain.Category
	Outcome   Outcome
	URL       string
	Delivered int
	Err       error
}

// Report summarizes one poll cycle.
type Report struct {
	Trigger    string
	Skipped    bool // no channel configured
	Recipients int
	Results    []CategoryResult
	Elapsed    time.Duration
}

// Notifier fans a message out to channels.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, msg discord.Message) int
}

// Poller runs poll cycles.
type Poller struct {
	board      BoardClient
	digester   *Digester
	watermarks domain.WatermarkStore
	cache      domain.TranslationCache
	channels   domain.ChannelDirectory
	notifier   Notifier
	logger     logger.Logger
	metrics    *metrics.Metrics
	categories []domain.Category
}

// Deps groups the Poller collaborators.
type Deps struct {
	Board      BoardClient
	Digester   *Digester
	Watermarks domain.WatermarkStore
	Cache      domain.TranslationCache
	Channels   domain.ChannelDirectory
	Notifier   Notifier
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

func NewPoller(d Deps) *Poller {
	return &Poller{
		board:      d.Board,
		digester:   d.Digester,
		watermarks: d.Watermarks,
		cache:      d.Cache,
		channels:   d.Channels,
		notifier:   d.Notifier,
		logger:     d.Logger,
		metrics:    d.Metrics,
		categories: domain.Categories,
	}
}

// RunCycle processes every category once, sequentially. A failing
// category never stops the others; the returned error is only set when
// ctx was cancelled.
func (p *Poller) RunCycle(ctx context.Context, trigger string) (report Report, err error) {
	start := time.Now()
	report.Trigger = trigger
	defer func() {
		report.Elapsed = time.Since(start)
		p.metrics.RecordPollCycle(trigger, report.Elapsed)
	}()

	recipients := p.recipients(ctx)
	report.Recipients = len(recipients)
	if len(recipients) == 0 {
		p.logger.Warn("no channel configured, skipping poll cycle")
		report.Skipped = true
		return report, nil
	}

	for _, category := range p.categories {
		if err = ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, p.processCategory(ctx, category, recipients))
	}

	p.logger.Info("poll cycle finished",
		logger.String("trigger", trigger),
		logger.Int("recipients", len(recipients)),
		logger.Duration("elapsed", time.Since(start)))
	return report, nil
}

// recipients lists bound channels in a stable order. A read failure
// degrades to no recipients.
func (p *Poller) recipients(ctx context.Context) []string {
	bindings, err := p.channels.Channels(ctx)
	if err != nil {
		p.logger.Error("failed to read channel bindings", logger.Error(err))
		return nil
	}
	out := make([]string, 0, len(bindings))
	for _, ch := range bindings {
		if !slices.Contains(out, ch) {
			out = append(out, ch)
		}
	}
	slices.Sort(out)
	return out
}

func (p *Poller) processCategory(ctx context.Context, category domain.Category, recipients []string) CategoryResult {
	log := p.logger.With(logger.String("category", string(category)))
	res := CategoryResult{Category: category}

	post, err := p.board.FetchLatest(ctx, category)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("no post on board")
			res.Outcome = OutcomeNotFound
			return res
		}
		log.Error("failed to fetch board", logger.Error(err))
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	res.URL = post.URL

	wm, seen, err := p.watermarks.GetLast(ctx, category)
	if err != nil {
		// No prior state: at worst the post is announced twice.
		log.Warn("failed to read watermark, treating post as new", logger.Error(err))
		seen = false
	}
	if seen && wm.URL == post.URL {
		log.Debug("no new post", logger.String("url", post.URL))
		res.Outcome = OutcomeUnchanged
		return res
	}

	log.Info("new post detected",
		logger.String("title", post.Title),
		logger.String("url", post.URL))
	p.metrics.RecordPostDetected(category.Slug())

	body := p.digester.Digest(ctx, post.URL)
	key := notify.MessageKey(post.URL)
	msg := discord.Message{
		Content: notify.RenderPost(notify.Post{
			Category: category,
			Title:    post.Title,
			URL:      post.URL,
			Body:     body,
			New:      true,
		}),
		Components: notify.TranslateAffordances(key),
	}

	meta := domain.EntryMetadata{Title: post.Title, URL: post.URL}
	if err := p.cache.Put(ctx, key, body, nil, meta); err != nil {
		log.Warn("failed to cache post for translation", logger.Error(err))
	}

	res.Delivered = p.notifier.Notify(ctx, recipients, msg)
	res.Outcome = OutcomeNew

	// Written after dispatch: a crash in between repeats the notification.
	if err := p.watermarks.SetLast(ctx, category, post.URL); err != nil {
		log.Error("failed to save watermark", logger.Error(err))
	}
	return res
}
