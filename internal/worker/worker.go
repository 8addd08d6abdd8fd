// Package worker executes deferred jobs out of band and edits the original
// interaction response once the work is done.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/notify"
	"github.com/MrSnakeDoc/boardwatch/internal/pipeline"
	"github.com/MrSnakeDoc/boardwatch/internal/translate"
)

const failureNoticeTimeout = 10 * time.Second

// Editor rewrites a deferred interaction response.
type Editor interface {
	EditOriginal(ctx context.Context, corr domain.Correlation, msg discord.Message) error
}

// Digester turns a post URL into bullet text.
type Digester interface {
	Digest(ctx context.Context, url string) string
}

// Deps groups the Worker collaborators.
type Deps struct {
	Board      pipeline.BoardClient
	Digester   Digester
	Translator translate.Translator
	Cache      domain.TranslationCache
	Editor     Editor
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// Worker processes one job at a time. It is safe for concurrent use.
type Worker struct {
	board      pipeline.BoardClient
	digester   Digester
	translator translate.Translator
	cache      domain.TranslationCache
	editor     Editor
	logger     logger.Logger
	metrics    *metrics.Metrics
}

func New(d Deps) *Worker {
	return &Worker{
		board:      d.Board,
		digester:   d.Digester,
		translator: d.Translator,
		cache:      d.Cache,
		editor:     d.Editor,
		logger:     d.Logger,
		metrics:    d.Metrics,
	}
}

// Process runs a job to completion. Every path ends in an edit of the
// deferred response: the result, or a best-effort failure notice whose
// own failure is only logged.
func (w *Worker) Process(ctx context.Context, job domain.DeferredJob) {
	start := time.Now()
	log := w.logger.With(
		logger.String("job_id", job.ID),
		logger.String("kind", string(job.Kind)))

	err := w.safeRun(ctx, job)
	w.metrics.RecordJob(string(job.Kind), err == nil, time.Since(start))
	if err == nil {
		log.Info("job done", logger.Duration("elapsed", time.Since(start)))
		return
	}

	log.Error("job failed", logger.Error(err))
	// The job budget may be spent already.
	noticeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureNoticeTimeout)
	defer cancel()
	if editErr := w.editor.EditOriginal(noticeCtx, job.Correlation, discord.Message{Content: notify.FailureNotice}); editErr != nil {
		log.Warn("failed to report job failure", logger.Error(editErr))
	}
}

// safeRun turns a panic into an error so the failure notice still goes out.
func (w *Worker) safeRun(ctx context.Context, job domain.DeferredJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch job.Kind {
	case domain.JobCommandCheck:
		return w.check(ctx, job)
	case domain.JobTranslate:
		return w.translate(ctx, job)
	default:
		return fmt.Errorf("%w: job kind %q", domain.ErrUnsupported, job.Kind)
	}
}

// check renders the latest post of a category. The cache entry is keyed
// by the interaction id so its translate buttons resolve to this message.
func (w *Worker) check(ctx context.Context, job domain.DeferredJob) error {
	post, err := w.board.FetchLatest(ctx, job.Category)
	if errors.Is(err, domain.ErrNotFound) {
		return w.editor.EditOriginal(ctx, job.Correlation, discord.Message{Content: notify.RenderNotFound(job.Category)})
	}
	if err != nil {
		return fmt.Errorf("fetch latest %s: %w", job.Category, err)
	}

	body := w.digester.Digest(ctx, post.URL)
	msg := discord.Message{Content: notify.RenderPost(notify.Post{
		Category: job.Category,
		Title:    post.Title,
		URL:      post.URL,
		Body:     body,
	})}

	key := job.Correlation.InteractionID
	meta := domain.EntryMetadata{Title: post.Title, URL: post.URL}
	if err := w.cache.Put(ctx, key, body, nil, meta); err != nil {
		// Buttons would only lead to an expired-entry answer.
		w.logger.Warn("failed to cache check result", logger.String("job_id", job.ID), logger.Error(err))
	} else {
		msg.Components = notify.TranslateAffordances(key)
	}

	return w.editor.EditOriginal(ctx, job.Correlation, msg)
}

// translate fills in one language of a cache entry. A backend failure
// falls back to the original text, which is not cached.
func (w *Worker) translate(ctx context.Context, job domain.DeferredJob) error {
	lang, ok := domain.LookupLanguage(job.Language)
	if !ok {
		return fmt.Errorf("%w: language %q", domain.ErrUnsupported, job.Language)
	}

	entry, err := w.cache.Get(ctx, job.MessageKey)
	if err != nil {
		return fmt.Errorf("load cache entry %s: %w", job.MessageKey, err)
	}

	text, cached := entry.Translation(lang.Code)
	if !cached {
		text, err = w.translator.Translate(ctx, entry.Original, lang)
		if err != nil {
			w.logger.Warn("translation failed, showing original text",
				logger.String("job_id", job.ID),
				logger.String("language", lang.Code),
				logger.String("backend", w.translator.Name()),
				logger.Error(err))
			w.metrics.RecordTranslation(lang.Code, false)
			text = entry.Original
		} else {
			w.metrics.RecordTranslation(lang.Code, true)
			if err := w.cache.AddTranslation(ctx, job.MessageKey, lang.Code, text); err != nil {
				w.logger.Warn("failed to cache translation",
					logger.String("job_id", job.ID),
					logger.Error(err))
			}
		}
	}

	return w.editor.EditOriginal(ctx, job.Correlation, discord.Message{
		Content: notify.RenderTranslation(lang, text, entry.Metadata.URL),
	})
}
