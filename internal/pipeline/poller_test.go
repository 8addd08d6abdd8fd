package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/extract"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/notify"
	"github.com/MrSnakeDoc/boardwatch/internal/store/memory"
)

type fakeBoard struct {
	posts map[domain.Category]domain.CandidatePost
	errs  map[domain.Category]error
	calls int
}

func (b *fakeBoard) FetchLatest(_ context.Context, c domain.Category) (domain.CandidatePost, error) {
	b.calls++
	if err := b.errs[c]; err != nil {
		return domain.CandidatePost{}, err
	}
	p, ok := b.posts[c]
	if !ok {
		return domain.CandidatePost{}, domain.ErrNotFound
	}
	return p, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(_ context.Context, url string) (domain.ExtractedContent, error) {
	if e.err != nil {
		return domain.ExtractedContent{}, e.err
	}
	return domain.ExtractedContent{URL: url, Text: e.text, Strategy: "selectors"}, nil
}

type sentMessage struct {
	recipients []string
	msg        discord.Message
}

type recordingNotifier struct{ sent []sentMessage }

func (n *recordingNotifier) Notify(_ context.Context, recipients []string, msg discord.Message) int {
	n.sent = append(n.sent, sentMessage{recipients: recipients, msg: msg})
	return len(recipients)
}

type brokenWatermarks struct{ domain.WatermarkStore }

func (brokenWatermarks) GetLast(context.Context, domain.Category) (domain.Watermark, bool, error) {
	return domain.Watermark{}, false, domain.ErrPersistence
}

const articleText = "The Halloween event starts today.\n\nDefeat pumpkins in every region to earn candy.\n\nRewards are delivered by mail."

type fixture struct {
	board    *fakeBoard
	store    *memory.Store
	notifier *recordingNotifier
	poller   *Poller
}

func newFixture(t *testing.T, ex ContentExtractor) *fixture {
	t.Helper()
	f := &fixture{
		board: &fakeBoard{posts: map[domain.Category]domain.CandidatePost{
			domain.CategoryEvent: {Category: domain.CategoryEvent, Title: "Halloween Event Begins", URL: "https://forum.example/board/event/7"},
		}},
		store:    memory.New(time.Hour, nil),
		notifier: &recordingNotifier{},
	}
	f.poller = NewPoller(Deps{
		Board:      f.board,
		Digester:   NewDigester(ex, logger.NewNop(), metrics.New()),
		Watermarks: f.store,
		Cache:      f.store,
		Channels:   f.store,
		Notifier:   f.notifier,
		Logger:     logger.NewNop(),
		Metrics:    metrics.New(),
	})
	return f
}

func TestRunCycleSkipsWithoutChannels(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})

	report, err := f.poller.RunCycle(context.Background(), "test")
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Zero(t, f.board.calls)
	assert.Empty(t, f.notifier.sent)
}

func TestRunCycleIsIdempotent(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})
	ctx := context.Background()
	require.NoError(t, f.store.SetChannel(ctx, "g1", "c1"))
	require.NoError(t, f.store.SetChannel(ctx, "g2", "c2"))

	first, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)
	second, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1, "the second cycle must not notify again")
	sent := f.notifier.sent[0]
	assert.Equal(t, []string{"c1", "c2"}, sent.recipients)
	assert.True(t, strings.HasPrefix(sent.msg.Content, "🐉 **New Event Detected**\n**Halloween Event Begins**"), sent.msg.Content)
	assert.Contains(t, sent.msg.Content, "• The Halloween event starts today.")
	assert.Len(t, sent.msg.Components, 1)

	outcomes := func(r Report) map[domain.Category]Outcome {
		out := map[domain.Category]Outcome{}
		for _, res := range r.Results {
			out[res.Category] = res.Outcome
		}
		return out
	}
	assert.Equal(t, map[domain.Category]Outcome{
		domain.CategoryPatchNote: OutcomeNotFound,
		domain.CategoryNotice:    OutcomeNotFound,
		domain.CategoryEvent:     OutcomeNew,
	}, outcomes(first))
	assert.Equal(t, OutcomeUnchanged, outcomes(second)[domain.CategoryEvent])

	wm, ok, _ := f.store.GetLast(ctx, domain.CategoryEvent)
	require.True(t, ok)
	assert.Equal(t, "https://forum.example/board/event/7", wm.URL)

	entry, err := f.store.Get(ctx, notify.MessageKey(wm.URL))
	require.NoError(t, err)
	assert.Equal(t, "Halloween Event Begins", entry.Metadata.Title)
	assert.Equal(t, wm.URL, entry.Metadata.URL)
	assert.True(t, strings.HasPrefix(entry.Original, "• The Halloween event"))
}

func TestRunCycleDetectsReplacedPost(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})
	ctx := context.Background()
	require.NoError(t, f.store.SetChannel(ctx, "g1", "c1"))
	require.NoError(t, f.store.SetLast(ctx, domain.CategoryEvent, "https://forum.example/board/event/6"))

	report, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	for _, r := range report.Results {
		if r.Category == domain.CategoryEvent {
			assert.Equal(t, OutcomeNew, r.Outcome)
			assert.Equal(t, 1, r.Delivered)
		}
	}
}

func TestRunCycleCategoryFailureDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})
	f.board.errs = map[domain.Category]error{
		domain.CategoryPatchNote: errors.New("boom"),
		domain.CategoryNotice:    domain.ErrFetch,
	}
	ctx := context.Background()
	require.NoError(t, f.store.SetChannel(ctx, "g1", "c1"))

	report, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrFetch)
	assert.Equal(t, OutcomeNew, report.Results[2].Outcome)
	assert.Len(t, f.notifier.sent, 1)
}

func TestRunCycleWatermarkReadFailureTreatsPostAsNew(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})
	ctx := context.Background()
	require.NoError(t, f.store.SetChannel(ctx, "g1", "c1"))
	require.NoError(t, f.store.SetLast(ctx, domain.CategoryEvent, "https://forum.example/board/event/7"))
	f.poller.watermarks = brokenWatermarks{f.store}

	_, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)
	assert.Len(t, f.notifier.sent, 1, "unknown state must favor a duplicate over a lost post")
}

func TestRunCycleExtractionFailureStillNotifies(t *testing.T) {
	f := newFixture(t, fakeExtractor{err: domain.ErrParse})
	ctx := context.Background()
	require.NoError(t, f.store.SetChannel(ctx, "g1", "c1"))

	_, err := f.poller.RunCycle(ctx, "test")
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].msg.Content, extract.FailureText)
	_, ok, _ := f.store.GetLast(ctx, domain.CategoryEvent)
	assert.True(t, ok)
}

func TestRunCycleStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, fakeExtractor{text: articleText})
	require.NoError(t, f.store.SetChannel(context.Background(), "g1", "c1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.poller.RunCycle(ctx, "test")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.board.calls)
}

func TestDigestBulletsSummary(t *testing.T) {
	d := NewDigester(fakeExtractor{text: articleText}, logger.NewNop(), nil)
	got := d.Digest(context.Background(), "u")
	assert.Equal(t, "• The Halloween event starts today.\n\n• Defeat pumpkins in every region to earn candy.\n\n• Rewards are delivered by mail.", got)
}
