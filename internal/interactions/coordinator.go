// Package interactions classifies inbound Discord interactions and answers
// them within the platform's response deadline. Slow work is deferred to
// the job queue and never awaited here.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/notify"
)

// User-facing answers.
const (
	msgUnknownButton   = "❌ Unrecognized button."
	msgUnknownLanguage = "❌ Unsupported language."
	msgExpired         = "❌ Translation expired. Run the command again."
	msgButtonFailed    = "❌ Could not process the button. Try again later."
	msgCheckFailed     = "❌ Could not start the check. Try again later."
	msgUnknownCommand  = "❌ Unrecognized command."
	msgGuildOnly       = "❌ This command only works in a server."
	msgMissingChannel  = "❌ Pick a channel."
	msgSaveFailed      = "❌ Could not save the channel. Try again later."
)

// Enqueuer hands a job to the async worker without waiting for it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job domain.DeferredJob) error
}

// Deps groups the Coordinator collaborators.
type Deps struct {
	Cache      domain.TranslationCache
	Watermarks domain.WatermarkStore
	Channels   domain.ChannelDirectory
	Queue      Enqueuer
	Logger     logger.Logger
	Metrics    *metrics.Metrics
	NewID      func() string // defaults to uuid.NewString
	Now        domain.Clock  // defaults to time.Now
}

// Coordinator answers interactions. It only touches already-persisted
// state and the queue, so every path stays within the ack deadline.
type Coordinator struct {
	cache      domain.TranslationCache
	watermarks domain.WatermarkStore
	channels   domain.ChannelDirectory
	queue      Enqueuer
	logger     logger.Logger
	metrics    *metrics.Metrics
	newID      func() string
	now        domain.Clock
}

func New(d Deps) *Coordinator {
	c := &Coordinator{
		cache:      d.Cache,
		watermarks: d.Watermarks,
		channels:   d.Channels,
		queue:      d.Queue,
		logger:     d.Logger,
		metrics:    d.Metrics,
		newID:      d.NewID,
		now:        d.Now,
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Classify maps a raw interaction to its request kind. Unknown interaction
// types return domain.ErrUnsupported.
func Classify(i *discordgo.Interaction) (domain.InteractionRequest, error) {
	req := domain.InteractionRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Correlation: domain.Correlation{
			AppID:         i.AppID,
			Token:         i.Token,
			InteractionID: i.ID,
		},
	}

	switch i.Type {
	case discordgo.InteractionPing:
		req.Kind = domain.RequestHandshake

	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		req.Kind = domain.RequestSlashCommand
		req.Command = data.Name
		req.Options = make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			req.Options[opt.Name] = fmt.Sprint(opt.Value)
		}

	case discordgo.InteractionMessageComponent:
		req.Kind = domain.RequestComponentAction
		req.CustomID = i.MessageComponentData().CustomID
		req.Action, req.Language, req.MessageKey, _ = notify.ParseCustomID(req.CustomID)

	default:
		return req, fmt.Errorf("%w: type %d", domain.ErrUnsupported, i.Type)
	}
	return req, nil
}

// Handle returns the immediate response to an interaction.
func (c *Coordinator) Handle(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	req, err := Classify(i)
	if err != nil {
		c.metrics.RecordInteraction(domain.RequestUnknown.String(), "rejected")
		return nil, err
	}

	var resp *discordgo.InteractionResponse
	switch req.Kind {
	case domain.RequestHandshake:
		resp = &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
	case domain.RequestSlashCommand:
		resp = c.handleCommand(ctx, req)
	case domain.RequestComponentAction:
		resp = c.handleComponent(ctx, req)
	}

	c.metrics.RecordInteraction(req.Kind.String(), outcome(resp))
	return resp, nil
}

func (c *Coordinator) handleCommand(ctx context.Context, req domain.InteractionRequest) *discordgo.InteractionResponse {
	log := c.logger.With(
		logger.String("command", req.Command),
		logger.String("guild_id", req.GuildID))

	switch req.Command {
	case discord.CommandConfigureChannel:
		return c.configureChannel(ctx, req, log)
	case discord.CommandStatus:
		return ephemeral(c.status(ctx, req.GuildID, log))
	}

	category, ok := discord.CategoryForCommand(req.Command)
	if !ok {
		log.Warn("unknown command")
		return ephemeral(msgUnknownCommand)
	}

	job := c.newJob(domain.JobCommandCheck, req)
	job.Category = category
	if err := c.queue.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue check job", logger.Error(err))
		return ephemeral(msgCheckFailed)
	}
	log.Info("check deferred", logger.String("job_id", job.ID))

	// The deferred answer carries no content; the worker edits it later.
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
}

func (c *Coordinator) configureChannel(ctx context.Context, req domain.InteractionRequest, log logger.Logger) *discordgo.InteractionResponse {
	if req.GuildID == "" {
		return ephemeral(msgGuildOnly)
	}
	channelID := req.Options[discord.OptionChannel]
	if channelID == "" {
		return ephemeral(msgMissingChannel)
	}
	if err := c.channels.SetChannel(ctx, req.GuildID, channelID); err != nil {
		log.Error("failed to save channel", logger.Error(err))
		return ephemeral(msgSaveFailed)
	}
	log.Info("channel configured", logger.String("channel_id", channelID))
	return ephemeral(fmt.Sprintf("✅ Channel configured: <#%s>. New posts will be announced there.", channelID))
}

func (c *Coordinator) handleComponent(ctx context.Context, req domain.InteractionRequest) *discordgo.InteractionResponse {
	if req.Action != notify.ActionTranslate {
		return ephemeral(msgUnknownButton)
	}
	lang, ok := domain.LookupLanguage(req.Language)
	if !ok {
		return ephemeral(msgUnknownLanguage)
	}
	log := c.logger.With(
		logger.String("language", lang.Code),
		logger.String("message_key", req.MessageKey))

	entry, err := c.cache.Get(ctx, req.MessageKey)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			c.metrics.RecordCacheLookup("expired")
			return ephemeral(msgExpired)
		}
		log.Error("failed to read translation cache", logger.Error(err))
		return ephemeral(msgButtonFailed)
	}

	if text, ok := entry.Translation(lang.Code); ok {
		c.metrics.RecordCacheLookup("hit")
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    notify.RenderTranslation(lang, text, entry.Metadata.URL),
				Components: []discordgo.MessageComponent{},
			},
		}
	}
	c.metrics.RecordCacheLookup("miss")

	job := c.newJob(domain.JobTranslate, req)
	job.Language = lang.Code
	job.MessageKey = req.MessageKey
	if err := c.queue.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue translate job", logger.Error(err))
		return ephemeral(msgButtonFailed)
	}
	log.Info("translation deferred", logger.String("job_id", job.ID))
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
}

func (c *Coordinator) newJob(kind domain.JobKind, req domain.InteractionRequest) domain.DeferredJob {
	return domain.DeferredJob{
		ID:          c.newID(),
		Kind:        kind,
		Correlation: req.Correlation,
		EnqueuedAt:  c.now().UTC(),
	}
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func outcome(resp *discordgo.InteractionResponse) string {
	switch resp.Type {
	case discordgo.InteractionResponseDeferredChannelMessageWithSource,
		discordgo.InteractionResponseDeferredMessageUpdate:
		return "deferred"
	default:
		return "answered"
	}
}
