// Package discord adapts the Discord REST API and interaction protocol.
package discord

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Message is a rendered message with optional interactive components.
type Message struct {
	Content    string
	Components []discordgo.MessageComponent
}

// Transport sends channel messages and edits deferred interaction responses.
type Transport struct {
	session *discordgo.Session
}

// NewTransport opens a REST-only session for a bot token. A nil client
// keeps the discordgo default.
func NewTransport(token string, client *http.Client) (*Transport, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if client != nil {
		s.Client = client
	}
	return &Transport{session: s}, nil
}

// Session exposes the underlying session for command registration.
func (t *Transport) Session() *discordgo.Session { return t.session }

// Send posts msg to a channel.
func (t *Transport) Send(ctx context.Context, channelID string, msg Message) error {
	_, err := t.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Components: msg.Components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

// EditOriginal replaces the content and components of a deferred response.
// An empty component list removes the buttons.
func (t *Transport) EditOriginal(ctx context.Context, corr domain.Correlation, msg Message) error {
	components := msg.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	content := msg.Content

	_, err := t.session.InteractionResponseEdit(
		&discordgo.Interaction{AppID: corr.AppID, Token: corr.Token},
		&discordgo.WebhookEdit{Content: &content, Components: &components},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("edit interaction %s: %w", corr.InteractionID, err)
	}
	return nil
}
