package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Command names.
const (
	CommandConfigureChannel = "configure-channel"
	CommandStatus           = "status"
	checkPrefix             = "check-"

	// OptionChannel is the channel argument of configure-channel.
	OptionChannel = "channel"
)

// CheckCommand returns the check command of a category ("check-patch-note").
func CheckCommand(c domain.Category) string {
	return checkPrefix + c.Slug()
}

// CategoryForCommand maps a check command back to its category.
func CategoryForCommand(name string) (domain.Category, bool) {
	for _, c := range domain.Categories {
		if CheckCommand(c) == name {
			return c, true
		}
	}
	return "", false
}

// Commands declares the slash command set.
func Commands() []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        CommandConfigureChannel,
			Description: "Choose the channel that receives board notifications",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         OptionChannel,
				Description:  "Notification channel",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
			}},
		},
	}
	for _, c := range domain.Categories {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        CheckCommand(c),
			Description: fmt.Sprintf("Show the latest %s", c),
		})
	}
	return append(cmds, &discordgo.ApplicationCommand{
		Name:        CommandStatus,
		Description: "Show the notification channel and the last post seen per board",
	})
}

// Register overwrites the application's commands, globally or on one guild.
func (t *Transport) Register(ctx context.Context, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	created, err := t.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return created, nil
}
