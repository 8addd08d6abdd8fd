package interactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

const statusTimeLayout = "2006-01-02 15:04:05 UTC"

// status renders the configured channel and the last automatic update per
// category. Read failures are shown as missing state.
func (c *Coordinator) status(ctx context.Context, guildID string, log logger.Logger) string {
	var sb strings.Builder
	sb.WriteString("🐉 **Boardwatch**\n")

	var (
		channelID string
		ok        bool
	)
	if guildID != "" {
		var err error
		if channelID, ok, err = c.channels.ChannelFor(ctx, guildID); err != nil {
			log.Warn("failed to read channel binding", logger.Error(err))
		}
	}
	if ok {
		fmt.Fprintf(&sb, "💬 Channel: <#%s>\n", channelID)
	} else {
		sb.WriteString("❌ No channel configured\n")
	}

	sb.WriteString("\n**Last automatic updates:**\n")
	for _, category := range domain.Categories {
		wm, seen, err := c.watermarks.GetLast(ctx, category)
		if err != nil {
			log.Warn("failed to read watermark",
				logger.String("category", string(category)),
				logger.Error(err))
		}
		if seen && !wm.SeenAt.IsZero() {
			fmt.Fprintf(&sb, "• **%s:** %s\n", category.Title(), wm.SeenAt.UTC().Format(statusTimeLayout))
		} else {
			fmt.Fprintf(&sb, "• **%s:** no recent records\n", category.Title())
		}
	}
	return sb.String()
}
