// Package notify renders post messages and fans them out to channels.
package notify

import (
	"context"

	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
)

// Sender delivers a message to one channel.
type Sender interface {
	Send(ctx context.Context, channelID string, msg discord.Message) error
}

// Notifier fans a message out to every recipient channel.
type Notifier struct {
	sender  Sender
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(sender Sender, log logger.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{sender: sender, logger: log, metrics: m}
}

// Notify sends msg to each recipient and returns how many deliveries
// succeeded. A failed recipient is logged and skipped.
func (n *Notifier) Notify(ctx context.Context, recipients []string, msg discord.Message) int {
	delivered := 0
	for _, channelID := range recipients {
		if err := n.sender.Send(ctx, channelID, msg); err != nil {
			n.logger.Warn("delivery failed",
				logger.String("channel_id", channelID),
				logger.Error(err))
			n.metrics.RecordDelivery(false)
			continue
		}
		n.metrics.RecordDelivery(true)
		delivered++
	}
	return delivered
}
