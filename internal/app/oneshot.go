package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/boardwatch/internal/config"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/pipeline"
)

// TriggerCLI marks cycles started from the command line.
const TriggerCLI = "cli"

// PollOnce runs a single poll cycle against the configured store and exits.
func PollOnce(ctx context.Context, cfg *config.Config, log logger.Logger) (pipeline.Report, error) {
	if err := cfg.ValidatePoll(); err != nil {
		return pipeline.Report{}, err
	}

	m := metrics.New()
	b, err := newBackend(ctx, cfg, log)
	if err != nil {
		return pipeline.Report{}, err
	}
	defer b.close(log)

	transport, err := newTransport(cfg)
	if err != nil {
		return pipeline.Report{}, err
	}
	bs, err := newBoardStack(cfg, log, m)
	if err != nil {
		return pipeline.Report{}, err
	}

	return newPoller(bs, b, transport, log, m).RunCycle(ctx, TriggerCLI)
}

// RegisterCommands overwrites the application's slash commands, globally
// or on BOARDWATCH_DISCORD_GUILD_ID when set.
func RegisterCommands(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if err := cfg.ValidateRegister(); err != nil {
		return err
	}
	transport, err := newTransport(cfg)
	if err != nil {
		return err
	}

	registered, err := transport.Register(ctx, cfg.DiscordAppID, cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	scope := "global"
	if cfg.DiscordGuildID != "" {
		scope = "guild " + cfg.DiscordGuildID
	}
	for _, c := range registered {
		log.Info("command registered",
			logger.String("name", c.Name),
			logger.String("scope", scope))
	}
	return nil
}
