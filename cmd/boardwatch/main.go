package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/boardwatch/internal/app"
	"github.com/MrSnakeDoc/boardwatch/internal/config"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "boardwatch",
		Short:         "Watch forum boards and post new announcements to Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
		RunE:          runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(registerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ boardwatch: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interactions endpoint, worker pool and poll scheduler (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			report, err := app.PollOnce(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Skipped {
				fmt.Fprintln(out, "no channel configured, nothing polled")
				return nil
			}
			for _, r := range report.Results {
				line := fmt.Sprintf("%-12s %-10s delivered=%d %s", r.Category, r.Outcome, r.Delivered, r.URL)
				if r.Err != nil {
					line += " error=" + r.Err.Error()
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "cycle finished in %s\n", report.Elapsed)
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the slash commands with Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if guildID != "" {
				cfg.DiscordGuildID = guildID
			}
			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			return app.RegisterCommands(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "register on one guild instead of globally")
	return cmd
}
