package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/config"
	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/interactions"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/scheduler"
	"github.com/MrSnakeDoc/boardwatch/internal/version"
	"github.com/MrSnakeDoc/boardwatch/internal/worker"
)

// App is the long-running service: interactions endpoint, worker pool and
// poll scheduler sharing one store.
type App struct {
	cfg       *config.Config
	logger    logger.Logger
	backend   *backend
	server    *httpserver.Server
	pool      *worker.Pool
	scheduler *scheduler.PollScheduler
	sweeper   *scheduler.CacheSweeper
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}
	key, err := discord.ParsePublicKey(cfg.DiscordPublicKey)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	b, err := newBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(cfg)
	if err != nil {
		b.close(log)
		return nil, err
	}

	bs, err := newBoardStack(cfg, log, m)
	if err != nil {
		b.close(log)
		return nil, err
	}

	w := worker.New(worker.Deps{
		Board:      bs.board,
		Digester:   bs.digester,
		Translator: newTranslator(cfg),
		Cache:      b.store,
		Editor:     transport,
		Logger:     log,
		Metrics:    m,
	})
	pool := worker.NewPool(b.queue, w, cfg.WorkerConcurrency, cfg.JobTimeout, log)

	// Manual poll trigger shared by the scheduler and POST /poll.
	pollTrigger := make(chan struct{}, 1)
	sched, err := scheduler.NewPollScheduler(
		newPoller(bs, b, transport, log, m),
		log,
		cfg.PollSchedule,
		cfg.PollOnStart,
		pollTrigger,
	)
	if err != nil {
		b.close(log)
		return nil, err
	}

	var sweeper *scheduler.CacheSweeper
	if b.memory != nil {
		sweeper = scheduler.NewCacheSweeper(b.memory, log, cfg.SweepInterval)
	}

	coordinator := interactions.New(interactions.Deps{
		Cache:      b.store,
		Watermarks: b.store,
		Channels:   b.store,
		Queue:      b.queue,
		Logger:     log,
		Metrics:    m,
	})

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		OpsRateBurst:  cfg.OpsRateBurst,
		OpsRatePerMin: cfg.OpsRatePerMin,
		Verifier:      discord.NewVerifier(key),
		Interactions:  coordinator,
		StoreName:     b.name,
		Store:         b.store,
		Watermarks:    b.store,
		Channels:      b.store,
		QueueDepth:    b.queueDepth,
		Metrics:       m.Handler(),
		PollTrigger:   pollTrigger,
	}

	return &App{
		cfg:       cfg,
		logger:    log,
		backend:   b,
		server:    httpserver.New(cfg, log, d),
		pool:      pool,
		scheduler: sched,
		sweeper:   sweeper,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in order: HTTP intake,
// scheduler, worker pool, store.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Boardwatch v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Boardwatch %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	poolDone := make(chan struct{})
	go func() {
		a.pool.Run(poolCtx)
		close(poolDone)
	}()

	a.scheduler.Start(ctx)
	if a.sweeper != nil {
		a.sweeper.Start(ctx)
		a.logger.Info("cache sweeper started", logger.Duration("interval", a.cfg.SweepInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("http server stopped unexpectedly", logger.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.scheduler.Stop()
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	// In-flight jobs finish under their own timeout.
	stopPool()
	select {
	case <-poolDone:
	case <-time.After(a.cfg.JobTimeout):
		a.logger.Warn("worker pool did not drain before the job timeout")
	}

	a.backend.close(a.logger)
	a.logger.Info("✅ Boardwatch stopped cleanly")
	return runErr
}
