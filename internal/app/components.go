package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/board"
	"github.com/MrSnakeDoc/boardwatch/internal/config"
	"github.com/MrSnakeDoc/boardwatch/internal/discord"
	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/extract"
	"github.com/MrSnakeDoc/boardwatch/internal/fetch"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/metrics"
	"github.com/MrSnakeDoc/boardwatch/internal/notify"
	"github.com/MrSnakeDoc/boardwatch/internal/pipeline"
	"github.com/MrSnakeDoc/boardwatch/internal/queue"
	"github.com/MrSnakeDoc/boardwatch/internal/redis"
	"github.com/MrSnakeDoc/boardwatch/internal/sources/rules"
	"github.com/MrSnakeDoc/boardwatch/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/boardwatch/internal/store/redis"
	"github.com/MrSnakeDoc/boardwatch/internal/translate"
	"github.com/MrSnakeDoc/boardwatch/internal/utils"
)

const discordTimeout = 10 * time.Second

// stateStore is what both store backends provide.
type stateStore interface {
	domain.WatermarkStore
	domain.TranslationCache
	domain.ChannelDirectory
	Ping(ctx context.Context) error
}

// jobQueue is what both queue backends provide.
type jobQueue interface {
	Enqueue(ctx context.Context, job domain.DeferredJob) error
	Dequeue(ctx context.Context) (domain.DeferredJob, error)
}

// backend bundles the persistence layer chosen by BOARDWATCH_STORE.
type backend struct {
	name        string
	store       stateStore
	queue       jobQueue
	queueDepth  func(ctx context.Context) (int64, error)
	memory      *memory.Store   // set for the memory backend, needs sweeping
	redisClient *goredis.Client // set for the redis backend
	closeQueue  func()
}

func newBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store: state is lost on restart and not shared between instances")
		st := memory.New(cfg.CacheTTL, nil)
		q := queue.NewMemory(256)
		return &backend{
			name:       config.StoreMemory,
			store:      st,
			queue:      q,
			queueDepth: func(context.Context) (int64, error) { return int64(q.Len()), nil },
			memory:     st,
			closeQueue: q.Close,
		}, nil
	}

	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Redis initialized successfully")

	q := queue.NewRedis(client)
	return &backend{
		name:        config.StoreRedis,
		store:       redisstore.NewStore(client, redisstore.WithCacheTTL(cfg.CacheTTL)),
		queue:       q,
		queueDepth:  q.Len,
		redisClient: client,
		closeQueue:  func() {},
	}, nil
}

func (b *backend) close(log logger.Logger) {
	b.closeQueue()
	if b.redisClient != nil {
		utils.CloseLogged(b.redisClient, log, "redis client")
		log.Info("✅ Redis closed cleanly")
	}
}

func newTranslator(cfg *config.Config) translate.Translator {
	if cfg.Translator == config.TranslatorAnthropic {
		return translate.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	return translate.NewGoogle(cfg.TranslateURL, cfg.FetchTimeout)
}

func newTransport(cfg *config.Config) (*discord.Transport, error) {
	return discord.NewTransport(cfg.DiscordToken, &http.Client{Timeout: discordTimeout})
}

// boardStack is the scraping side: listing client and content digester.
type boardStack struct {
	board    *board.Client
	digester *pipeline.Digester
}

func newBoardStack(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*boardStack, error) {
	r, err := rules.NewLoader(cfg.RulesFile).Load()
	if err != nil {
		return nil, err
	}

	pages := fetch.New(fetch.Options{
		Timeout: cfg.FetchTimeout,
		RPS:     cfg.FetchRPS,
		Burst:   cfg.FetchBurst,
	})

	client, err := board.NewClient(pages, cfg.BoardBaseURL, r)
	if err != nil {
		return nil, err
	}

	ex := extract.New(pages, r, log)
	return &boardStack{
		board:    client,
		digester: pipeline.NewDigester(ex, log, m),
	}, nil
}

func newPoller(bs *boardStack, b *backend, sender notify.Sender, log logger.Logger, m *metrics.Metrics) *pipeline.Poller {
	return pipeline.NewPoller(pipeline.Deps{
		Board:      bs.board,
		Digester:   bs.digester,
		Watermarks: b.store,
		Cache:      b.store,
		Channels:   b.store,
		Notifier:   notify.NewNotifier(sender, log, m),
		Logger:     log,
		Metrics:    m,
	})
}
