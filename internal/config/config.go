package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Translation backends.
const (
	TranslatorGoogle    = "google"
	TranslatorAnthropic = "anthropic"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Discord
	DiscordToken     string // bot token, used for sends, edits and registration
	DiscordPublicKey string // hex ed25519 key used to verify interactions
	DiscordAppID     string // application id, required by the register command
	DiscordGuildID   string // optional, register commands on a single guild

	// Board
	BoardBaseURL string        // origin used to absolutize listing links
	RulesFile    string        // optional YAML overriding selectors and denylists
	FetchTimeout time.Duration // per-request timeout against the forum
	FetchRPS     float64       // max requests per second against the forum
	FetchBurst   int

	// Pipeline
	PollSchedule      string        // cron expression (5 fields)
	PollOnStart       bool          // run one cycle immediately on startup
	CacheTTL          time.Duration // translation cache lifespan, not sliding
	SweepInterval     time.Duration // memory store eviction pass
	WorkerConcurrency int           // async worker consumers
	JobTimeout        time.Duration // budget for a single deferred job

	// Translation
	Translator      string // "google" | "anthropic"
	TranslateURL    string // google endpoint override (tests, proxies)
	AnthropicAPIKey string
	AnthropicModel  string

	// Store
	Store                 string        // "redis" | "memory"
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS  []string // optional, restrict ops endpoints (/poll, /infra, /metrics)
	AllowedHosts  []string // optional, Host headers accepted on ops endpoints ("*.example.com" ok)
	TrustProxy    bool     // true => trust X-Forwarded-For headers
	OpsRateBurst  int      // per-IP burst on ops endpoints
	OpsRatePerMin int      // per-IP refill on ops endpoints
}

func Load() *Config {
	// A missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BOARDWATCH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BOARDWATCH_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BOARDWATCH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOARDWATCH_PRETTY_LOG", false),

		// Discord
		DiscordToken:     requireEnv("BOARDWATCH_DISCORD_TOKEN"),
		DiscordPublicKey: getenv("BOARDWATCH_DISCORD_PUBLIC_KEY", ""),
		DiscordAppID:     getenv("BOARDWATCH_DISCORD_APP_ID", ""),
		DiscordGuildID:   getenv("BOARDWATCH_DISCORD_GUILD_ID", ""),

		// Board
		BoardBaseURL: getenv("BOARDWATCH_BOARD_BASE_URL", "https://forum.mir4global.com"),
		RulesFile:    getenv("BOARDWATCH_RULES_FILE", ""),
		FetchTimeout: mustDuration("BOARDWATCH_FETCH_TIMEOUT", 15*time.Second),
		FetchRPS:     getenvFloat("BOARDWATCH_FETCH_RPS", 2),
		FetchBurst:   getenvInt("BOARDWATCH_FETCH_BURST", 2),

		// Pipeline
		PollSchedule:      getenv("BOARDWATCH_POLL_SCHEDULE", "*/10 * * * *"),
		PollOnStart:       mustBool("BOARDWATCH_POLL_ON_START", true),
		CacheTTL:          mustDuration("BOARDWATCH_CACHE_TTL", time.Hour),
		SweepInterval:     mustDuration("BOARDWATCH_CACHE_SWEEP_INTERVAL", 10*time.Minute),
		WorkerConcurrency: getenvInt("BOARDWATCH_WORKER_CONCURRENCY", 4),
		JobTimeout:        mustDuration("BOARDWATCH_JOB_TIMEOUT", 60*time.Second),

		// Translation
		Translator:      strings.ToLower(getenv("BOARDWATCH_TRANSLATOR", TranslatorGoogle)),
		TranslateURL:    getenv("BOARDWATCH_TRANSLATE_URL", ""),
		AnthropicAPIKey: getenv("BOARDWATCH_ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getenv("BOARDWATCH_ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		// Store
		Store:                 strings.ToLower(getenv("BOARDWATCH_STORE", StoreRedis)),
		RedisAddr:             getenv("BOARDWATCH_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("BOARDWATCH_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("BOARDWATCH_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("BOARDWATCH_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BOARDWATCH_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS:  parseAllowedIPs(getenv("BOARDWATCH_ALLOWED_CIDRS", "")),
		AllowedHosts:  splitAndTrim(getenv("BOARDWATCH_ALLOWED_HOSTS", "")),
		TrustProxy:    mustBool("BOARDWATCH_TRUST_PROXY", false),
		OpsRateBurst:  getenvInt("BOARDWATCH_OPS_RATE_BURST", 10),
		OpsRatePerMin: getenvInt("BOARDWATCH_OPS_RATE_PER_MIN", 30),
	}

	// Validate Redis password configuration
	if cfg.Store == StoreRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BOARDWATCH_REDIS_PASSWORD is required when BOARDWATCH_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.DiscordToken = redact(cp.DiscordToken)
	cp.RedisPassword = redact(cp.RedisPassword)
	cp.AnthropicAPIKey = redact(cp.AnthropicAPIKey)
	if cp.RedisUser != "" {
		cp.RedisUser = redact(cp.RedisUser)
	}
	return cp
}

// ValidateServe checks what the long-running server needs beyond Load.
func (c *Config) ValidateServe() error {
	if c.DiscordPublicKey == "" {
		return fmt.Errorf("BOARDWATCH_DISCORD_PUBLIC_KEY is required to verify interactions")
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("BOARDWATCH_WORKER_CONCURRENCY must be >= 1, got %d", c.WorkerConcurrency)
	}
	return nil
}

// ValidatePoll checks what a one-shot poll cycle needs.
func (c *Config) ValidatePoll() error {
	return c.validatePipeline()
}

// ValidateRegister checks what command registration needs.
func (c *Config) ValidateRegister() error {
	if c.DiscordAppID == "" {
		return fmt.Errorf("BOARDWATCH_DISCORD_APP_ID is required to register commands")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Store {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown BOARDWATCH_STORE %q (want %q or %q)", c.Store, StoreRedis, StoreMemory)
	}
	switch c.Translator {
	case TranslatorGoogle:
	case TranslatorAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("BOARDWATCH_ANTHROPIC_API_KEY is required when BOARDWATCH_TRANSLATOR=%s", TranslatorAnthropic)
		}
	default:
		return fmt.Errorf("unknown BOARDWATCH_TRANSLATOR %q", c.Translator)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("BOARDWATCH_CACHE_TTL must be > 0, got %v", c.CacheTTL)
	}
	return nil
}

// helpers
func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
