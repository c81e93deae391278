package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"matchpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Telegram      TelegramConfig
	Feeds         FeedsConfig
	Selection     SelectionConfig
	Window        WindowConfig
	Stream        StreamConfig
	Summarizer    SummarizerConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"matchpulse"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     int    `envconfig:"HTTP_PORT" default:"8080"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"matchpulse"`
}

type RedisConfig struct {
	Host       string        `envconfig:"REDIS_HOST" required:"true"`
	Port       int           `envconfig:"REDIS_PORT" default:"6379"`
	Password   string        `envconfig:"REDIS_PASSWORD"`
	DB         int           `envconfig:"REDIS_DB" default:"0"`
	ProfileTTL time.Duration `envconfig:"REDIS_PROFILE_TTL" default:"5m"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers   []string `envconfig:"KAFKA_BROKERS"`
	TickTopic string   `envconfig:"KAFKA_TICK_TOPIC" default:"matchpulse.ticks"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_ALERT_CHAT_ID"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// FeedsConfig carries upstream social API credentials and the static base
// allowlists per platform (handles or native ids).
type FeedsConfig struct {
	TwitterBearerToken string   `envconfig:"TWITTER_BEARER_TOKEN"`
	TwitterAllowlist   []string `envconfig:"TWITTER_ALLOWLIST"`
	TwitterRateLimit   int      `envconfig:"TWITTER_RATE_LIMIT_PER_MIN" default:"300"`
	BlueskyHost        string   `envconfig:"BLUESKY_HOST" default:"https://public.api.bsky.app"`
	BlueskyAllowlist   []string `envconfig:"BLUESKY_ALLOWLIST"`
	BlueskyRateLimit   int      `envconfig:"BLUESKY_RATE_LIMIT_PER_MIN" default:"300"`
}

type SelectionConfig struct {
	MinFollowers     int64 `envconfig:"SELECTION_MIN_FOLLOWERS" default:"1000"`
	MinAccountMonths int   `envconfig:"SELECTION_MIN_ACCOUNT_MONTHS" default:"6"`
	MaxAccounts      int   `envconfig:"SELECTION_MAX_ACCOUNTS" default:"20"`
}

type WindowConfig struct {
	LiveDurationMin    int `envconfig:"WINDOW_LIVE_DURATION_MIN" default:"120"`
	PreWindowHours     int `envconfig:"WINDOW_PRE_HOURS" default:"2"`
	PostWindowMin      int `envconfig:"WINDOW_POST_MIN" default:"45"`
	DefaultLookbackMin int `envconfig:"WINDOW_DEFAULT_LOOKBACK_MIN" default:"30"`
}

type StreamConfig struct {
	TickInterval      time.Duration `envconfig:"STREAM_TICK_INTERVAL" default:"20s"`
	HeartbeatInterval time.Duration `envconfig:"STREAM_HEARTBEAT_INTERVAL" default:"15s"`
	MaxDuration       time.Duration `envconfig:"STREAM_MAX_DURATION" default:"15m"`
	Keywords          []string      `envconfig:"STREAM_TOPIC_KEYWORDS" default:"goal,penalty,var,referee,offside,corner,red card"`
}

type SummarizerConfig struct {
	OpenAIKey              string        `envconfig:"OPENAI_API_KEY"`
	Model                  string        `envconfig:"SUMMARIZER_MODEL" default:"gpt-4o-mini"`
	ModelMaxTokens         int           `envconfig:"SUMMARIZER_MODEL_MAX_TOKENS" default:"8000"`
	ReservedResponseTokens int           `envconfig:"SUMMARIZER_RESERVED_RESPONSE_TOKENS" default:"1000"`
	CharsPerToken          int           `envconfig:"SUMMARIZER_CHARS_PER_TOKEN" default:"4"`
	MaxPosts               int           `envconfig:"SUMMARIZER_MAX_POSTS" default:"120"`
	RateLimitRequests      int           `envconfig:"SUMMARIZER_RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow        time.Duration `envconfig:"SUMMARIZER_RATE_LIMIT_WINDOW" default:"1m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for all background workers
type WorkerConfig struct {
	SnapshotInterval      time.Duration `envconfig:"WORKER_SNAPSHOT_INTERVAL" default:"1m"`
	SnapshotEnabled       bool          `envconfig:"WORKER_SNAPSHOT_ENABLED" default:"true"`
	OverrideSweepInterval time.Duration `envconfig:"WORKER_OVERRIDE_SWEEP_INTERVAL" default:"10m"`
	OverrideSweepEnabled  bool          `envconfig:"WORKER_OVERRIDE_SWEEP_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
