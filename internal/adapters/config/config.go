package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"mmradar/pkg/errors"
)

type Config struct {
	App           AppConfig
	Telegram      TelegramConfig
	MarketData    MarketDataConfig
	Disclosure    DisclosureConfig
	Redis         RedisConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
	Metrics       MetricsConfig
	Analytics     AnalyticsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"mmradar"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// Symbols analyzed by the session scheduler
	WatchSymbols []string `envconfig:"WATCH_SYMBOLS" default:"TSLA"`
}

type TelegramConfig struct {
	BotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	ChatIDs  []int64 `envconfig:"TELEGRAM_CHAT_IDS"`
	Debug    bool    `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

type MarketDataConfig struct {
	YahooBaseURL   string `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	FinnhubBaseURL string `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	FinnhubAPIKey  string `envconfig:"FINNHUB_API_KEY"`
	PolygonBaseURL string `envconfig:"POLYGON_BASE_URL" default:"https://api.polygon.io"`
	PolygonAPIKey  string `envconfig:"POLYGON_API_KEY"`

	SourceTimeout time.Duration `envconfig:"MARKET_DATA_SOURCE_TIMEOUT" default:"10s"`
	HistoryDays   int           `envconfig:"MARKET_DATA_HISTORY_DAYS" default:"260"`
	RatePerSecond float64       `envconfig:"MARKET_DATA_RATE_PER_SECOND" default:"5"`
	RateBurst     int           `envconfig:"MARKET_DATA_RATE_BURST" default:"10"`
}

type DisclosureConfig struct {
	SenateBaseURL string `envconfig:"DISCLOSURE_SENATE_BASE_URL" default:"https://senate-stock-watcher-data.s3-us-west-2.amazonaws.com"`
	HouseBaseURL  string `envconfig:"DISCLOSURE_HOUSE_BASE_URL" default:"https://house-stock-watcher-data.s3-us-west-2.amazonaws.com"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	CursorTTL time.Duration `envconfig:"REDIS_CURSOR_TTL" default:"720h"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// WorkerConfig contains intervals for the background workers
type WorkerConfig struct {
	// How often the session worker checks whether a new window opened
	SessionTickInterval time.Duration `envconfig:"WORKER_SESSION_TICK_INTERVAL" default:"1m"`

	// Local-market timezone used to resolve session windows
	MarketTimezone string `envconfig:"WORKER_MARKET_TIMEZONE" default:"America/New_York"`

	NotifyRetries    int           `envconfig:"WORKER_NOTIFY_RETRIES" default:"3"`
	NotifyRetryDelay time.Duration `envconfig:"WORKER_NOTIFY_RETRY_DELAY" default:"2s"`
}

// AnalyticsConfig exposes the principal analyzer thresholds. Remaining
// model cut points keep their package defaults.
type AnalyticsConfig struct {
	AssumedVol           float64 `envconfig:"ANALYTICS_ASSUMED_VOL" default:"0.35"`
	RiskFreeRate         float64 `envconfig:"ANALYTICS_RISK_FREE_RATE" default:"0.05"`
	HighOIThreshold      int64   `envconfig:"ANALYTICS_HIGH_OI_THRESHOLD" default:"100000"`
	MediumOIThreshold    int64   `envconfig:"ANALYTICS_MEDIUM_OI_THRESHOLD" default:"20000"`
	StrongGammaThreshold float64 `envconfig:"ANALYTICS_STRONG_GAMMA_THRESHOLD" default:"5000000"`
	DeltaFlowThreshold   float64 `envconfig:"ANALYTICS_DELTA_FLOW_THRESHOLD" default:"500000"`
	VIXFearThreshold     float64 `envconfig:"ANALYTICS_VIX_FEAR_THRESHOLD" default:"25"`
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
