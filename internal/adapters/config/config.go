package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stockadvisor/pkg/errors"
)

// Advisor modes
const (
	ModeDelegate = "delegate"
	ModeFlat     = "flat"
)

type Config struct {
	App           AppConfig
	LLM           LLMConfig
	ToolServer    ToolServerConfig
	MarketData    MarketDataConfig
	Search        SearchConfig
	HTTP          HTTPConfig
	Auth          AuthConfig
	Redis         RedisConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"agents"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// UserID is the agent runtime user every session is scoped to.
	UserID string `envconfig:"AGENT_USER_ID" default:"user"`
}

type LLMConfig struct {
	APIKey     string        `envconfig:"GOOGLE_API_KEY"`
	Model      string        `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
	Mode       string        `envconfig:"ADVISOR_MODE" default:"delegate"`
	RunTimeout time.Duration `envconfig:"AGENT_RUN_TIMEOUT" default:"0s"` // 0 = unbounded
}

// HasCredentials reports whether model access is configured.
func (c LLMConfig) HasCredentials() bool {
	return c.APIKey != ""
}

type ToolServerConfig struct {
	// Command defaults to the running executable; see ResolveCommand.
	Command        string        `envconfig:"TOOL_SERVER_COMMAND"`
	Args           []string      `envconfig:"TOOL_SERVER_ARGS" default:"tools"`
	StartupTimeout time.Duration `envconfig:"BRIDGE_STARTUP_TIMEOUT" default:"10s"`
	CallTimeout    time.Duration `envconfig:"TOOL_CALL_TIMEOUT" default:"60s"`
}

// ResolveCommand returns the tool server command, falling back to this binary.
func (c ToolServerConfig) ResolveCommand() (string, error) {
	if c.Command != "" {
		return c.Command, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "resolve own executable")
	}
	return exe, nil
}

type MarketDataConfig struct {
	ChartBaseURL   string        `envconfig:"YAHOO_CHART_URL" default:"https://query1.finance.yahoo.com"`
	SummaryBaseURL string        `envconfig:"YAHOO_SUMMARY_URL" default:"https://query2.finance.yahoo.com"`
	CookieURL      string        `envconfig:"YAHOO_COOKIE_URL" default:"https://fc.yahoo.com"`
	RateLimit      int           `envconfig:"YAHOO_RATE_LIMIT_PER_MIN" default:"120"`
	Timeout        time.Duration `envconfig:"MARKET_HTTP_TIMEOUT" default:"15s"`
	CacheTTL       time.Duration `envconfig:"MARKET_CACHE_TTL" default:"60s"`
	UserAgent      string        `envconfig:"MARKET_USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) stockadvisor"`
}

type SearchConfig struct {
	BaseURL    string        `envconfig:"DDG_BASE_URL" default:"https://html.duckduckgo.com"`
	RateLimit  int           `envconfig:"DDG_RATE_LIMIT_PER_MIN" default:"30"`
	Timeout    time.Duration `envconfig:"DDG_HTTP_TIMEOUT" default:"15s"`
	MaxRetries int           `envconfig:"DDG_MAX_RETRIES" default:"2"`
	UserAgent  string        `envconfig:"SEARCH_USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) stockadvisor"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"8000"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	// WriteTimeout covers whole agent runs, so it is generous.
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"5m"`
}

// MinJWTSecretLength is the shortest HS256 secret the API accepts.
const MinJWTSecretLength = 32

type AuthConfig struct {
	// JWTSecret is only needed by serve; see Validate.
	JWTSecret string        `envconfig:"JWT_SECRET"`
	Issuer    string        `envconfig:"JWT_ISSUER" default:"stockadvisor"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"30m"`
}

// Validate checks the settings the HTTP API cannot start without. The
// secret itself never appears in the error.
func (c AuthConfig) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return errors.NewValidationError("JWT_SECRET", fmt.Sprintf("must be set to at least %d characters", MinJWTSecretLength), len(c.JWTSecret))
	}
	return nil
}

type RedisConfig struct {
	// Empty host keeps the API stores in memory.
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.LLM.Mode {
	case ModeDelegate, ModeFlat:
	default:
		return errors.NewValidationError("ADVISOR_MODE", "must be delegate or flat", c.LLM.Mode)
	}
	if c.ToolServer.StartupTimeout <= 0 {
		return errors.NewValidationError("BRIDGE_STARTUP_TIMEOUT", "must be positive", c.ToolServer.StartupTimeout)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.NewValidationError("HTTP_PORT", "out of range", c.HTTP.Port)
	}
	return nil
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
