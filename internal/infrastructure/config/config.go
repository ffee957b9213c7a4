// Package config loads the service configuration from config.toml and
// ESTATE_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Messaging    MessagingConfig    `mapstructure:"messaging"`
	Treasury     TreasuryConfig     `mapstructure:"treasury"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN renders a postgres URL; credentials are escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig configures the balance cache. An empty Host keeps the cache in memory.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig verifies access tokens issued by the identity provider
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Leeway time.Duration `mapstructure:"leeway"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// SchedulerConfig drives the daily ledger job: overdue marking, late fees,
// notifications and retention cleanup per tenant
type SchedulerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	DailyCronSchedule string        `mapstructure:"daily_cron_schedule"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	ProfilingServer   string        `mapstructure:"profiling_server"` // Pyroscope URL
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// MessagingConfig forwards committed domain events to an AMQP exchange.
// An empty URL keeps events in process.
type MessagingConfig struct {
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
	RoutingKey   string `mapstructure:"routing_key"` // prefix, the event type is appended
}

type TreasuryConfig struct {
	LateFeePercent  decimal.Decimal `mapstructure:"late_fee_percent"`
	BalanceCacheTTL time.Duration   `mapstructure:"balance_cache_ttl"`
}

// NotificationConfig holds the values used for users without stored settings
type NotificationConfig struct {
	InstallmentDueDays     int             `mapstructure:"installment_due_days"`
	BudgetThresholdPercent decimal.Decimal `mapstructure:"budget_threshold_percent"`
	PendingSettlementDays  int             `mapstructure:"pending_settlement_days"`
	RetentionDays          int             `mapstructure:"retention_days"`
}

// defaults registers every key. Viper only consults the environment for
// keys it knows, so keys without a useful default are registered empty.
var defaults = map[string]any{
	"app.name": "realestate",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "realestate",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret": "",
	"jwt.issuer": "realestate",
	"jwt.leeway": time.Duration(0),

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       15 * time.Second,
	"http.idle_timeout":        60 * time.Second,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       10 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":     []string{},

	"scheduler.enabled":             false,
	"scheduler.daily_cron_schedule": "0 2 * * *",
	"scheduler.max_concurrent_jobs": 3,
	"scheduler.job_timeout":         30 * time.Minute,
	"scheduler.retry_attempts":      3,
	"scheduler.retry_delay":         5 * time.Minute,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "realestate",
	"telemetry.insecure":                false,
	"telemetry.logs_enabled":            false,
	"telemetry.profiling_enabled":       false,
	"telemetry.profiling_server":        "",
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"messaging.url":           "",
	"messaging.exchange":      "realestate.events",
	"messaging.exchange_type": "topic",
	"messaging.routing_key":   "realestate",

	"treasury.late_fee_percent":  "2",
	"treasury.balance_cache_ttl": 5 * time.Minute,

	"notification.installment_due_days":     7,
	"notification.budget_threshold_percent": "80",
	"notification.pending_settlement_days":  7,
	"notification.retention_days":           90,
}

// Load reads configuration. Precedence, highest first: ESTATE_* environment
// variables (ESTATE_DATABASE_PASSWORD sets database.password), config.toml
// in . or /app, built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		decimalHook,
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook decodes money and percentages exactly. TOML floats go through
// their shortest string form so 2.5 stays 2.5.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	var raw string
	switch v := data.(type) {
	case string:
		raw = strings.TrimSpace(v)
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		raw = strconv.FormatInt(v, 10)
	case int:
		raw = strconv.Itoa(v)
	default:
		return data, nil
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", raw)
	}
	return d, nil
}

func percent(name string, d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100, got %s", name, d)
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Database.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case c.Database.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case c.Database.MaxIdleConns > c.Database.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	case c.Notification.InstallmentDueDays < 0:
		return errors.New("notification.installment_due_days cannot be negative")
	case c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1:
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if err := percent("treasury.late_fee_percent", c.Treasury.LateFeePercent); err != nil {
		return err
	}
	if err := percent("notification.budget_threshold_percent", c.Notification.BudgetThresholdPercent); err != nil {
		return err
	}
	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction rejects settings that are only acceptable on a laptop
func (c *Config) validateProduction() error {
	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required in production")
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case c.Telemetry.DBLogFullSQL:
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return errors.New("http.cors_allow_origins cannot be '*' in production")
		}
	}
	return nil
}
