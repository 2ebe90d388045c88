package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Rates     RatesConfig     `mapstructure:",squash"`
	Backup    BackupConfig    `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"DATABASE_DRIVER"`
	URL             string `mapstructure:"DATABASE_URL"`
	Host            string `mapstructure:"DATABASE_HOST"`
	Port            string `mapstructure:"DATABASE_PORT"`
	Name            string `mapstructure:"DATABASE_NAME"`
	User            string `mapstructure:"DATABASE_USER"`
	Password        string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	URL        string `mapstructure:"REDIS_URL"`
	Host       string `mapstructure:"REDIS_HOST"`
	Port       string `mapstructure:"REDIS_PORT"`
	Password   string `mapstructure:"REDIS_PASSWORD"`
	DB         int    `mapstructure:"REDIS_DB"`
	SummaryTTL string `mapstructure:"REDIS_SUMMARY_TTL"`
}

type SchedulerConfig struct {
	RateRefreshSpec string `mapstructure:"SCHEDULER_RATE_REFRESH"`
	BackupSpec      string `mapstructure:"SCHEDULER_BACKUP"`
	PortfolioSpec   string `mapstructure:"SCHEDULER_PORTFOLIO"`
	Timezone        string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	BaseCurrency           string `mapstructure:"BASE_CURRENCY"`
	DefaultDisplayCurrency string `mapstructure:"DEFAULT_DISPLAY_CURRENCY"`
	Locale                 string `mapstructure:"DISPLAY_LOCALE"`
}

type RatesConfig struct {
	SourceURL string `mapstructure:"RATES_SOURCE_URL"`
	Timeout   string `mapstructure:"RATES_TIMEOUT"`
}

type BackupConfig struct {
	Dir    string `mapstructure:"BACKUP_DIR"`
	Bucket string `mapstructure:"BACKUP_BUCKET"`
	Prefix string `mapstructure:"BACKUP_PREFIX"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"DATABASE_DRIVER":            "postgres",
	"DATABASE_URL":               "",
	"DATABASE_HOST":              "localhost",
	"DATABASE_PORT":              "5432",
	"DATABASE_NAME":              "banquito",
	"DATABASE_USER":              "banquito",
	"DATABASE_PASSWORD":          "",
	"DATABASE_SSLMODE":           "disable",
	"DATABASE_MAX_OPEN_CONNS":    10,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "30m",
	"REDIS_URL":                  "",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"REDIS_SUMMARY_TTL":          "10m",
	"SCHEDULER_RATE_REFRESH":     "0 0 */6 * * *",
	"SCHEDULER_BACKUP":           "0 30 2 * * *",
	"SCHEDULER_PORTFOLIO":        "0 5 0 * * *",
	"SCHEDULER_TIMEZONE":         "America/Managua",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"BASE_CURRENCY":              "USD",
	"DEFAULT_DISPLAY_CURRENCY":   "NIO",
	"DISPLAY_LOCALE":             "en",
	"RATES_SOURCE_URL":           "",
	"RATES_TIMEOUT":              "10s",
	"BACKUP_DIR":                 "./backups",
	"BACKUP_BUCKET":              "",
	"BACKUP_PREFIX":              "banquito",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load(".env")
	_ = godotenv.Load("./deployments/.env")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read from environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
		}
	case "sqlite3":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for sqlite3")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.Database.Driver)
	}

	if len(c.Business.BaseCurrency) != 3 {
		return fmt.Errorf("BASE_CURRENCY must be a 3-letter code")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}

	if _, err := language.Parse(c.Business.Locale); err != nil {
		return fmt.Errorf("DISPLAY_LOCALE must be a valid language tag: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"REDIS_SUMMARY_TTL":          c.Redis.SummaryTTL,
		"RATES_TIMEOUT":              c.Rates.Timeout,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
	}

	if c.Rates.SourceURL != "" {
		if _, err := url.ParseRequestURI(c.Rates.SourceURL); err != nil {
			return fmt.Errorf("RATES_SOURCE_URL must be a valid URL: %w", err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN returns the data source name for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisAddr returns host:port for the redis client
func (r RedisConfig) RedisAddr() string {
	return r.Host + ":" + r.Port
}

// GetLocale returns the display locale as a language tag
func (c *Config) GetLocale() language.Tag {
	tag, err := language.Parse(c.Business.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// GetLocation returns the scheduler timezone; "today" is computed in it
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetBaseCurrency returns the upper-cased base currency code
func (c *Config) GetBaseCurrency() string {
	return strings.ToUpper(c.Business.BaseCurrency)
}

// GetReadTimeout returns the server read timeout as duration
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout)
}

// GetWriteTimeout returns the server write timeout as duration
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout)
}

// GetConnMaxLifetime returns the database connection lifetime as duration
func (c *Config) GetConnMaxLifetime() time.Duration {
	return parseDuration(c.Database.ConnMaxLifetime)
}

// GetSummaryTTL returns how long a cached portfolio summary stays valid
func (c *Config) GetSummaryTTL() time.Duration {
	return parseDuration(c.Redis.SummaryTTL)
}

// GetRatesTimeout returns the exchange-rate fetch timeout as duration
func (c *Config) GetRatesTimeout() time.Duration {
	return parseDuration(c.Rates.Timeout)
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	return parseDuration(c.Health.Timeout)
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
