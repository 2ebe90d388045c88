package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "USD", cfg.GetBaseCurrency())
	assert.Equal(t, "NIO", cfg.Business.DefaultDisplayCurrency)
	assert.Equal(t, 10*time.Minute, cfg.GetSummaryTTL())
	assert.Equal(t, 5*time.Second, cfg.GetHealthTimeout())
	assert.Equal(t, language.English, cfg.GetLocale())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:banquito.db")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ENV", "production")
	t.Setenv("RATES_SOURCE_URL", "https://rates.example.com/latest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:banquito.db", cfg.Database.DSN())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://rates.example.com/latest", cfg.Rates.SourceURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080", ReadTimeout: "1s", WriteTimeout: "1s"},
			Database:  DatabaseConfig{Driver: "postgres", Host: "localhost", ConnMaxLifetime: "1m"},
			Redis:     RedisConfig{SummaryTTL: "1m"},
			Scheduler: SchedulerConfig{Timezone: "UTC"},
			Business:  BusinessConfig{BaseCurrency: "USD", Locale: "en"},
			Rates:     RatesConfig{Timeout: "1s"},
			Health:    HealthConfig{Timeout: "1s"},
		}
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, errorContains: "SERVER_PORT"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, errorContains: "DATABASE_DRIVER"},
		{name: "sqlite without url", mutate: func(c *Config) { c.Database.Driver = "sqlite3" }, errorContains: "DATABASE_URL"},
		{name: "bad base currency", mutate: func(c *Config) { c.Business.BaseCurrency = "DOLLAR" }, errorContains: "BASE_CURRENCY"},
		{name: "bad timezone", mutate: func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, errorContains: "SCHEDULER_TIMEZONE"},
		{name: "bad duration", mutate: func(c *Config) { c.Redis.SummaryTTL = "soon" }, errorContains: "REDIS_SUMMARY_TTL"},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, errorContains: "LOG_FORMAT"},
		{name: "bad rates url", mutate: func(c *Config) { c.Rates.SourceURL = "not a url" }, errorContains: "RATES_SOURCE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
