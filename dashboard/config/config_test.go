package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "HISTORY_POINTS", "UI_MODE", "REDIS_HOST", "REDIS_PORT",
		"REDIS_TTL", "ETL_INTERVAL", "GENERATOR_URL", "RECONNECT_DELAY", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 50, cfg.HistoryPoints)
	assert.Equal(t, UIModeTUI, cfg.UIMode)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "http://localhost:9001", cfg.ETL.GeneratorURL)
	assert.Equal(t, 10*time.Second, cfg.ETL.Interval)
	assert.Equal(t, 5*time.Second, cfg.Feed.ReconnectDelay)
	assert.Empty(t, cfg.Feed.JWTSecret)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8181")
	t.Setenv("HISTORY_POINTS", "20")
	t.Setenv("UI_MODE", "log")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("ETL_INTERVAL", "1m")
	t.Setenv("GENERATOR_URL", "http://generator:9001")
	t.Setenv("RECONNECT_DELAY", "250ms")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := NewConfig()

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, 20, cfg.HistoryPoints)
	assert.Equal(t, UIModeLog, cfg.UIMode)
	assert.Equal(t, "redis", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port, "invalid numbers fall back to the default")
	assert.Equal(t, time.Minute, cfg.ETL.Interval)
	assert.Equal(t, "http://generator:9001", cfg.ETL.GeneratorURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.ReconnectDelay)
	assert.Equal(t, "s3cret", cfg.Feed.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"history points", func(c *Config) { c.HistoryPoints = -1 }},
		{"ui mode", func(c *Config) { c.UIMode = "web" }},
		{"etl interval", func(c *Config) { c.ETL.Interval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.UIMode = UIModeTUI
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
