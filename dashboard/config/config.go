package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	UIModeTUI = "tui"
	UIModeLog = "log"
)

type Config struct {
	Port          int // HTTP API port
	HistoryPoints int // Samples kept by the chart window
	UIMode        string
	Redis         RedisConfig
	ETL           ETLConfig
	Feed          FeedConfig
}

type RedisConfig struct {
	Host string
	Port int
	TTL  time.Duration
}

type ETLConfig struct {
	Interval     time.Duration
	GeneratorURL string
}

type FeedConfig struct {
	ReconnectDelay time.Duration
	JWTSecret      string
}

// NewConfig reads defaults and environment overrides. A local .env file is
// loaded first; variables already set in the environment win.
func NewConfig() *Config {
	_ = godotenv.Load()

	// Read Redis host from environment variable, default to localhost
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	// Read generator URL from environment variable, default to localhost
	generatorURL := os.Getenv("GENERATOR_URL")
	if generatorURL == "" {
		generatorURL = "http://localhost:9001"
	}

	uiMode := os.Getenv("UI_MODE")
	if uiMode == "" {
		uiMode = UIModeTUI
	}

	return &Config{
		Port:          envInt("PORT", 8080),
		HistoryPoints: envInt("HISTORY_POINTS", 50),
		UIMode:        uiMode,
		Redis: RedisConfig{
			Host: redisHost,
			Port: envInt("REDIS_PORT", 6379),
			TTL:  envDuration("REDIS_TTL", 30*time.Second),
		},
		ETL: ETLConfig{
			Interval:     envDuration("ETL_INTERVAL", 10*time.Second),
			GeneratorURL: generatorURL,
		},
		Feed: FeedConfig{
			ReconnectDelay: envDuration("RECONNECT_DELAY", 5*time.Second),
			JWTSecret:      os.Getenv("JWT_SECRET"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.HistoryPoints <= 0 {
		return fmt.Errorf("HISTORY_POINTS must be positive, got %d", c.HistoryPoints)
	}
	if c.UIMode != UIModeTUI && c.UIMode != UIModeLog {
		return fmt.Errorf("UI_MODE must be %q or %q, got %q", UIModeTUI, UIModeLog, c.UIMode)
	}
	if c.ETL.Interval <= 0 {
		return fmt.Errorf("ETL_INTERVAL must be positive, got %s", c.ETL.Interval)
	}
	return nil
}

// envInt returns def when the variable is unset or not a number.
func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := time.ParseDuration(s); err == nil {
			return v
		}
	}
	return def
}
