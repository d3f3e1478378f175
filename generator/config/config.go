package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          int           `yaml:"port"`          // Default port
	CacheTTL      time.Duration `yaml:"cacheTTL"`      // Validators CSV cache TTL
	TickInterval  time.Duration `yaml:"tickInterval"`  // One consensus round per tick
	ResetSchedule string        `yaml:"resetSchedule"` // Cron spec for zeroing the 24h counters
	Network       NetworkConfig `yaml:"network"`

	// JWTSecret enables bearer auth on /socket. Read from JWT_SECRET only.
	JWTSecret string `yaml:"-"`
}

type NetworkConfig struct {
	Validators        int   `yaml:"validators"`        // Master nodes
	SampleSize        int   `yaml:"sampleSize"`        // Validators per update
	StartRound        int64 `yaml:"startRound"`        // First consensus round
	TotalNetworkNodes int   `yaml:"totalNetworkNodes"` // Initial node count
	Seed              int64 `yaml:"seed"`              // 0 picks a random seed
}

func NewConfig() *Config {
	return &Config{
		Port:          9001,
		CacheTTL:      10 * time.Second,
		TickInterval:  2 * time.Second,
		ResetSchedule: "@daily",
		Network: NetworkConfig{
			Validators:        108,
			SampleSize:        20,
			StartRound:        64102831,
			TotalNetworkNodes: 1500,
		},
	}
}

// Load builds the config from defaults, an optional YAML file named by
// GENERATOR_CONFIG, and environment overrides (a local .env is honoured).
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := NewConfig()

	if path := os.Getenv("GENERATOR_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if portStr := os.Getenv("GENERATOR_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERATOR_PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive, got %s", c.TickInterval)
	}
	if c.Network.Validators <= 0 {
		return fmt.Errorf("network.validators must be positive, got %d", c.Network.Validators)
	}
	if c.Network.SampleSize <= 0 {
		return fmt.Errorf("network.sampleSize must be positive, got %d", c.Network.SampleSize)
	}
	if c.Network.TotalNetworkNodes < c.Network.Validators {
		return fmt.Errorf("network.totalNetworkNodes (%d) below validators (%d)",
			c.Network.TotalNetworkNodes, c.Network.Validators)
	}
	return nil
}
