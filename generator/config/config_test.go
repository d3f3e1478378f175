package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 108, cfg.Network.Validators)
	assert.Equal(t, 20, cfg.Network.SampleSize)
	assert.Equal(t, int64(64102831), cfg.Network.StartRound)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generator.yaml")
	cfgText := `port: 9100
tickInterval: 500ms
network:
  validators: 21
  sampleSize: 5
  seed: 7
`
	require.NoError(t, os.WriteFile(path, []byte(cfgText), 0o644))

	t.Setenv("GENERATOR_CONFIG", path)
	t.Setenv("GENERATOR_PORT", "9200")
	t.Setenv("JWT_SECRET", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Port, "env overrides file")
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 21, cfg.Network.Validators)
	assert.Equal(t, 5, cfg.Network.SampleSize)
	assert.Equal(t, int64(7), cfg.Network.Seed)
	assert.Equal(t, 1500, cfg.Network.TotalNetworkNodes, "unset keys keep defaults")
	assert.Equal(t, "abc", cfg.JWTSecret)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("GENERATOR_CONFIG", "")
	t.Setenv("GENERATOR_PORT", "nope")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Network.TotalNetworkNodes = 10
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.TickInterval = 0
	assert.Error(t, cfg.Validate())
}
