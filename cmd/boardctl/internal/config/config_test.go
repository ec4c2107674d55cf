package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, StoreFile, cfg.TokenStore)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Contains(t, cfg.Home, ".boardctl")
	assert.False(t, cfg.NonInteractive)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOARDCTL_SERVER", "https://intranet.example.com")
	t.Setenv("BOARDCTL_HOME", "/tmp/boardctl-test")
	t.Setenv("BOARDCTL_TOKEN_STORE", "REDIS")
	t.Setenv("BOARDCTL_REDIS_ADDR", "cache:6379")
	t.Setenv("BOARDCTL_TIMEOUT", "30")
	t.Setenv("BOARDCTL_NON_INTERACTIVE", "1")
	t.Setenv("BOARDCTL_LOG_LEVEL", "Debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://intranet.example.com", cfg.ServerURL)
	assert.Equal(t, "/tmp/boardctl-test", cfg.Home)
	assert.Equal(t, StoreRedis, cfg.TokenStore)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NonInteractive)
	assert.NoError(t, cfg.Validate())

	opts := cfg.ClientOptions()
	assert.Equal(t, cfg.RedisKey, opts.RedisKey)
	assert.Equal(t, cfg.ServerURL, opts.ServerURL)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOARDCTL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *GlobalConfig {
		return &GlobalConfig{
			ServerURL:  DefaultServerURL,
			Home:       "/tmp/x",
			TokenStore: StoreFile,
			LogLevel:   "warn",
			Timeout:    time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
	}{
		{name: "bad url", mutate: func(c *GlobalConfig) { c.ServerURL = "not a url" }},
		{name: "unknown store", mutate: func(c *GlobalConfig) { c.TokenStore = "keychain" }},
		{name: "redis without address", mutate: func(c *GlobalConfig) { c.TokenStore = StoreRedis; c.RedisKey = "k" }},
		{name: "unknown log level", mutate: func(c *GlobalConfig) { c.LogLevel = "trace" }},
		{name: "zero timeout", mutate: func(c *GlobalConfig) { c.Timeout = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	cfg := &GlobalConfig{ServerURL: DefaultServerURL}
	ctx := InjectConfig(context.Background(), cfg)
	assert.Same(t, cfg, MustFromContext(ctx))
	assert.Panics(t, func() { MustFromContext(context.Background()) })
}
