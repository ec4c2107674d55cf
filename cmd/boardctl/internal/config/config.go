package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/intraboard/board/cmd/boardctl/internal/client"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type contextKey string

const configKey contextKey = "boardctl-config"

// Token store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

const (
	DefaultServerURL = "http://localhost:8000"
	DefaultRedisKey  = "boardctl:session"
	DefaultTimeout   = 10 * time.Second
)

// GlobalConfig holds shared configuration for all boardctl commands.
// It is injected into the cobra command context by the root command's
// PersistentPreRunE hook and consumed by all subcommands.
type GlobalConfig struct {
	ServerURL      string        `validate:"required,url"`
	Home           string        `validate:"required"`
	TokenStore     string        `validate:"oneof=file redis"`
	RedisAddr      string        `validate:"required_if=TokenStore redis"`
	RedisPassword  string        `validate:"-"`
	RedisKey       string        `validate:"required_if=TokenStore redis"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	Timeout        time.Duration `validate:"gt=0"`
	NonInteractive bool

	Logger         *zap.Logger      `validate:"-"`
	ClientProvider *client.Provider `validate:"-"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*GlobalConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	home, err := defaultHome()
	if err != nil {
		return nil, err
	}

	timeout, err := getEnvDuration("BOARDCTL_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, err
	}

	return &GlobalConfig{
		ServerURL:      getEnv("BOARDCTL_SERVER", DefaultServerURL),
		Home:           getEnv("BOARDCTL_HOME", home),
		TokenStore:     strings.ToLower(getEnv("BOARDCTL_TOKEN_STORE", StoreFile)),
		RedisAddr:      getEnv("BOARDCTL_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("BOARDCTL_REDIS_PASSWORD", ""),
		RedisKey:       getEnv("BOARDCTL_REDIS_KEY", DefaultRedisKey),
		LogLevel:       strings.ToLower(getEnv("BOARDCTL_LOG_LEVEL", "warn")),
		Timeout:        timeout,
		NonInteractive: getEnv("BOARDCTL_NON_INTERACTIVE", "") == "1",
	}, nil
}

// Validate checks the resolved configuration.
func (c *GlobalConfig) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ClientOptions maps the configuration onto client provider options.
func (c *GlobalConfig) ClientOptions() client.Options {
	return client.Options{
		ServerURL:     c.ServerURL,
		Home:          c.Home,
		TokenStore:    c.TokenStore,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisKey:      c.RedisKey,
		Timeout:       c.Timeout,
		Logger:        c.Logger,
	}
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
// Only use it in RunE functions, after the root command has injected config.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("boardctl: config not found in context - this is a bug in boardctl")
	}
	return cfg
}

func defaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".boardctl"), nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	// Bare numbers are seconds.
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a duration like 10s", key, value)
	}
	return time.Duration(secs) * time.Second, nil
}
