package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/intraboard/board/cmd/boardctl/internal/auth"
	"github.com/intraboard/board/cmd/boardctl/internal/localstate"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options configures a Provider.
type Options struct {
	ServerURL     string
	Home          string
	TokenStore    string
	RedisAddr     string
	RedisPassword string
	RedisKey      string
	Timeout       time.Duration
	Logger        *zap.Logger
	HTTPClient    *http.Client
}

// Provider lazily builds the token store, SDK client and session context
// shared by every command in one invocation.
type Provider struct {
	opts Options

	storeOnce   sync.Once
	store       sdk.TokenStore
	redisClient *redis.Client
	storeErr    error

	stateOnce sync.Once
	state     *localstate.Store
	stateErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error

	sessionOnce sync.Once
	session     *sdk.SessionContext
	sessionErr  error
}

// NewProvider constructs a Provider from opts.
func NewProvider(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Provider{opts: opts}
}

// ServerURL returns the configured API server.
func (p *Provider) ServerURL() string {
	return p.opts.ServerURL
}

// TokenStore returns the configured credential backend.
func (p *Provider) TokenStore(ctx context.Context) (sdk.TokenStore, error) {
	p.storeOnce.Do(func() {
		switch p.opts.TokenStore {
		case "", "file":
			p.store, p.storeErr = auth.NewFileStore(p.opts.Home)
		case "redis":
			p.redisClient = redis.NewClient(&redis.Options{
				Addr:     p.opts.RedisAddr,
				Password: p.opts.RedisPassword,
			})
			pingCtx, cancel := ensureTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := p.redisClient.Ping(pingCtx).Err(); err != nil {
				p.storeErr = fmt.Errorf("redis token store unavailable at %s: %w", p.opts.RedisAddr, err)
				return
			}
			p.store = auth.NewRedisStore(p.redisClient, p.opts.RedisKey)
		default:
			p.storeErr = fmt.Errorf("unknown token store %q", p.opts.TokenStore)
		}
		if p.storeErr == nil {
			p.opts.Logger.Debug("token store ready", zap.String("backend", p.opts.TokenStore))
		}
	})
	return p.store, p.storeErr
}

// LocalState returns the on-disk cache and preference store.
func (p *Provider) LocalState() (*localstate.Store, error) {
	p.stateOnce.Do(func() {
		p.state, p.stateErr = localstate.New(p.opts.Home)
	})
	return p.state, p.stateErr
}

// SDKClient returns an SDK client backed by the configured token store.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		store, err := p.TokenStore(ctx)
		if err != nil {
			p.sdkErr = err
			return
		}

		httpClient := p.opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: p.opts.Timeout}
		}

		p.sdkClient = sdk.NewClient(p.opts.ServerURL,
			sdk.WithHTTPClient(httpClient),
			sdk.WithTokenStore(store),
			sdk.WithLogger(p.opts.Logger),
		)
	})
	if p.sdkErr != nil {
		return nil, p.sdkErr
	}
	return p.sdkClient, nil
}

// Session returns the session context bound to the on-disk caches.
func (p *Provider) Session(ctx context.Context) (*sdk.SessionContext, error) {
	p.sessionOnce.Do(func() {
		client, err := p.SDKClient(ctx)
		if err != nil {
			p.sessionErr = err
			return
		}
		state, err := p.LocalState()
		if err != nil {
			p.sessionErr = err
			return
		}
		p.session = sdk.NewSessionContext(client, state)
	})
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	return p.session, nil
}

// Close releases backend connections.
func (p *Provider) Close() error {
	if p.redisClient != nil {
		return p.redisClient.Close()
	}
	return nil
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
