package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/api/auth/refresh"

// SessionManager owns the renewal protocol over a TokenStore.
type SessionManager struct {
	store      TokenStore
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	singleFlight bool
	group        singleflight.Group
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithSessionHTTPClient overrides the HTTP client used for renewal calls.
func WithSessionHTTPClient(client *http.Client) SessionOption {
	return func(m *SessionManager) {
		m.httpClient = client
	}
}

// WithSessionLogger sets the logger used by the session manager.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

// WithSingleFlight toggles coalescing of concurrent renewals. Enabled by default.
// When disabled, racing callers each rotate the refresh token independently.
func WithSingleFlight(enabled bool) SessionOption {
	return func(m *SessionManager) {
		m.singleFlight = enabled
	}
}

// NewSessionManager creates a session manager renewing against baseURL.
func NewSessionManager(baseURL string, store TokenStore, optFns ...SessionOption) *SessionManager {
	m := &SessionManager{
		store:        store,
		baseURL:      baseURL,
		singleFlight: true,
	}
	for _, fn := range optFns {
		fn(m)
	}
	if m.httpClient == nil {
		m.httpClient = http.DefaultClient
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Credentials returns the currently stored token pair.
func (m *SessionManager) Credentials(ctx context.Context) (Credentials, error) {
	return m.store.Get(ctx)
}

// AccessToken returns the current access token, or "" when none is stored.
func (m *SessionManager) AccessToken(ctx context.Context) (string, error) {
	creds, err := m.store.Get(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// Establish stores a freshly issued token pair (login or signup).
func (m *SessionManager) Establish(ctx context.Context, pair TokenPair) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("token pair is incomplete")
	}
	return m.store.Set(ctx, pair.AccessToken, pair.RefreshToken)
}

// End clears the stored session.
func (m *SessionManager) End(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Renew exchanges the stored refresh token for a new token pair and returns
// the new access token. A rejected renewal clears the store. Renewal is never
// retried here.
func (m *SessionManager) Renew(ctx context.Context) (string, error) {
	if !m.singleFlight {
		return m.renew(ctx)
	}

	ch := m.group.DoChan("renew", func() (any, error) {
		return m.renew(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			m.logger.Debug("joined in-flight session renewal")
		}
		return res.Val.(string), nil
	}
}

func (m *SessionManager) renew(ctx context.Context) (string, error) {
	creds, err := m.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read token store: %w", err)
	}
	if creds.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	endpoint, err := url.JoinPath(m.baseURL, refreshPath)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": creds.RefreshToken})
	if err != nil {
		return "", fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Info("session renewal rejected", zap.Int("status", resp.StatusCode))
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("failed to clear token store", zap.Error(err))
		}
		return "", ErrRenewalRejected
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return "", &TransportError{Op: "decode refresh response", Err: err}
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return "", &TransportError{Op: "decode refresh response", Err: fmt.Errorf("token pair is incomplete")}
	}

	if err := m.store.Set(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return "", fmt.Errorf("failed to store renewed tokens: %w", err)
	}

	m.logger.Debug("session renewed")
	return pair.AccessToken, nil
}

// TokenSource exposes the current access token as an oauth2.TokenSource so
// plain oauth2 HTTP clients can attach the bearer header.
func (m *SessionManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: m.store}
}

type storeTokenSource struct {
	ctx   context.Context
	store TokenStore
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	creds, err := s.store.Get(s.ctx)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("not logged in")
	}
	return &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
