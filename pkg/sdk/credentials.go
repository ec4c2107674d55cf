package sdk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials represents the token pair held for the current session.
// Both tokens are written and cleared together.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// IsEmpty reports whether no session is held.
func (c Credentials) IsEmpty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// TokenPair is the wire shape returned by login, signup and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenStore is the durable holder of the access and refresh tokens.
// Set replaces both values atomically; Clear removes both.
// Only SessionManager writes to a TokenStore.
type TokenStore interface {
	Get(ctx context.Context) (Credentials, error)
	Set(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

// MemoryTokenStore keeps credentials in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	creds Credentials
}

var _ TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get(_ context.Context) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "bearer"}
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

// AccessClaims is the subset of access token claims the client displays.
type AccessClaims struct {
	Subject   string
	Role      string
	TokenType string
	ExpiresAt time.Time
}

// IsExpired reports whether the token's exp claim lies in the past.
func (c AccessClaims) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// InspectAccessToken decodes the claims of an access token without verifying
// its signature. The server remains the authority on validity; this is used
// for status display only.
func InspectAccessToken(token string) (AccessClaims, error) {
	if token == "" {
		return AccessClaims{}, errors.New("no access token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return AccessClaims{}, err
	}

	out := AccessClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if typ, ok := claims["type"].(string); ok {
		out.TokenType = typ
	}
	return out, nil
}
