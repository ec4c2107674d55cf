package sdk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// SessionCache persists the identity and menu caches between process runs.
// Both entries are cleared together when the session ends.
type SessionCache interface {
	LoadIdentity() (*Identity, error)
	SaveIdentity(identity Identity) error
	LoadMenus() ([]MenuNode, error)
	SaveMenus(menus []MenuNode) error
	ClearSession() error
}

// ErrNotAuthenticated is returned by SessionContext when no identity is known.
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionContext is the session-scoped cache of the viewer's identity and
// menu list. It is initialized by the first successful fetch (or login) and
// torn down by Logout.
type SessionContext struct {
	client *Client
	cache  SessionCache

	mu       sync.Mutex
	identity *Identity
	menus    []MenuNode
}

// NewSessionContext binds a session context to client. cache may be nil.
func NewSessionContext(client *Client, cache SessionCache) *SessionContext {
	return &SessionContext{client: client, cache: cache}
}

// Client returns the underlying API client.
func (s *SessionContext) Client() *Client {
	return s.client
}

// Login authenticates and primes the identity cache.
func (s *SessionContext) Login(ctx context.Context, input LoginInput) (*Identity, error) {
	if err := s.client.Login(ctx, input); err != nil {
		return nil, err
	}
	s.teardown()
	return s.Identity(ctx, true)
}

// Signup registers and primes the identity cache.
func (s *SessionContext) Signup(ctx context.Context, input SignupInput) (*Identity, error) {
	if err := s.client.Signup(ctx, input); err != nil {
		return nil, err
	}
	s.teardown()
	return s.Identity(ctx, true)
}

// Identity returns the viewer. Cached values are served unless refresh is set;
// a session-ending failure tears the context down.
func (s *SessionContext) Identity(ctx context.Context, refresh bool) (*Identity, error) {
	if !refresh {
		if cached := s.cachedIdentity(); cached != nil {
			return cached, nil
		}
	}

	creds, err := s.client.Session().Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		s.teardown()
		return nil, ErrNotAuthenticated
	}

	me, err := s.client.Me(ctx)
	if err != nil {
		if IsSessionEnded(err) {
			s.teardown()
		}
		return nil, err
	}

	s.mu.Lock()
	s.identity = me
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.SaveIdentity(*me); err != nil {
			return me, fmt.Errorf("failed to cache identity: %w", err)
		}
	}
	copied := *me
	return &copied, nil
}

// Menus returns the viewer's menu list, fetching it on first use or when refresh is set.
func (s *SessionContext) Menus(ctx context.Context, refresh bool) ([]MenuNode, error) {
	if !refresh {
		if cached := s.cachedMenus(); cached != nil {
			return cached, nil
		}
	}

	menus, err := s.client.ListMenus(ctx)
	if err != nil {
		if IsSessionEnded(err) {
			s.teardown()
		}
		return nil, err
	}

	s.mu.Lock()
	s.menus = slices.Clone(menus)
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.SaveMenus(menus); err != nil {
			return menus, fmt.Errorf("failed to cache menus: %w", err)
		}
	}
	return menus, nil
}

// MenuTree resolves the viewer's menus for the viewer's role.
func (s *SessionContext) MenuTree(ctx context.Context, refresh bool) (MenuTree, error) {
	me, err := s.Identity(ctx, false)
	if err != nil {
		return MenuTree{}, err
	}
	menus, err := s.Menus(ctx, refresh)
	if err != nil {
		return MenuTree{}, err
	}
	return ResolveMenuTree(menus, me.Role), nil
}

// Logout ends the session server-side and locally and clears both caches.
func (s *SessionContext) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.teardown()
	return err
}

func (s *SessionContext) cachedIdentity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil && s.cache != nil {
		if loaded, err := s.cache.LoadIdentity(); err == nil && loaded != nil {
			s.identity = loaded
		}
	}
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

func (s *SessionContext) cachedMenus() []MenuNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.menus == nil && s.cache != nil {
		if loaded, err := s.cache.LoadMenus(); err == nil && loaded != nil {
			s.menus = loaded
		}
	}
	if s.menus == nil {
		return nil
	}
	return slices.Clone(s.menus)
}

func (s *SessionContext) reset() {
	s.mu.Lock()
	s.identity = nil
	s.menus = nil
	s.mu.Unlock()
}

func (s *SessionContext) teardown() {
	s.reset()
	if s.cache != nil {
		_ = s.cache.ClearSession()
	}
}
