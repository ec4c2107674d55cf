package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intraboard/board/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthServer accepts exactly one access token at a time and rotates the
// pair on every successful refresh.
type fakeAuthServer struct {
	mu            sync.Mutex
	validAccess   string
	validRefresh  string
	nextAccess    string
	nextRefresh   string
	rejectRefresh bool
	refreshCalls  atomic.Int32
	apiCalls      atomic.Int32
	seenTokens    []string
	alwaysDeny    bool
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.rejectRefresh || body.RefreshToken != f.validRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))
			return
		}
		f.validAccess, f.validRefresh = f.nextAccess, f.nextRefresh
		_ = json.NewEncoder(w).Encode(sdk.TokenPair{
			AccessToken:  f.nextAccess,
			RefreshToken: f.nextRefresh,
			TokenType:    "bearer",
		})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		f.mu.Lock()
		f.seenTokens = append(f.seenTokens, r.Header.Get("Authorization"))
		ok := !f.alwaysDeny && r.Header.Get("Authorization") == "Bearer "+f.validAccess
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func newGateway(t *testing.T, h http.Handler, store sdk.TokenStore, opts ...sdk.SessionOption) *sdk.Gateway {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	session := sdk.NewSessionManager(server.URL, store, opts...)
	return sdk.NewGateway(server.URL, session)
}

func TestGateway_RenewThenRetry(t *testing.T) {
	ctx := context.Background()
	// T1 is already stale server-side; T2 becomes valid once refresh rotates.
	fake := &fakeAuthServer{validAccess: "T0", validRefresh: "R1", nextAccess: "T2", nextRefresh: "R2"}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, "T1", "R1"))

	gw := newGateway(t, fake.handler(), store)
	resp, err := gw.Request(ctx, "/api/auth/me", sdk.RequestOptions{})
	require.NoError(t, err)

	var body map[string]bool
	require.NoError(t, resp.Decode(&body))
	assert.True(t, body["ok"])

	assert.Equal(t, int32(1), fake.refreshCalls.Load())
	assert.Equal(t, int32(2), fake.apiCalls.Load())
	assert.Equal(t, []string{"Bearer T1", "Bearer T2"}, fake.seenTokens)

	creds, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", creds.AccessToken)
	assert.Equal(t, "R2", creds.RefreshToken, "refresh token must rotate")
}

func TestGateway_RetryIsNeverRenewedAgain(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthServer{validRefresh: "R1", nextAccess: "T2", nextRefresh: "R2", alwaysDeny: true}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, "T1", "R1"))

	gw := newGateway(t, fake.handler(), store)
	_, err := gw.Request(ctx, "/api/boards", sdk.RequestOptions{})
	require.Error(t, err)

	assert.Equal(t, int32(1), fake.refreshCalls.Load(), "renewal happens exactly once")
	assert.Equal(t, int32(2), fake.apiCalls.Load(), "original call plus one retry")
	assert.True(t, sdk.IsSessionEnded(err))
	assert.Equal(t, "Could not validate credentials", err.Error())
}

func TestGateway_RenewalFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthServer{validAccess: "other", validRefresh: "R1", rejectRefresh: true}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, "T1", "R1"))

	gw := newGateway(t, fake.handler(), store)
	_, err := gw.Request(ctx, "/api/menus", sdk.RequestOptions{})
	require.Error(t, err)

	var apiErr *sdk.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, sdk.KindAuthExpired, apiErr.Kind)
	assert.Equal(t, "Could not validate credentials", apiErr.Message, "the original 401 surfaces")
	assert.Equal(t, int32(1), fake.apiCalls.Load(), "no retry after failed renewal")

	creds, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())
}

func TestGateway_NoRefreshTokenSkipsRenewal(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthServer{validAccess: "x"}
	store := sdk.NewMemoryTokenStore()

	gw := newGateway(t, fake.handler(), store)
	_, err := gw.Request(ctx, "/api/menus", sdk.RequestOptions{})
	require.Error(t, err)
	assert.True(t, sdk.IsSessionEnded(err))
	assert.Equal(t, int32(0), fake.refreshCalls.Load())
	assert.Equal(t, []string{""}, fake.seenTokens, "missing token does not block the call")
}

func TestGateway_UnauthenticatedCallIsNotRenewed(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthServer{validAccess: "x", validRefresh: "R1", nextAccess: "T2", nextRefresh: "R2"}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, "T1", "R1"))

	gw := newGateway(t, fake.handler(), store)
	_, err := gw.Request(ctx, "/api/auth/login", sdk.RequestOptions{Method: http.MethodPost, NoAuth: true})
	require.Error(t, err)
	assert.False(t, sdk.IsSessionEnded(err))
	assert.Equal(t, int32(0), fake.refreshCalls.Load())
	assert.Equal(t, []string{""}, fake.seenTokens)
}

func TestGateway_ResponseHandling(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantNoBody  bool
		wantMessage string
		wantKind    sdk.ErrorKind
		transport   bool
	}{
		{name: "no content", status: http.StatusNoContent, wantNoBody: true},
		{name: "json body", status: http.StatusOK, body: `{"id":1}`},
		{name: "undecodable success body", status: http.StatusOK, body: `<html>`, wantErr: true, transport: true},
		{name: "detail message", status: http.StatusBadRequest, body: `{"detail":"Username already exists"}`, wantErr: true, wantMessage: "Username already exists", wantKind: sdk.KindValidation},
		{name: "status text fallback", status: http.StatusNotFound, body: `not json`, wantErr: true, wantMessage: "Not Found", wantKind: sdk.KindValidation},
		{name: "body without detail", status: http.StatusBadRequest, body: `{"error":"x"}`, wantErr: true, wantMessage: `{"error":"x"}`, wantKind: sdk.KindValidation},
		{name: "server failure", status: http.StatusInternalServerError, body: ``, wantErr: true, wantMessage: "Internal Server Error", wantKind: sdk.KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			gw := newGateway(t, h, sdk.NewMemoryTokenStore())

			resp, err := gw.Request(context.Background(), "/api/x", sdk.RequestOptions{})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantNoBody, resp.NoContent)
				return
			}

			require.Error(t, err)
			if tt.transport {
				var transportErr *sdk.TransportError
				assert.True(t, errors.As(err, &transportErr))
				return
			}
			var apiErr *sdk.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.False(t, sdk.IsSessionEnded(err))
		})
	}
}

func TestGateway_SendsHeadersAndBody(t *testing.T) {
	var gotAuth, gotType, gotRequestID, gotQuery string
	var gotBody map[string]string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get(sdk.RequestIDHeader)
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(context.Background(), "T1", "R1"))
	gw := newGateway(t, h, store)

	_, err := gw.Request(context.Background(), "/api/boards/1/posts?page=2", sdk.RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"title": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "page=2", gotQuery)
	assert.Equal(t, "hello", gotBody["title"])
}

func TestGateway_ConcurrentRenewalsAreCoalesced(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthServer{validAccess: "T0", validRefresh: "R1", nextAccess: "T2", nextRefresh: "R2"}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, "T1", "R1"))

	release := make(chan struct{})
	base := fake.handler()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			<-release
		}
		base.ServeHTTP(w, r)
	})
	gw := newGateway(t, h, store)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gw.Request(ctx, "/api/menus", sdk.RequestOptions{})
		}(i)
	}
	// Wait until every caller has seen its 401 before letting renewal finish.
	require.Eventually(t, func() bool { return fake.apiCalls.Load() >= callers }, testTimeout, testTick)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.refreshCalls.Load())
}

func TestGateway_CancelledDuringRenewalKeepsSession(t *testing.T) {
	fake := &fakeAuthServer{validAccess: "T0", validRefresh: "R1", nextAccess: "T2", nextRefresh: "R2"}
	store := sdk.NewMemoryTokenStore()
	require.NoError(t, store.Set(context.Background(), "T1", "R1"))

	release := make(chan struct{})
	base := fake.handler()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			<-release
		}
		base.ServeHTTP(w, r)
	})
	gw := newGateway(t, h, store)
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := gw.Request(ctx, "/api/menus", sdk.RequestOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool { return fake.refreshCalls.Load() == 1 }, testTimeout, testTick)
	cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(testTimeout):
		t.Fatal("request did not return after cancellation")
	}
	unblock()

	require.Error(t, err)
	var transportErr *sdk.TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, sdk.IsSessionEnded(err), "a cancelled caller does not end the session")

	// The shared renewal still completes and rotates the pair.
	require.Eventually(t, func() bool {
		creds, err := store.Get(context.Background())
		return err == nil && creds.AccessToken == "T2" && creds.RefreshToken == "R2"
	}, testTimeout, testTick)
	assert.Equal(t, int32(1), fake.apiCalls.Load(), "no retry once the caller has gone")
}
