package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestOptions describes a single gateway call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON-encoded unless it is an io.Reader, which is sent as is
	// with ContentType.
	Body        any
	ContentType string
	Headers     http.Header
	// NoAuth skips the bearer header and the renewal protocol.
	NoAuth bool

	retry bool
}

// Response is the outcome of a successful gateway call.
type Response struct {
	Status    int
	NoContent bool
	Body      json.RawMessage
}

// Decode unmarshals the response body into v. A no-content response leaves v untouched.
func (r *Response) Decode(v any) error {
	if r.NoContent || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &TransportError{Op: "decode response", Err: err}
	}
	return nil
}

// Gateway issues every authenticated call and implements the
// 401 → renew once → retry once rule.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionManager
	logger     *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayHTTPClient overrides the HTTP client used for API calls.
func WithGatewayHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithGatewayLogger sets the logger used for request tracing.
func WithGatewayLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a gateway for baseURL backed by session.
func NewGateway(baseURL string, session *SessionManager, optFns ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
	}
	for _, fn := range optFns {
		fn(g)
	}
	if g.httpClient == nil {
		g.httpClient = http.DefaultClient
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Session returns the session manager the gateway renews through.
func (g *Gateway) Session() *SessionManager {
	return g.session
}

// Request issues a call to path and returns the parsed outcome.
func (g *Gateway) Request(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}
	return g.do(ctx, path, opts, body, contentType, "")
}

func (g *Gateway) do(ctx context.Context, path string, opts RequestOptions, body []byte, contentType, token string) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := g.endpoint(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	if !opts.NoAuth {
		if token == "" && g.session != nil {
			token, err = g.session.AccessToken(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to read access token: %w", err)
			}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	g.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Bool("retry", opts.retry),
	)

	if resp.StatusCode == http.StatusUnauthorized && !opts.NoAuth && !opts.retry && g.session != nil {
		original := decodeError(resp, true)
		renewed, renewErr := g.session.Renew(ctx)
		switch {
		case errors.Is(renewErr, ErrNoRefreshToken), errors.Is(renewErr, ErrRenewalRejected):
			g.logger.Info("session renewal failed", zap.String("path", path), zap.Error(renewErr))
			return nil, original
		case renewErr != nil:
			// Cancellation and network failures leave the stored session intact.
			return nil, &TransportError{Op: "renew session", Err: renewErr}
		}
		retryOpts := opts
		retryOpts.retry = true
		return g.do(ctx, path, retryOpts, body, contentType, renewed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp, !opts.NoAuth)
	}

	if resp.StatusCode == http.StatusNoContent {
		return &Response{Status: resp.StatusCode, NoContent: true}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if !json.Valid(raw) {
		return nil, &TransportError{Op: "decode response", Err: errors.New("response body is not valid JSON")}
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func (g *Gateway) endpoint(path string) (string, error) {
	rawPath, query, _ := strings.Cut(path, "?")
	endpoint, err := url.JoinPath(g.baseURL, rawPath)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if query != "" {
		endpoint += "?" + query
	}
	return endpoint, nil
}

// decodeError turns a non-success response into an APIError, preferring the
// conventional detail field and falling back to the status text.
// A 401 only ends the session when the call was authenticated.
func decodeError(resp *http.Response, authenticated bool) *APIError {
	kind := classifyStatus(resp.StatusCode)
	if kind == KindAuthExpired && !authenticated {
		kind = KindValidation
	}
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: statusText(resp),
		Kind:    kind,
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Code   string          `json:"code"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return apiErr
	}
	apiErr.Code = payload.Code

	var detail string
	switch {
	case len(payload.Detail) == 0 || string(payload.Detail) == "null":
		apiErr.Message = string(raw)
	case json.Unmarshal(payload.Detail, &detail) == nil:
		apiErr.Message = detail
	default:
		// Structured details (validation error lists) are surfaced verbatim.
		apiErr.Message = string(payload.Detail)
	}
	if apiErr.Message == "" {
		apiErr.Message = "Request failed"
	}
	return apiErr
}

func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode))); text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "Request failed"
}

func encodeBody(opts RequestOptions) ([]byte, string, error) {
	if opts.Body == nil {
		return nil, "", nil
	}
	if r, ok := opts.Body.(io.Reader); ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read request body: %w", err)
		}
		return data, opts.ContentType, nil
	}
	data, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return data, contentType, nil
}
