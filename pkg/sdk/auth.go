package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Login authenticates with username and password and stores the issued token pair.
func (c *Client) Login(ctx context.Context, input LoginInput) error {
	if err := inputValidator().Struct(input); err != nil {
		return fmt.Errorf("invalid login input: %w", err)
	}
	return c.establish(ctx, "/api/auth/login", input)
}

// Signup registers a new account and stores the issued token pair.
func (c *Client) Signup(ctx context.Context, input SignupInput) error {
	if err := inputValidator().Struct(input); err != nil {
		return fmt.Errorf("invalid signup input: %w", err)
	}
	return c.establish(ctx, "/api/auth/register", input)
}

func (c *Client) establish(ctx context.Context, path string, body any) error {
	resp, err := c.gateway.Request(ctx, path, RequestOptions{
		Method: http.MethodPost,
		Body:   body,
		NoAuth: true,
	})
	if err != nil {
		return err
	}
	var pair TokenPair
	if err := resp.Decode(&pair); err != nil {
		return err
	}
	return c.Session().Establish(ctx, pair)
}

// Logout revokes the refresh token server-side (best effort) and clears the
// local session. The local session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	creds, err := c.Session().Credentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to read token store: %w", err)
	}

	var revokeErr error
	if creds.RefreshToken != "" {
		_, revokeErr = c.gateway.Request(ctx, "/api/auth/logout", RequestOptions{
			Method: http.MethodPost,
			Body:   map[string]string{"refresh_token": creds.RefreshToken},
		})
	}

	if err := c.Session().End(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return revokeErr
}

// Me returns the authenticated viewer.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var me Identity
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Download fetches a binary resource with the current bearer token. Without a
// stored token the request goes out anonymously. Downloads do not take part in
// the renewal protocol.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	endpoint, err := c.gateway.endpoint(path)
	if err != nil {
		return 0, err
	}

	token, err := c.Session().AccessToken(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read access token: %w", err)
	}
	httpClient := c.gateway.httpClient
	if token != "" {
		httpClient = oauth2.NewClient(
			context.WithValue(ctx, oauth2.HTTPClient, c.gateway.httpClient),
			c.Session().TokenSource(ctx),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, decodeError(resp, true)
	}
	return io.Copy(w, resp.Body)
}

// DownloadAttachment streams a post attachment into w.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID int64, w io.Writer) (int64, error) {
	return c.Download(ctx, fmt.Sprintf("/api/attachments/%d/download", attachmentID), w)
}
