package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Client provides a high-level interface to the board API.
// It wraps the Gateway with typed, ergonomic methods.
type Client struct {
	gateway *Gateway
	baseURL string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient   *http.Client
	TokenStore   TokenStore
	Logger       *zap.Logger
	SingleFlight *bool
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTokenStore sets where session tokens are kept. Defaults to memory.
func WithTokenStore(store TokenStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.TokenStore = store
	}
}

// WithLogger sets the logger shared by the gateway and session manager.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// WithRenewalCoalescing toggles single-flight session renewal.
func WithRenewalCoalescing(enabled bool) ClientOption {
	return func(opts *ClientOptions) {
		opts.SingleFlight = &enabled
	}
}

// NewClient creates a board client that talks to the API server at baseURL.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.TokenStore == nil {
		opts.TokenStore = NewMemoryTokenStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	sessionOpts := []SessionOption{
		WithSessionHTTPClient(opts.HTTPClient),
		WithSessionLogger(opts.Logger),
	}
	if opts.SingleFlight != nil {
		sessionOpts = append(sessionOpts, WithSingleFlight(*opts.SingleFlight))
	}
	session := NewSessionManager(baseURL, opts.TokenStore, sessionOpts...)

	return &Client{
		gateway: NewGateway(baseURL, session,
			WithGatewayHTTPClient(opts.HTTPClient),
			WithGatewayLogger(opts.Logger),
		),
		baseURL: baseURL,
	}
}

// Gateway exposes the underlying request gateway for calls without a typed wrapper.
func (c *Client) Gateway() *Gateway {
	return c.gateway
}

// Session exposes the session manager.
func (c *Client) Session() *SessionManager {
	return c.gateway.Session()
}

// BaseURL returns the API server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.gateway.Request(ctx, path, RequestOptions{Method: method, Body: body})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// ListMenus returns the menus visible to the current viewer.
func (c *Client) ListMenus(ctx context.Context) ([]MenuNode, error) {
	var menus []MenuNode
	if err := c.call(ctx, http.MethodGet, "/api/menus", nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// ListAdminMenus returns every menu record, including inactive ones.
func (c *Client) ListAdminMenus(ctx context.Context) ([]MenuNode, error) {
	var menus []MenuNode
	if err := c.call(ctx, http.MethodGet, "/api/admin/menus", nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// MenuInput is the editable part of a menu record.
type MenuInput struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Icon      *string `json:"icon,omitempty"`
	ParentID  *int64  `json:"parent_id,omitempty"`
	BoardID   *int64  `json:"board_id,omitempty"`
	SortOrder int     `json:"sort_order"`
	IsActive  bool    `json:"is_active"`
}

// CreateMenu creates a menu or category.
func (c *Client) CreateMenu(ctx context.Context, input MenuInput) (*MenuNode, error) {
	if input.Name == "" || input.Path == "" {
		return nil, fmt.Errorf("menu name and path are required")
	}
	var menu MenuNode
	if err := c.call(ctx, http.MethodPost, "/api/admin/menus", input, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// MenuPatch is a partial menu update. Nil fields are left out of the request
// and keep their stored value. ClearParent moves the menu out of its category
// and takes precedence over ParentID.
type MenuPatch struct {
	Name        *string
	Path        *string
	Icon        *string
	ParentID    *int64
	ClearParent bool
	BoardID     *int64
	SortOrder   *int
	IsActive    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p MenuPatch) IsEmpty() bool {
	return p.Name == nil && p.Path == nil && p.Icon == nil && p.ParentID == nil &&
		!p.ClearParent && p.BoardID == nil && p.SortOrder == nil && p.IsActive == nil
}

// MarshalJSON emits only the fields that are set. A cleared parent is sent
// as an explicit null.
func (p MenuPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Path != nil {
		fields["path"] = *p.Path
	}
	if p.Icon != nil {
		fields["icon"] = *p.Icon
	}
	switch {
	case p.ClearParent:
		fields["parent_id"] = nil
	case p.ParentID != nil:
		fields["parent_id"] = *p.ParentID
	}
	if p.BoardID != nil {
		fields["board_id"] = *p.BoardID
	}
	if p.SortOrder != nil {
		fields["sort_order"] = *p.SortOrder
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	return json.Marshal(fields)
}

// UpdateMenu applies patch to a menu and returns the stored record.
func (c *Client) UpdateMenu(ctx context.Context, menuID int64, patch MenuPatch) (*MenuNode, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("menu update has no fields to change")
	}
	var menu MenuNode
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/menus/%d", menuID), patch, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// MenuOrder assigns a sort order to a menu id.
type MenuOrder struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sort_order"`
}

// ReorderMenus applies sort orders in a single call.
func (c *Client) ReorderMenus(ctx context.Context, orders []MenuOrder) error {
	if len(orders) == 0 {
		return fmt.Errorf("at least one menu order is required")
	}
	return c.call(ctx, http.MethodPut, "/api/admin/menus/reorder", orders, nil)
}

// DeleteMenu deletes a category or deactivates a menu. A category that still
// has children is rejected; check the error with IsResourceInUse.
func (c *Client) DeleteMenu(ctx context.Context, menuID int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/menus/%d", menuID), nil, nil)
}

// GetRoleMatrix loads the complete permission matrix.
func (c *Client) GetRoleMatrix(ctx context.Context) (PermissionMatrix, error) {
	var matrix PermissionMatrix
	if err := c.call(ctx, http.MethodGet, "/api/admin/roles/matrix", nil, &matrix); err != nil {
		return PermissionMatrix{}, err
	}
	return matrix, nil
}

// SaveRoleMatrix replaces the permission matrix and returns the server's canonical version.
func (c *Client) SaveRoleMatrix(ctx context.Context, matrix PermissionMatrix) (PermissionMatrix, error) {
	var saved PermissionMatrix
	if err := c.call(ctx, http.MethodPut, "/api/admin/roles/matrix", matrix, &saved); err != nil {
		return PermissionMatrix{}, err
	}
	return saved, nil
}

var _ MatrixSaver = (*Client)(nil)

// ListBoards returns the boards readable by the current viewer.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var boards []Board
	if err := c.call(ctx, http.MethodGet, "/api/boards", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard returns one board by id.
func (c *Client) GetBoard(ctx context.Context, boardID int64) (*Board, error) {
	var board Board
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/boards/%d", boardID), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}
