package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User is an account as seen by an administrator.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsLocked  bool      `json:"is_locked"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserQuery selects a page of users. Zero values use the server defaults.
type UserQuery struct {
	Search   string
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0,lte=100"`
}

// UserPage is one page of users, newest first.
type UserPage struct {
	Items    []User `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ListUsers returns a page of user accounts matching query.
func (c *Client) ListUsers(ctx context.Context, query UserQuery) (UserPage, error) {
	if err := inputValidator().Struct(query); err != nil {
		return UserPage{}, fmt.Errorf("invalid user query: %w", err)
	}

	params := url.Values{}
	if search := strings.TrimSpace(query.Search); search != "" {
		params.Set("search", search)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(query.PageSize))
	}
	path := "/api/admin/users"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page UserPage
	if err := c.call(ctx, http.MethodGet, path, nil, &page); err != nil {
		return UserPage{}, err
	}
	return page, nil
}

// SetUserRole assigns role to a user and returns the updated account.
func (c *Client) SetUserRole(ctx context.Context, userID int64, role Role) (*User, error) {
	if role == "" {
		return nil, fmt.Errorf("role is required")
	}
	var user User
	body := map[string]Role{"role_code": role}
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", userID), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserLock locks or unlocks a user account.
func (c *Client) SetUserLock(ctx context.Context, userID int64, locked bool) (*User, error) {
	var user User
	body := map[string]bool{"is_locked": locked}
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/lock", userID), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
