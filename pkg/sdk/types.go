package sdk

import "time"

// Role is a viewer role code.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// System-level permissions a role can hold independently of any resource.
const (
	PermManageBoards    = "MANAGE_BOARDS"
	PermManageMenus     = "MANAGE_MENUS"
	PermManageUsers     = "MANAGE_USERS"
	PermManageRoles     = "MANAGE_ROLES"
	PermModerateContent = "MODERATE_CONTENT"
)

// SystemPermissions lists the known system permissions in display order.
var SystemPermissions = []string{
	PermManageBoards,
	PermManageMenus,
	PermManageUsers,
	PermManageRoles,
	PermModerateContent,
}

// Identity is the authenticated viewer as reported by /api/auth/me.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsLocked  bool      `json:"is_locked"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginInput carries username/password credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupInput carries the fields required to register an account.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Board is a discussion board and its role-based access lists.
type Board struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	SortOrder   int       `json:"sort_order"`
	ReadRoles   []Role    `json:"read_roles"`
	WriteRoles  []Role    `json:"write_roles"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
