package sdk

import (
	"context"
	"fmt"
	"slices"
)

// GrantTarget selects which bit of a role grant a toggle addresses.
type GrantTarget string

const (
	GrantTargetRead  GrantTarget = "read"
	GrantTargetWrite GrantTarget = "write"
)

// GrantState is the read/write state of one role on one resource.
// Write without read is not representable.
type GrantState int

const (
	GrantNone GrantState = iota
	GrantRead
	GrantReadWrite
)

func (s GrantState) String() string {
	switch s {
	case GrantRead:
		return "read"
	case GrantReadWrite:
		return "read+write"
	default:
		return "none"
	}
}

// RoleEntry is one role's row in the system permission matrix.
type RoleEntry struct {
	RoleCode          Role     `json:"role_code"`
	RoleName          string   `json:"role_name"`
	SystemPermissions []string `json:"system_permissions"`
}

// MenuGrants carries the roles that may read and write one menu.
type MenuGrants struct {
	MenuID       int64   `json:"menu_id"`
	MenuName     string  `json:"menu_name"`
	MenuPath     string  `json:"menu_path"`
	ParentID     *int64  `json:"parent_id"`
	CategoryName *string `json:"category_name"`
	BoardID      *int64  `json:"board_id"`
	ReadRoles    []Role  `json:"read_roles"`
	WriteRoles   []Role  `json:"write_roles"`
}

// BoardGrants carries the roles that may read and write one board.
type BoardGrants struct {
	BoardID    int64  `json:"board_id"`
	BoardKey   string `json:"board_key"`
	BoardName  string `json:"board_name"`
	ReadRoles  []Role `json:"read_roles"`
	WriteRoles []Role `json:"write_roles"`
}

// PermissionMatrix is the complete grant document loaded and saved as one unit.
// The order of Roles is the canonical role order for every role list.
type PermissionMatrix struct {
	Roles  []RoleEntry   `json:"roles"`
	Menus  []MenuGrants  `json:"menus"`
	Boards []BoardGrants `json:"boards"`
}

// RoleOrder returns the canonical role codes.
func (m PermissionMatrix) RoleOrder() []Role {
	order := make([]Role, 0, len(m.Roles))
	for _, role := range m.Roles {
		order = append(order, role.RoleCode)
	}
	return order
}

// Clone returns a deep copy of the matrix.
func (m PermissionMatrix) Clone() PermissionMatrix {
	out := PermissionMatrix{
		Roles:  make([]RoleEntry, len(m.Roles)),
		Menus:  make([]MenuGrants, len(m.Menus)),
		Boards: make([]BoardGrants, len(m.Boards)),
	}
	for i, role := range m.Roles {
		role.SystemPermissions = slices.Clone(role.SystemPermissions)
		out.Roles[i] = role
	}
	for i, menu := range m.Menus {
		menu.ReadRoles = slices.Clone(menu.ReadRoles)
		menu.WriteRoles = slices.Clone(menu.WriteRoles)
		out.Menus[i] = menu
	}
	for i, board := range m.Boards {
		board.ReadRoles = slices.Clone(board.ReadRoles)
		board.WriteRoles = slices.Clone(board.WriteRoles)
		out.Boards[i] = board
	}
	return out
}

// Normalize returns a copy in which every read/write list is filtered through
// the canonical role order and write implies read.
func Normalize(m PermissionMatrix) PermissionMatrix {
	out := m.Clone()
	order := out.RoleOrder()
	for i := range out.Menus {
		out.Menus[i].ReadRoles, out.Menus[i].WriteRoles = normalizeGrants(order, out.Menus[i].ReadRoles, out.Menus[i].WriteRoles)
	}
	for i := range out.Boards {
		out.Boards[i].ReadRoles, out.Boards[i].WriteRoles = normalizeGrants(order, out.Boards[i].ReadRoles, out.Boards[i].WriteRoles)
	}
	return out
}

func normalizeGrants(order, read, write []Role) ([]Role, []Role) {
	readSet := toSet(read)
	writeSet := toSet(write)
	for role := range writeSet {
		readSet[role] = struct{}{}
	}
	return filterOrdered(order, readSet), filterOrdered(order, writeSet)
}

// MatrixSaver submits a matrix and returns the server's canonical version.
type MatrixSaver interface {
	SaveRoleMatrix(ctx context.Context, matrix PermissionMatrix) (PermissionMatrix, error)
}

// MatrixEditor is an in-memory editing model over a PermissionMatrix.
// Every mutation returns a fresh copy; values handed out are never mutated later.
type MatrixEditor struct {
	matrix PermissionMatrix
}

// NewMatrixEditor starts editing a normalized copy of matrix.
func NewMatrixEditor(matrix PermissionMatrix) *MatrixEditor {
	return &MatrixEditor{matrix: Normalize(matrix)}
}

// Matrix returns a copy of the current state.
func (e *MatrixEditor) Matrix() PermissionMatrix {
	return e.matrix.Clone()
}

// ToggleSystemPermission flips name in role's system permission set.
// ADMIN can never lose MANAGE_ROLES through the editor.
func (e *MatrixEditor) ToggleSystemPermission(role Role, name string) (PermissionMatrix, error) {
	idx := slices.IndexFunc(e.matrix.Roles, func(r RoleEntry) bool { return r.RoleCode == role })
	if idx < 0 {
		return e.Matrix(), fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	next := e.matrix.Clone()
	perms := next.Roles[idx].SystemPermissions
	if pos := slices.Index(perms, name); pos >= 0 {
		if role == RoleAdmin && name == PermManageRoles {
			return e.Matrix(), ErrProtectedPermission
		}
		next.Roles[idx].SystemPermissions = slices.Delete(perms, pos, pos+1)
	} else {
		next.Roles[idx].SystemPermissions = append(perms, name)
	}

	e.matrix = next
	return e.Matrix(), nil
}

// ToggleMenuGrant flips the read or write bit of role on a menu while keeping
// write ⇒ read: enabling write also grants read, revoking read also revokes write.
func (e *MatrixEditor) ToggleMenuGrant(menuID int64, role Role, target GrantTarget) (PermissionMatrix, error) {
	idx := slices.IndexFunc(e.matrix.Menus, func(m MenuGrants) bool { return m.MenuID == menuID })
	if idx < 0 {
		return e.Matrix(), fmt.Errorf("%w: menu %d", ErrUnknownResource, menuID)
	}
	next := e.matrix.Clone()
	read, write, err := toggleGrant(next.RoleOrder(), next.Menus[idx].ReadRoles, next.Menus[idx].WriteRoles, role, target)
	if err != nil {
		return e.Matrix(), err
	}
	next.Menus[idx].ReadRoles, next.Menus[idx].WriteRoles = read, write
	e.matrix = next
	return e.Matrix(), nil
}

// ToggleBoardGrant applies the ToggleMenuGrant rules to a board.
func (e *MatrixEditor) ToggleBoardGrant(boardID int64, role Role, target GrantTarget) (PermissionMatrix, error) {
	idx := slices.IndexFunc(e.matrix.Boards, func(b BoardGrants) bool { return b.BoardID == boardID })
	if idx < 0 {
		return e.Matrix(), fmt.Errorf("%w: board %d", ErrUnknownResource, boardID)
	}
	next := e.matrix.Clone()
	read, write, err := toggleGrant(next.RoleOrder(), next.Boards[idx].ReadRoles, next.Boards[idx].WriteRoles, role, target)
	if err != nil {
		return e.Matrix(), err
	}
	next.Boards[idx].ReadRoles, next.Boards[idx].WriteRoles = read, write
	e.matrix = next
	return e.Matrix(), nil
}

// MenuGrant reports role's state on a menu.
func (e *MatrixEditor) MenuGrant(menuID int64, role Role) (GrantState, error) {
	idx := slices.IndexFunc(e.matrix.Menus, func(m MenuGrants) bool { return m.MenuID == menuID })
	if idx < 0 {
		return GrantNone, fmt.Errorf("%w: menu %d", ErrUnknownResource, menuID)
	}
	return GrantStateOf(e.matrix.Menus[idx].ReadRoles, e.matrix.Menus[idx].WriteRoles, role), nil
}

// BoardGrant reports role's state on a board.
func (e *MatrixEditor) BoardGrant(boardID int64, role Role) (GrantState, error) {
	idx := slices.IndexFunc(e.matrix.Boards, func(b BoardGrants) bool { return b.BoardID == boardID })
	if idx < 0 {
		return GrantNone, fmt.Errorf("%w: board %d", ErrUnknownResource, boardID)
	}
	return GrantStateOf(e.matrix.Boards[idx].ReadRoles, e.matrix.Boards[idx].WriteRoles, role), nil
}

// Save submits the whole matrix as one replace. The server's response becomes
// the editor's state.
func (e *MatrixEditor) Save(ctx context.Context, saver MatrixSaver) (PermissionMatrix, error) {
	saved, err := saver.SaveRoleMatrix(ctx, e.Matrix())
	if err != nil {
		return e.Matrix(), err
	}
	e.matrix = Normalize(saved)
	return e.Matrix(), nil
}

func toggleGrant(order, read, write []Role, role Role, target GrantTarget) ([]Role, []Role, error) {
	if !slices.Contains(order, role) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	readSet := toSet(read)
	writeSet := toSet(write)

	switch target {
	case GrantTargetWrite:
		if _, ok := writeSet[role]; ok {
			delete(writeSet, role)
		} else {
			writeSet[role] = struct{}{}
			readSet[role] = struct{}{}
		}
	case GrantTargetRead:
		if _, ok := readSet[role]; ok {
			delete(readSet, role)
			delete(writeSet, role)
		} else {
			readSet[role] = struct{}{}
		}
	default:
		return nil, nil, fmt.Errorf("unknown grant target %q", target)
	}

	return filterOrdered(order, readSet), filterOrdered(order, writeSet), nil
}

// GrantStateOf reports role's state given a resource's read and write lists.
func GrantStateOf(read, write []Role, role Role) GrantState {
	switch {
	case slices.Contains(write, role):
		return GrantReadWrite
	case slices.Contains(read, role):
		return GrantRead
	default:
		return GrantNone
	}
}

func toSet(roles []Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func filterOrdered(order []Role, set map[Role]struct{}) []Role {
	out := make([]Role, 0, len(set))
	for _, role := range order {
		if _, ok := set[role]; ok {
			out = append(out, role)
		}
	}
	return out
}
