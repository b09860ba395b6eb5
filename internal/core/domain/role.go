package domain

import "fmt"

// Role is the privilege rank of an account. The order is total and linear:
// RoleUser < RoleModerator < RoleAdmin. Comparisons between roles are plain
// integer comparisons.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

var roleNames = [...]string{"user", "moderator", "admin"}

// AllRoles returns every role in ascending rank order.
func AllRoles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// DefaultRole is the rank assigned when none is requested. It is also the
// rank of the anonymous identity.
func DefaultRole() Role {
	return RoleUser
}

func (r Role) String() string {
	if r < RoleUser || r > RoleAdmin {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

// ParseRole converts a stored or submitted role name to a Role.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return RoleUser, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}
