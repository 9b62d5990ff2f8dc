package model

import "fmt"

// Role is a system-wide role. The set is closed; see Roles.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// admin > moderator > user > guest
var rolePriority = map[Role]int{
	RoleAdmin:     100,
	RoleModerator: 90,
	RoleUser:      80,
	RoleGuest:     60,
}

// Roles lists every known role, lowest privilege first.
func Roles() []Role {
	return []Role{RoleGuest, RoleUser, RoleModerator, RoleAdmin}
}

// ParseRole converts a string into a known Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := rolePriority[r]
	return ok
}

// AtLeast reports whether r carries at least the privileges of other.
// Unknown roles never satisfy the comparison.
func (r Role) AtLeast(other Role) bool {
	p, ok := rolePriority[r]
	if !ok {
		return false
	}
	q, ok := rolePriority[other]
	if !ok {
		return false
	}
	return p >= q
}

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)
