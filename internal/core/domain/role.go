package domain

import "strings"

// Role is a position in the access hierarchy. Roles are totally ordered:
// ANONYMOUS < CUSTOMER < ADMIN.
type Role string

const (
	RoleAnonymous Role = "ANONYMOUS"
	RoleCustomer  Role = "CUSTOMER"
	RoleAdmin     Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleAnonymous: 0,
	RoleCustomer:  1,
	RoleAdmin:     2,
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r is at least as privileged as required.
// Unknown roles satisfy nothing but ANONYMOUS.
func (r Role) Satisfies(required Role) bool {
	if required == RoleAnonymous {
		return true
	}
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= need
}

func (r Role) String() string { return string(r) }
