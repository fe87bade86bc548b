// internal/app/system/authz/roles.go
package authz

import "strings"

// Community roles, ordered by privilege: member < moderator < admin.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// roleRank orders roles for comparison. Unknown roles rank below
// member so a corrupted role value never grants extra privilege.
var roleRank = map[string]int{
	RoleMember:    1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// IsValidRole reports whether role is one of the known community roles.
func IsValidRole(role string) bool {
	_, ok := roleRank[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

// RoleAtLeast reports whether role meets or exceeds min in the
// member < moderator < admin ordering. Comparison is by rank, not
// string equality, so new roles slot in without touching call sites.
func RoleAtLeast(role, min string) bool {
	r, ok := roleRank[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return false
	}
	m, ok := roleRank[strings.ToLower(strings.TrimSpace(min))]
	if !ok {
		return false
	}
	return r >= m
}
