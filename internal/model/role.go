package model

import "strings"

// Role is the closed set of account roles.  Authorization decisions
// dispatch on these values; raw role strings from requests or token
// claims must pass through ParseRole first.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
)

// ParseRole normalizes a role string into a Role.  Unknown values
// return false so callers can reject them instead of comparing strings.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	case RoleStudent:
		return RoleStudent, true
	}
	return "", false
}

// String returns the canonical claim value for the role.
func (r Role) String() string { return string(r) }
