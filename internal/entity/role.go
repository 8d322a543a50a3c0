package entity

import "strings"

// Role 会员等级，BASIC < FULL < LEADERSHIP 全序。
type Role string

const (
	RoleBasic      Role = "BASIC"
	RoleFull       Role = "FULL"
	RoleLeadership Role = "LEADERSHIP"
)

// RoleRank returns the position of a role in the membership order.
// Unknown roles rank below BASIC so they never unlock gated content.
func RoleRank(role Role) int {
	switch role {
	case RoleBasic:
		return 0
	case RoleFull:
		return 1
	case RoleLeadership:
		return 2
	default:
		return -1
	}
}

// CanAccess reports whether a member with userRole may access content
// requiring at least minRole.
func CanAccess(userRole, minRole Role) bool {
	userRank := RoleRank(userRole)
	if userRank < 0 {
		return false
	}
	return userRank >= RoleRank(minRole)
}

// ParseRole normalises a client-supplied role string. Returns "" for
// anything outside the closed enumeration.
func ParseRole(value string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleBasic:
		return RoleBasic
	case RoleFull:
		return RoleFull
	case RoleLeadership:
		return RoleLeadership
	default:
		return ""
	}
}

// IsValidRole reports whether role is one of the membership tiers.
// Roles read back from storage go through this too, so it takes the
// named type rather than a raw string.
func IsValidRole(role Role) bool {
	switch role {
	case RoleBasic, RoleFull, RoleLeadership:
		return true
	default:
		return false
	}
}
