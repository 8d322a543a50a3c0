package entity

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	if !(RoleRank(RoleBasic) < RoleRank(RoleFull) && RoleRank(RoleFull) < RoleRank(RoleLeadership)) {
		t.Fatal("expected BASIC < FULL < LEADERSHIP")
	}
	if RoleRank(Role("UNKNOWN")) >= RoleRank(RoleBasic) {
		t.Fatal("unknown roles must rank below BASIC")
	}
}

func TestCanAccess(t *testing.T) {
	roles := []Role{RoleBasic, RoleFull, RoleLeadership}

	for _, userRole := range roles {
		for _, minRole := range roles {
			got := CanAccess(userRole, minRole)
			want := RoleRank(userRole) >= RoleRank(minRole)
			if got != want {
				t.Errorf("CanAccess(%s, %s) = %v, want %v", userRole, minRole, got, want)
			}
		}
	}

	if CanAccess(RoleFull, RoleLeadership) {
		t.Error("FULL must not access LEADERSHIP content")
	}
	if !CanAccess(RoleLeadership, RoleBasic) {
		t.Error("LEADERSHIP must access BASIC content")
	}
	if !CanAccess(RoleBasic, RoleBasic) {
		t.Error("BASIC must access BASIC content")
	}
	if CanAccess("", RoleBasic) {
		t.Error("absent role must never access gated content")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"BASIC", RoleBasic},
		{"full", RoleFull},
		{"  Leadership  ", RoleLeadership},
		{"admin", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.input); got != tt.expected {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []Role{RoleBasic, RoleFull, RoleLeadership} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%s) = false, want true", role)
		}
	}
	for _, role := range []Role{"", "ADMIN", "basic"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}

	// ParseRole 的结果要么是合法等级要么是空串
	if !IsValidRole(ParseRole("leadership")) {
		t.Error("parsed role must be valid")
	}
	if IsValidRole(ParseRole("nonsense")) {
		t.Error("unparseable role must stay invalid")
	}
}
