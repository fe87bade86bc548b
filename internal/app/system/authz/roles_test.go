package authz

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name string
		role string
		min  string
		want bool
	}{
		{"member meets member", RoleMember, RoleMember, true},
		{"member below moderator", RoleMember, RoleModerator, false},
		{"member below admin", RoleMember, RoleAdmin, false},
		{"moderator meets member", RoleModerator, RoleMember, true},
		{"moderator meets moderator", RoleModerator, RoleModerator, true},
		{"moderator below admin", RoleModerator, RoleAdmin, false},
		{"admin meets member", RoleAdmin, RoleMember, true},
		{"admin meets moderator", RoleAdmin, RoleModerator, true},
		{"admin meets admin", RoleAdmin, RoleAdmin, true},
		{"unknown role never qualifies", "owner", RoleMember, false},
		{"empty role never qualifies", "", RoleMember, false},
		{"unknown minimum never matches", RoleAdmin, "superadmin", false},
		{"case insensitive", "Admin", "moderator", true},
		{"whitespace tolerated", " admin ", "admin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleAtLeast(tt.role, tt.min); got != tt.want {
				t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.min, got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleMember, RoleModerator, RoleAdmin, "ADMIN"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "visitor", "leader", "superadmin"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}
}
