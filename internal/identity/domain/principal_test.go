package domain

import "testing"

func TestRole_Ordering(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Role
		want  bool
	}{
		{"admin at least manager", RoleAdmin, RoleManager, true},
		{"admin at least staff", RoleAdmin, RoleStaff, true},
		{"manager at least staff", RoleManager, RoleStaff, true},
		{"staff not at least manager", RoleStaff, RoleManager, false},
		{"manager not at least admin", RoleManager, RoleAdmin, false},
		{"role at least itself", RoleStaff, RoleStaff, true},
		{"unknown never at least", Role("owner"), RoleStaff, false},
		{"nothing at least unknown", RoleAdmin, Role("owner"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.AtLeast(tt.b); got != tt.want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRole_Unrestricted(t *testing.T) {
	if !RoleAdmin.Unrestricted() {
		t.Error("admin should be unrestricted")
	}
	if RoleManager.Unrestricted() {
		t.Error("manager should be establishment-scoped")
	}
	if RoleStaff.Unrestricted() {
		t.Error("staff should be establishment-scoped")
	}
	// No client-supplied string escalates: unknown roles are scoped.
	if Role("superadmin").Unrestricted() {
		t.Error("unknown role must not be unrestricted")
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"staff", "manager", "admin"} {
		r, err := ParseRole(s)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", s, err)
		}
		if string(r) != s {
			t.Errorf("ParseRole(%q) = %q", s, r)
		}
	}
	if _, err := ParseRole("root"); err == nil {
		t.Error("ParseRole should reject unknown roles")
	}
}

func TestPrincipal_Validate(t *testing.T) {
	p := Principal{UserID: "u1", Role: RoleStaff, EstablishmentID: "e1"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (Principal{Role: RoleStaff}).Validate(); err == nil {
		t.Error("Validate should require a user id")
	}
	if err := (Principal{UserID: "u1", Role: "owner"}).Validate(); err == nil {
		t.Error("Validate should reject unknown roles")
	}
}
