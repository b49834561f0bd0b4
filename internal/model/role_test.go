package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"admin", RoleAdmin, true},
		{" Gerente ", RoleGerente, true},
		{"OPERARIO", RoleOperario, true},
		{"owner", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPermissionValid(t *testing.T) {
	if len(AllPermissions()) != 9 {
		t.Fatalf("AllPermissions() has %d entries, want 9", len(AllPermissions()))
	}
	for _, p := range AllPermissions() {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Permission("write:everything").Valid() {
		t.Error("unknown permission reported valid")
	}
}
