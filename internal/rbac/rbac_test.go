package rbac

import (
	"testing"

	"github.com/iliyamo/production-manager/internal/model"
)

func TestPermissionsFor_NonEmptyAndReadAll(t *testing.T) {
	for _, role := range model.AllRoles() {
		perms := PermissionsFor(role)
		if len(perms) == 0 {
			t.Errorf("PermissionsFor(%s) is empty", role)
		}
		if !HasPermission(model.Identity{Role: role}, model.PermReadAll) {
			t.Errorf("role %s lacks read:all", role)
		}
	}
}

func TestPermissionsFor_UnknownRole(t *testing.T) {
	if got := PermissionsFor(model.Role("root")); len(got) != 0 {
		t.Errorf("PermissionsFor(root) = %v, want empty", got)
	}
	if HasPermission(model.Identity{Role: "root"}, model.PermReadAll) {
		t.Error("unknown role should hold no permission")
	}
}

func TestPermissionsFor_ReturnsCopy(t *testing.T) {
	perms := PermissionsFor(model.RoleOperario)
	perms[0] = model.PermManageUsers
	if HasPermission(model.Identity{Role: model.RoleOperario}, model.PermManageUsers) {
		t.Error("mutating the returned slice changed the table")
	}
}

func TestRoleSupersets(t *testing.T) {
	admin := PermissionsFor(model.RoleAdmin)
	gerente := PermissionsFor(model.RoleGerente)
	operario := PermissionsFor(model.RoleOperario)

	contains := func(role model.Role, p model.Permission) bool {
		return HasPermission(model.Identity{Role: role}, p)
	}

	for _, p := range gerente {
		if !contains(model.RoleAdmin, p) {
			t.Errorf("admin lacks gerente permission %s", p)
		}
	}
	for _, p := range operario {
		if p == model.PermWriteOwn {
			continue
		}
		if !contains(model.RoleGerente, p) {
			t.Errorf("gerente lacks operario permission %s", p)
		}
	}
	if len(admin) <= len(gerente) {
		t.Errorf("admin (%d) should be a strict superset of gerente (%d)", len(admin), len(gerente))
	}
	if len(gerente) <= len(operario)-1 {
		t.Errorf("gerente (%d) should be a strict superset of operario without write:own (%d)", len(gerente), len(operario)-1)
	}
	if contains(model.RoleAdmin, model.PermWriteOwn) || contains(model.RoleGerente, model.PermWriteOwn) {
		t.Error("write:own must be exclusive to operario")
	}
}

func TestHasPermission_Exhaustive(t *testing.T) {
	want := map[model.Role][]model.Permission{
		model.RoleAdmin: {
			model.PermReadAll, model.PermWriteAll, model.PermDeleteAll, model.PermReadOwn,
			model.PermManageUsers, model.PermManageReports, model.PermExportData, model.PermManageSettings,
		},
		model.RoleGerente: {
			model.PermReadAll, model.PermWriteAll, model.PermReadOwn,
			model.PermManageReports, model.PermExportData,
		},
		model.RoleOperario: {
			model.PermReadAll, model.PermReadOwn, model.PermWriteOwn,
		},
	}

	cases := 0
	for _, role := range model.AllRoles() {
		granted := map[model.Permission]bool{}
		for _, p := range want[role] {
			granted[p] = true
		}
		for _, p := range model.AllPermissions() {
			cases++
			role, p := role, p
			t.Run(string(role)+"/"+string(p), func(t *testing.T) {
				got := HasPermission(model.Identity{UserID: 1, Role: role}, p)
				if got != granted[p] {
					t.Errorf("HasPermission(%s, %s) = %v, want %v", role, p, got, granted[p])
				}
			})
		}
	}
	if cases != 27 {
		t.Fatalf("expected 27 role/permission cases, ran %d", cases)
	}
}

func TestHasAnyAndAll_EmptyLists(t *testing.T) {
	for _, role := range model.AllRoles() {
		id := model.Identity{Role: role}
		if HasAnyPermission(id, nil) {
			t.Errorf("HasAnyPermission(%s, nil) = true, want false", role)
		}
		if HasAnyPermission(id, []model.Permission{}) {
			t.Errorf("HasAnyPermission(%s, []) = true, want false", role)
		}
		if !HasAllPermissions(id, nil) {
			t.Errorf("HasAllPermissions(%s, nil) = false, want true", role)
		}
	}
}

func TestHasAnyAndAll(t *testing.T) {
	operario := model.Identity{Role: model.RoleOperario}
	tests := []struct {
		name    string
		perms   []model.Permission
		wantAny bool
		wantAll bool
	}{
		{"all granted", []model.Permission{model.PermReadAll, model.PermWriteOwn}, true, true},
		{"one granted", []model.Permission{model.PermManageUsers, model.PermReadOwn}, true, false},
		{"none granted", []model.Permission{model.PermManageUsers, model.PermDeleteAll}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAnyPermission(operario, tt.perms); got != tt.wantAny {
				t.Errorf("HasAnyPermission() = %v, want %v", got, tt.wantAny)
			}
			if got := HasAllPermissions(operario, tt.perms); got != tt.wantAll {
				t.Errorf("HasAllPermissions() = %v, want %v", got, tt.wantAll)
			}
		})
	}
}
