// Package rbac holds the static role to permission table.  Permissions are
// never stored per user; every check in the application goes through the
// functions in this package.
package rbac

import "github.com/iliyamo/production-manager/internal/model"

// rolePermissions is the single source of truth.  admin ⊇ gerente ⊇
// operario (minus write:own, which only operario holds).
var rolePermissions = map[model.Role]map[model.Permission]bool{
	model.RoleAdmin: set(
		model.PermReadAll,
		model.PermWriteAll,
		model.PermDeleteAll,
		model.PermReadOwn,
		model.PermManageUsers,
		model.PermManageReports,
		model.PermExportData,
		model.PermManageSettings,
	),
	model.RoleGerente: set(
		model.PermReadAll,
		model.PermWriteAll,
		model.PermReadOwn,
		model.PermManageReports,
		model.PermExportData,
	),
	model.RoleOperario: set(
		model.PermReadAll,
		model.PermReadOwn,
		model.PermWriteOwn,
	),
}

func set(perms ...model.Permission) map[model.Permission]bool {
	m := make(map[model.Permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// PermissionsFor returns the permissions of role in declaration order.  The
// result is a fresh slice; unknown roles yield an empty slice.
func PermissionsFor(role model.Role) []model.Permission {
	granted := rolePermissions[role]
	out := make([]model.Permission, 0, len(granted))
	for _, p := range model.AllPermissions() {
		if granted[p] {
			out = append(out, p)
		}
	}
	return out
}

// HasPermission reports whether the identity's role grants perm.
func HasPermission(id model.Identity, perm model.Permission) bool {
	return rolePermissions[id.Role][perm]
}

// HasAnyPermission reports whether at least one of perms is granted.  An
// empty list is never satisfied.
func HasAnyPermission(id model.Identity, perms []model.Permission) bool {
	for _, p := range perms {
		if HasPermission(id, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every permission in perms is granted.
// An empty list is vacuously satisfied.
func HasAllPermissions(id model.Identity, perms []model.Permission) bool {
	for _, p := range perms {
		if !HasPermission(id, p) {
			return false
		}
	}
	return true
}
