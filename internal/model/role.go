package model

import "strings"

// Role is the closed set of user roles.  The zero value is not a valid role.
type Role string

const (
	RoleAdmin    Role = "admin"    // full access including user and settings management
	RoleGerente  Role = "gerente"  // plant manager: reads, writes, reports and exports
	RoleOperario Role = "operario" // floor operator: reads and its own records
)

// AllRoles lists every role in privilege order, highest first.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleGerente, RoleOperario}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGerente, RoleOperario:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes s and returns the matching role.  The boolean is
// false when s does not name a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Permission is an atomic capability tag.  The values are part of the wire
// contract: they appear verbatim in 403 error details.
type Permission string

const (
	PermReadAll        Permission = "read:all"
	PermWriteAll       Permission = "write:all"
	PermDeleteAll      Permission = "delete:all"
	PermReadOwn        Permission = "read:own"
	PermWriteOwn       Permission = "write:own"
	PermManageUsers    Permission = "manage:users"
	PermManageReports  Permission = "manage:reports"
	PermExportData     Permission = "export:data"
	PermManageSettings Permission = "manage:settings"
)

// AllPermissions lists the nine permissions in declaration order.
func AllPermissions() []Permission {
	return []Permission{
		PermReadAll,
		PermWriteAll,
		PermDeleteAll,
		PermReadOwn,
		PermWriteOwn,
		PermManageUsers,
		PermManageReports,
		PermExportData,
		PermManageSettings,
	}
}

// Valid reports whether p is one of the nine known permissions.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions() {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string { return string(p) }
