package auth

import (
	"sort"
	"strings"
)

const (
	PermissionProductsRead   = "products.read"
	PermissionProductsAdd    = "products.add"
	PermissionProductsModify = "products.modify"
	PermissionProductsDelete = "products.delete"
	PermissionProductsOrder  = "products.order"
	PermissionRolesAccess    = "roles.access"
)

const (
	RoleAdmin       = "Admin"
	RoleTeacher     = "Teacher"
	RoleStoreKeeper = "StoreKeeper"
	RoleStudent     = "Student"
)

var permissionCatalog = []string{
	PermissionProductsRead,
	PermissionProductsAdd,
	PermissionProductsModify,
	PermissionProductsDelete,
	PermissionProductsOrder,
	PermissionRolesAccess,
}

var roleCatalog = []string{RoleAdmin, RoleTeacher, RoleStoreKeeper, RoleStudent}

// defaultRoleClaims are attached when a role is first created.
var defaultRoleClaims = map[string][]string{
	RoleAdmin: {
		PermissionProductsRead,
		PermissionProductsAdd,
		PermissionProductsModify,
		PermissionProductsDelete,
		PermissionRolesAccess,
	},
	RoleStoreKeeper: {
		PermissionProductsRead,
		PermissionProductsAdd,
		PermissionProductsModify,
		PermissionProductsDelete,
	},
	RoleTeacher: {
		PermissionProductsRead,
		PermissionProductsOrder,
	},
	RoleStudent: {},
}

func Permissions() []string {
	out := make([]string, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

func Roles() []string {
	out := make([]string, len(roleCatalog))
	copy(out, roleCatalog)
	return out
}

// IsKnownPermission matches exactly; permission strings are case-sensitive.
func IsKnownPermission(p string) bool {
	for _, known := range permissionCatalog {
		if known == p {
			return true
		}
	}
	return false
}

// CanonicalRole maps a case-insensitive role name to its catalog spelling.
func CanonicalRole(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, r := range roleCatalog {
		if strings.EqualFold(r, name) {
			return r, true
		}
	}
	return "", false
}

func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func DefaultClaims(role string) []string {
	canonical, ok := CanonicalRole(role)
	if !ok {
		return nil
	}
	out := append([]string(nil), defaultRoleClaims[canonical]...)
	sort.Strings(out)
	return out
}
