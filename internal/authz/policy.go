package authz

import (
	"strings"

	"github.com/donmarsh/tasker-backend/internal/constants"
)

// IsAdmin reports whether any of the given role names is "admin".
// Comparison is case-insensitive; no names means no privilege.
func IsAdmin(roleNames ...string) bool {
	return matchAny(roleNames, constants.RoleAdmin)
}

// IsAdminOrManager reports whether any of the given role names is "admin" or
// "manager".
func IsAdminOrManager(roleNames ...string) bool {
	return matchAny(roleNames, constants.RoleAdmin, constants.RoleManager)
}

func matchAny(roleNames []string, targets ...string) bool {
	for _, name := range roleNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, target := range targets {
			if strings.EqualFold(name, target) {
				return true
			}
		}
	}
	return false
}
