package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name      string
		roleNames []string
		want      bool
	}{
		{"exact match", []string{"admin"}, true},
		{"case insensitive", []string{"Admin"}, true},
		{"uppercase", []string{"ADMIN"}, true},
		{"manager is not admin", []string{"Manager"}, false},
		{"regular user", []string{"User"}, false},
		{"no roles", nil, false},
		{"empty name", []string{""}, false},
		{"whitespace only", []string{"   "}, false},
		{"legacy list with admin", []string{"user", "admin"}, true},
		{"legacy list without admin", []string{"user", "manager"}, false},
		{"partial name", []string{"administrator"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdmin(tt.roleNames...))
		})
	}
}

func TestIsAdminOrManager(t *testing.T) {
	tests := []struct {
		name      string
		roleNames []string
		want      bool
	}{
		{"admin", []string{"admin"}, true},
		{"manager", []string{"manager"}, true},
		{"mixed case admin", []string{"aDmIn"}, true},
		{"mixed case manager", []string{"MANAGER"}, true},
		{"regular user", []string{"user"}, false},
		{"no roles", nil, false},
		{"empty name", []string{""}, false},
		{"legacy list with manager", []string{"user", "Manager"}, true},
		{"legacy list with neither", []string{"user", "guest"}, false},
		{"partial name", []string{"management"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdminOrManager(tt.roleNames...))
		})
	}
}
