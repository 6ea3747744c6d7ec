// Package authz implements the authorization core: resolving a caller
// identity from the request's authentication context, classifying its role,
// deciding per-object access, and scoping bulk task queries.
package authz

import (
	"github.com/donmarsh/tasker-backend/internal/models"
	"github.com/donmarsh/tasker-backend/internal/token"
)

// AuthContext is what the authentication middleware binds to a request.
// Exactly one of the fields is expected to be set; when both are, the
// resolved user record wins. A freshly validated user record must never lose
// to a stale token claim.
type AuthContext struct {
	// User is the authenticated, active user record, when the middleware
	// could bind one.
	User *models.User

	// Token is the verified token payload, used only when no user record
	// is bound.
	Token *token.Claims
}

// Caller is the normalized per-request identity every authorization decision
// operates on. It is derived at the start of request handling and never
// persisted.
type Caller struct {
	ID            uint64
	RoleNames     []string
	Authenticated bool
}

// Resolve produces a Caller from the authentication context. A malformed or
// empty context yields an anonymous caller with no roles; decisions downstream
// then deny by default.
func Resolve(ac AuthContext) Caller {
	if ac.User != nil {
		caller := Caller{ID: ac.User.ID, Authenticated: true}
		if name := ac.User.RoleName(); name != "" {
			caller.RoleNames = []string{name}
		}
		return caller
	}

	if ac.Token != nil {
		return Caller{
			ID:            ac.Token.UserID,
			RoleNames:     ac.Token.RoleNames(),
			Authenticated: true,
		}
	}

	return Caller{}
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return IsAdmin(c.RoleNames...)
}

// IsAdminOrManager reports whether the caller holds the admin or manager role.
func (c Caller) IsAdminOrManager() bool {
	return IsAdminOrManager(c.RoleNames...)
}
