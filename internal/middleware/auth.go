package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/constants"
	apierrors "github.com/donmarsh/tasker-backend/internal/errors"
	"github.com/donmarsh/tasker-backend/internal/repository"
	"github.com/donmarsh/tasker-backend/internal/token"
)

// Authenticate verifies the request's access token and binds the
// authentication context. The Authorization header is preferred; the
// access_token cookie is the fallback for browser clients that keep tokens in
// HttpOnly cookies.
//
// When the token verifies, the middleware tries to bind the active user
// record so downstream decisions see fresh role data; if the record cannot be
// loaded the verified claims alone are bound. Requests without a valid token
// pass through unauthenticated and are rejected by RequireAuth where it is
// mounted.
func Authenticate(tokens *token.Manager, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			c.Next()
			return
		}

		ac := authz.AuthContext{Token: claims}
		if claims.UserID != 0 {
			if user, err := userRepo.FindByID(claims.UserID); err == nil {
				ac = authz.AuthContext{User: user}
			}
		}

		c.Set(constants.ContextKeyAuth, ac)
		c.Set(constants.ContextKeyUserID, authz.Resolve(ac).ID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(constants.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie
}

// RequireAuth rejects requests that carry no authentication context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := GetCaller(c)
		if !caller.Authenticated {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthContext retrieves the authentication context bound by Authenticate.
func GetAuthContext(c *gin.Context) (authz.AuthContext, bool) {
	value, exists := c.Get(constants.ContextKeyAuth)
	if !exists {
		return authz.AuthContext{}, false
	}

	ac, ok := value.(authz.AuthContext)
	return ac, ok
}

// GetCaller resolves the caller identity for the current request. Requests
// without an authentication context resolve to an anonymous caller.
func GetCaller(c *gin.Context) authz.Caller {
	ac, ok := GetAuthContext(c)
	if !ok {
		return authz.Caller{}
	}
	return authz.Resolve(ac)
}
