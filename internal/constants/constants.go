package constants

// Context keys
const (
	ContextKeyAuth   = "auth_context"
	ContextKeyUserID = "user_id"
)

// Cookie names for the JWT transport
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Role names recognized by the authorization policy
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Validation limits
const (
	MinPasswordLength = 8
	ResetTokenLength  = 20
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
