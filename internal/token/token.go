package token

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/donmarsh/tasker-backend/internal/models"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

// RoleClaim is the structured role object embedded in token payloads.
type RoleClaim struct {
	ID       uint64 `json:"id,omitempty"`
	RoleName string `json:"role_name"`
}

// Claims is the token payload. The field names are a wire contract shared
// with the token issuer: user_id, username, full_name and role. Older tokens
// carried a `roles` claim (a list of names, or a single name) and a bare
// string `role`; both legacy shapes are still accepted on parse.
type Claims struct {
	UserID    uint64     `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	FullName  string     `json:"full_name,omitempty"`
	Role      *RoleClaim `json:"role,omitempty"`
	TokenType string     `json:"token_type,omitempty"`

	// LegacyRoles holds role names recovered from the deprecated `roles`
	// claim. Never emitted when issuing new tokens.
	LegacyRoles []string `json:"-"`

	jwt.RegisteredClaims
}

// UnmarshalJSON accepts the current payload shape as well as the legacy ones.
// Unexpected shapes for the role claims degrade to "no role" instead of
// failing the parse; authorization then denies by default.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type alias Claims
	aux := struct {
		*alias
		Role  json.RawMessage `json:"role,omitempty"`
		Roles json.RawMessage `json:"roles,omitempty"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Role = decodeRoleClaim(aux.Role)
	c.LegacyRoles = decodeLegacyRoles(aux.Roles)
	return nil
}

func decodeRoleClaim(raw json.RawMessage) *RoleClaim {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	// Current shape: {"id": ..., "role_name": ...}. Some issuers used
	// `name` instead of `role_name`.
	var obj struct {
		ID       uint64 `json:"id"`
		RoleName string `json:"role_name"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		name := obj.RoleName
		if name == "" {
			name = obj.Name
		}
		if name != "" {
			return &RoleClaim{ID: obj.ID, RoleName: name}
		}
		return nil
	}

	// Legacy shape: a bare role name.
	var name string
	if err := json.Unmarshal(raw, &name); err == nil && name != "" {
		return &RoleClaim{RoleName: name}
	}

	return nil
}

func decodeLegacyRoles(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}

	return nil
}

// RoleNames returns every role name the payload carries, preferring the
// structured role object over the legacy roles claim.
func (c *Claims) RoleNames() []string {
	if c.Role != nil && c.Role.RoleName != "" {
		return []string{c.Role.RoleName}
	}
	return c.LegacyRoles
}

// Manager issues and verifies HS256-signed tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken signs a short-lived token carrying the user's identity and
// active role.
func (m *Manager) IssueAccessToken(user *models.User) (string, error) {
	return m.issue(user, TypeAccess, m.accessTTL)
}

// IssueRefreshToken signs a long-lived token used only to obtain new access
// tokens.
func (m *Manager) IssueRefreshToken(user *models.User) (string, error) {
	return m.issue(user, TypeRefresh, m.refreshTTL)
}

func (m *Manager) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.Role != nil {
		claims.Role = &RoleClaim{ID: user.Role.ID, RoleName: user.Role.Name}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature and expiry and returns the claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccess verifies an access token. Tokens without a token_type claim are
// accepted for compatibility with older issuers.
func (m *Manager) ParseAccess(tokenString string) (*Claims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "" && claims.TokenType != TypeAccess {
		return nil, ErrWrongTokenUse
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token.
func (m *Manager) ParseRefresh(tokenString string) (*Claims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeRefresh {
		return nil, ErrWrongTokenUse
	}
	return claims, nil
}
