package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donmarsh/tasker-backend/internal/constants"
	"github.com/donmarsh/tasker-backend/internal/dto"
	apierrors "github.com/donmarsh/tasker-backend/internal/errors"
	"github.com/donmarsh/tasker-backend/internal/middleware"
	"github.com/donmarsh/tasker-backend/internal/services"
	"github.com/donmarsh/tasker-backend/internal/token"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokens      *token.Manager
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokens *token.Manager, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Register creates a new user account. The role defaults to the regular user
// role when none is given.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username  string  `json:"username" binding:"required,min=3,max=50"`
		Email     string  `json:"email" binding:"required,email"`
		FullName  string  `json:"full_name" binding:"required"`
		Telephone string  `json:"telephone"`
		Password  string  `json:"password" binding:"required"`
		RoleID    *uint64 `json:"role_id"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Telephone: req.Telephone,
		Password:  req.Password,
		RoleID:    req.RoleID,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user, sets the token cookies and returns the tokens
// alongside the user summary for clients that keep tokens themselves.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          dto.ToUserDTO(*user),
	})
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token comes from the cookie or, for non-browser clients, the request body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token"`
	}

	raw, err := c.Cookie(constants.RefreshTokenCookie)
	if err != nil || raw == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			apierrors.Unauthorized(c, "Refresh token required")
			return
		}
		raw = req.RefreshToken
	}

	claims, err := h.tokens.ParseRefresh(raw)
	if err != nil {
		apierrors.Unauthorized(c, "Invalid refresh token")
		return
	}

	// Reload the account so the new access token carries the current role.
	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.AccessTokenCookie, accessToken, int(h.accessTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
	})
}

// Logout clears the token cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(constants.RefreshTokenCookie, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if !caller.Authenticated {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(caller.ID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ForgotPassword stores a reset token on the account. The token is returned in
// the response; mail delivery is out of scope here.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	resetToken, err := h.authService.ForgotPassword(req.Email)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Password reset token generated",
		"reset_token": resetToken,
	})
}

// ResetPassword sets a new password for the account holding the reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		ResetToken  string `json:"reset_token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(req.ResetToken, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset",
	})
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.AccessTokenCookie, accessToken, int(h.accessTTL.Seconds()), "/", "", false, true)
	c.SetCookie(constants.RefreshTokenCookie, refreshToken, int(h.refreshTTL.Seconds()), "/", "", false, true)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleNotFound),
		errors.Is(err, services.ErrResetTokenInvalid):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
