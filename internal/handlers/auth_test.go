package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/constants"
	"github.com/donmarsh/tasker-backend/internal/database"
	"github.com/donmarsh/tasker-backend/internal/dto"
	"github.com/donmarsh/tasker-backend/internal/middleware"
	"github.com/donmarsh/tasker-backend/internal/models"
	"github.com/donmarsh/tasker-backend/internal/repository"
	"github.com/donmarsh/tasker-backend/internal/services"
	"github.com/donmarsh/tasker-backend/internal/token"
)

type authTestEnv struct {
	db          *gorm.DB
	tokens      *token.Manager
	userRepo    repository.UserRepository
	authService *services.AuthService
	handler     *AuthHandler
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.ProjectStatus{},
		&models.Project{},
		&models.TaskStatus{},
		&models.Task{},
	)
	require.NoError(t, err)
	require.NoError(t, database.SeedDB(db))

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	authService := services.NewAuthService(userRepo, roleRepo)
	tokens := token.NewManager("test-secret", time.Hour, 7*24*time.Hour)
	handler := NewAuthHandler(authService, tokens, time.Hour, 7*24*time.Hour)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		tokens:      tokens,
		userRepo:    userRepo,
		authService: authService,
		handler:     handler,
	}
}

func (env authTestEnv) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Authenticate(env.tokens, env.userRepo))

	auth := api.Group("/auth")
	auth.POST("/register", env.handler.Register)
	auth.POST("/login", env.handler.Login)
	auth.POST("/refresh", env.handler.Refresh)
	auth.POST("/logout", env.handler.Logout)
	auth.POST("/forgot-password", env.handler.ForgotPassword)
	auth.POST("/reset-password", env.handler.ResetPassword)
	auth.GET("/me", middleware.RequireAuth(), env.handler.GetCurrentUser)

	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	w := postJSON(t, r, "/api/auth/register", map[string]any{
		"username":  "newuser",
		"email":     "newuser@example.com",
		"full_name": "New User",
		"password":  "supersecret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "newuser", response.Username)
	require.NotNil(t, response.Role)
	require.Equal(t, "User", response.Role.RoleName)
}

func TestAuthHandler_RegisterDuplicateUsername(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	payload := map[string]any{
		"username":  "dupe",
		"email":     "dupe@example.com",
		"full_name": "Dupe",
		"password":  "supersecret",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/auth/register", payload).Code)

	payload["email"] = "other@example.com"
	require.Equal(t, http.StatusConflict, postJSON(t, r, "/api/auth/register", payload).Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	_, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		FullName: "Existing User",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/login", map[string]any{
		"username": "existing",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		User         dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.AccessToken)
	require.NotEmpty(t, response.RefreshToken)
	require.Equal(t, "existing", response.User.Username)

	names := map[string]bool{}
	for _, cookie := range w.Result().Cookies() {
		names[cookie.Name] = cookie.HttpOnly
	}
	require.True(t, names[constants.AccessTokenCookie], "expected HttpOnly access token cookie")
	require.True(t, names[constants.RefreshTokenCookie], "expected HttpOnly refresh token cookie")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	_, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		FullName: "Existing User",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/login", map[string]any{
		"username": "existing",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	user, err := env.authService.Register(services.RegisterInput{
		Username: "current-user",
		Email:    "current@example.com",
		FullName: "Current User",
		Password: "supersecret",
	})
	require.NoError(t, err)

	accessToken, err := env.tokens.IssueAccessToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Username, response.Username)
}

func TestAuthHandler_GetCurrentUserUnauthenticated(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_AccessTokenCookieFallback(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	user, err := env.authService.Register(services.RegisterInput{
		Username: "cookie-user",
		Email:    "cookie@example.com",
		FullName: "Cookie User",
		Password: "supersecret",
	})
	require.NoError(t, err)

	accessToken, err := env.tokens.IssueAccessToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: accessToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	user, err := env.authService.Register(services.RegisterInput{
		Username: "refresher",
		Email:    "refresher@example.com",
		FullName: "Refresher",
		Password: "supersecret",
	})
	require.NoError(t, err)

	refreshToken, err := env.tokens.IssueRefreshToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: refreshToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.AccessToken)

	// The returned token must be usable as an access token.
	claims, err := env.tokens.ParseAccess(response.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestAuthHandler_RefreshRejectsAccessToken(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	user, err := env.authService.Register(services.RegisterInput{
		Username: "refresher",
		Email:    "refresher@example.com",
		FullName: "Refresher",
		Password: "supersecret",
	})
	require.NoError(t, err)

	accessToken, err := env.tokens.IssueAccessToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookie, Value: accessToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	w := postJSON(t, r, "/api/auth/logout", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		require.Empty(t, cookie.Value)
		require.Negative(t, cookie.MaxAge)
	}
}

func TestAuthHandler_PasswordResetFlow(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	_, err := env.authService.Register(services.RegisterInput{
		Username: "forgetful",
		Email:    "forgetful@example.com",
		FullName: "Forgetful User",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/forgot-password", map[string]any{
		"email": "forgetful@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var forgotResponse struct {
		ResetToken string `json:"reset_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forgotResponse))
	require.NotEmpty(t, forgotResponse.ResetToken)

	w = postJSON(t, r, "/api/auth/reset-password", map[string]any{
		"reset_token":  forgotResponse.ResetToken,
		"new_password": "evenmoresecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The old password no longer works, the new one does.
	require.Equal(t, http.StatusUnauthorized, postJSON(t, r, "/api/auth/login", map[string]any{
		"username": "forgetful",
		"password": "supersecret",
	}).Code)
	require.Equal(t, http.StatusOK, postJSON(t, r, "/api/auth/login", map[string]any{
		"username": "forgetful",
		"password": "evenmoresecret",
	}).Code)

	// Reset tokens are single use.
	w = postJSON(t, r, "/api/auth/reset-password", map[string]any{
		"reset_token":  forgotResponse.ResetToken,
		"new_password": "anotherone",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
