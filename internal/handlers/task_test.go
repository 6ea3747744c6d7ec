package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/database"
	"github.com/donmarsh/tasker-backend/internal/dto"
	"github.com/donmarsh/tasker-backend/internal/middleware"
	"github.com/donmarsh/tasker-backend/internal/models"
	"github.com/donmarsh/tasker-backend/internal/repository"
	"github.com/donmarsh/tasker-backend/internal/services"
	"github.com/donmarsh/tasker-backend/internal/token"
	"github.com/donmarsh/tasker-backend/internal/utils"
)

type taskTestEnv struct {
	db      *gorm.DB
	tokens  *token.Manager
	router  *gin.Engine
	project models.Project
	todo    models.TaskStatus
}

func setupTaskTestEnv(t *testing.T) *taskTestEnv {
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
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, db)
	tokens := token.NewManager("test-secret", time.Hour, 7*24*time.Hour)
	handler := NewTaskHandler(taskService)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Authenticate(tokens, userRepo))
	tasks := api.Group("/tasks")
	tasks.Use(middleware.RequireAuth())
	tasks.GET("", handler.ListTasks)
	tasks.POST("", handler.CreateTask)
	tasks.GET("/:id", handler.GetTask)
	tasks.PATCH("/:id", handler.UpdateTask)
	tasks.DELETE("/:id", handler.DeleteTask)

	env := &taskTestEnv{db: db, tokens: tokens, router: r}

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	env.project = models.Project{Name: "Rollout", CreatedByID: admin.ID}
	require.NoError(t, db.Create(&env.project).Error)
	require.NoError(t, db.Where("name = ?", "todo").First(&env.todo).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return env
}

func (env *taskTestEnv) createUser(t *testing.T, username string, roleID uint64) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: "x",
		RoleID:       &roleID,
	}
	require.NoError(t, env.db.Create(user).Error)
	require.NoError(t, env.db.Preload("Role").First(user, user.ID).Error)
	return user
}

func (env *taskTestEnv) createTask(t *testing.T, title string, assigneeID *uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		StatusID:   env.todo.ID,
		AssigneeID: assigneeID,
		ProjectID:  env.project.ID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env *taskTestEnv) do(t *testing.T, user *models.User, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		accessToken, err := env.tokens.IssueAccessToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type taskListResponse struct {
	Tasks      []dto.TaskDTO            `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func decodeTaskList(t *testing.T, w *httptest.ResponseRecorder) taskListResponse {
	t.Helper()

	var response taskListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestTaskHandler_ListRequiresAuth(t *testing.T) {
	env := setupTaskTestEnv(t)

	w := env.do(t, nil, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskHandler_AdminListIncludesUnassigned(t *testing.T) {
	env := setupTaskTestEnv(t)
	admin := env.createUser(t, "boss", models.RoleIDAdmin)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	env.createTask(t, "assigned", &worker.ID)
	env.createTask(t, "backlog", nil)

	w := env.do(t, admin, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Len(t, response.Tasks, 2)
	require.EqualValues(t, 2, response.Pagination.Total)
}

func TestTaskHandler_AssigneeFilterExcludesUnassigned(t *testing.T) {
	env := setupTaskTestEnv(t)
	admin := env.createUser(t, "boss", models.RoleIDAdmin)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	env.createTask(t, "assigned", &worker.ID)
	env.createTask(t, "backlog", nil)

	w := env.do(t, admin, http.MethodGet, fmt.Sprintf("/api/tasks?assignee=%d", worker.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Len(t, response.Tasks, 1)
	require.Equal(t, "assigned", response.Tasks[0].Title)
}

func TestTaskHandler_ManagerCanFilterByOtherUser(t *testing.T) {
	env := setupTaskTestEnv(t)
	manager := env.createUser(t, "lead", models.RoleIDManager)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	env.createTask(t, "assigned", &worker.ID)
	env.createTask(t, "backlog", nil)

	w := env.do(t, manager, http.MethodGet, fmt.Sprintf("/api/tasks?assignee=%d", worker.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Len(t, response.Tasks, 1)
	require.Equal(t, "assigned", response.Tasks[0].Title)
}

func TestTaskHandler_CrossUserFilterYieldsEmpty(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)
	other := env.createUser(t, "other", models.RoleIDUser)

	env.createTask(t, "other's task", &other.ID)

	w := env.do(t, worker, http.MethodGet, fmt.Sprintf("/api/tasks?assignee=%d", other.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Empty(t, response.Tasks)
	require.EqualValues(t, 0, response.Pagination.Total)
}

func TestTaskHandler_UnparseableFilterYieldsEmpty(t *testing.T) {
	env := setupTaskTestEnv(t)
	admin := env.createUser(t, "boss", models.RoleIDAdmin)

	env.createTask(t, "backlog", nil)

	w := env.do(t, admin, http.MethodGet, "/api/tasks?assignee=bogus", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Empty(t, response.Tasks)
}

func TestTaskHandler_RegularUserSeesOwnTasksOnly(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)
	other := env.createUser(t, "other", models.RoleIDUser)

	env.createTask(t, "mine", &worker.ID)
	env.createTask(t, "theirs", &other.ID)
	env.createTask(t, "backlog", nil)

	w := env.do(t, worker, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeTaskList(t, w)
	require.Len(t, response.Tasks, 1)
	require.Equal(t, "mine", response.Tasks[0].Title)
}

func TestTaskHandler_GetByNonAssigneeForbidden(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)
	other := env.createUser(t, "other", models.RoleIDUser)

	task := env.createTask(t, "other's task", &other.ID)

	w := env.do(t, worker, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_GetOwnTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	task := env.createTask(t, "mine", &worker.ID)

	w := env.do(t, worker, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "mine", response.Title)
	require.Equal(t, "worker", response.Assignee)
}

func TestTaskHandler_UpdateOwnTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	task := env.createTask(t, "mine", &worker.ID)

	w := env.do(t, worker, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"title": "renamed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "renamed", response.Title)
}

func TestTaskHandler_UpdateByNonAssigneeForbidden(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)
	other := env.createUser(t, "other", models.RoleIDUser)

	task := env.createTask(t, "other's task", &other.ID)

	w := env.do(t, worker, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"title": "hijacked",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_ManagerCanUpdateAnyTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	manager := env.createUser(t, "lead", models.RoleIDManager)
	other := env.createUser(t, "other", models.RoleIDUser)

	task := env.createTask(t, "other's task", &other.ID)

	w := env.do(t, manager, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"title": "reprioritized",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTaskHandler_UpdateNullAssigneeUnassigns(t *testing.T) {
	env := setupTaskTestEnv(t)
	manager := env.createUser(t, "lead", models.RoleIDManager)
	other := env.createUser(t, "other", models.RoleIDUser)

	task := env.createTask(t, "other's task", &other.ID)

	w := env.do(t, manager, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"assignee_id": nil,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Nil(t, response.AssigneeID)
}

func TestTaskHandler_CreateTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	w := env.do(t, worker, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "write report",
		"status_id":  env.todo.ID,
		"project_id": env.project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "write report", response.Title)
	require.Equal(t, env.project.ID, response.ProjectID)
}

func TestTaskHandler_CreateTaskUnknownProject(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	w := env.do(t, worker, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "orphan",
		"status_id":  env.todo.ID,
		"project_id": 9999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_DeleteOwnTaskIsSoft(t *testing.T) {
	env := setupTaskTestEnv(t)
	worker := env.createUser(t, "worker", models.RoleIDUser)

	task := env.createTask(t, "mine", &worker.ID)

	w := env.do(t, worker, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Gone from the default scope, still present unscoped.
	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, env.db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
