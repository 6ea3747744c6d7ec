package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/dto"
	apierrors "github.com/donmarsh/tasker-backend/internal/errors"
	"github.com/donmarsh/tasker-backend/internal/middleware"
	"github.com/donmarsh/tasker-backend/internal/services"
	"github.com/donmarsh/tasker-backend/internal/utils"
)

// TaskHandler exposes the task endpoints. Visibility and per-object rights are
// decided by the service layer; the handler only translates the wire format.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the caller. The assignee query
// parameter is passed through raw; an unparseable or cross-user value yields
// an empty collection rather than an error.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		AssigneeFilter: c.Query("assignee"),
		Search:         c.Query("search"),
		Ordering:       c.Query("ordering"),
		Page:           params.Page,
		PageSize:       params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		statusID, err := strconv.ParseUint(statusStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.StatusID = &statusID
	}
	if projectStr := c.Query("project"); projectStr != "" {
		projectID, err := strconv.ParseUint(projectStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project")
			return
		}
		input.ProjectID = &projectID
	}

	tasks, total, err := h.taskService.ListTasks(middleware.GetCaller(c), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(middleware.GetCaller(c), id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Deadline    *time.Time `json:"deadline"`
		StatusID    uint64     `json:"status_id" binding:"required"`
		AssigneeID  *uint64    `json:"assignee_id"`
		ProjectID   uint64     `json:"project_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(middleware.GetCaller(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		StatusID:    req.StatusID,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates only the fields present in the request. A null deadline
// clears the deadline; a null assignee_id unassigns the task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			apierrors.BadRequest(c, "Invalid title")
			return
		}
		input.Title = &title
	}
	if v, ok := raw["description"]; ok {
		var description string
		if err := json.Unmarshal(v, &description); err != nil {
			apierrors.BadRequest(c, "Invalid description")
			return
		}
		input.Description = &description
	}
	if v, ok := raw["deadline"]; ok {
		if string(v) == "null" {
			input.ClearDeadline = true
		} else {
			var deadline time.Time
			if err := json.Unmarshal(v, &deadline); err != nil {
				apierrors.BadRequest(c, "Invalid deadline")
				return
			}
			input.Deadline = &deadline
		}
	}
	if v, ok := raw["status_id"]; ok {
		var statusID uint64
		if err := json.Unmarshal(v, &statusID); err != nil {
			apierrors.BadRequest(c, "Invalid status_id")
			return
		}
		input.StatusID = &statusID
	}
	if v, ok := raw["assignee_id"]; ok {
		if string(v) == "null" {
			input.Unassign = true
		} else {
			var assigneeID uint64
			if err := json.Unmarshal(v, &assigneeID); err != nil {
				apierrors.BadRequest(c, "Invalid assignee_id")
				return
			}
			input.AssigneeID = &assigneeID
		}
	}

	task, err := h.taskService.UpdateTask(middleware.GetCaller(c), id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(middleware.GetCaller(c), id); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, authz.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrTaskStatusNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
