package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/models"
	"github.com/donmarsh/tasker-backend/internal/repository"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleEmpty         = errors.New("title cannot be empty")
	ErrTaskStatusNotFound = errors.New("task status not found")
	ErrAssigneeNotFound   = errors.New("assignee does not exist")
)

// TaskService handles task business logic. Visibility of bulk queries comes
// from ScopeTasks; per-object rights come from CanAccess. Neither is
// re-derived here or in the handlers.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, db *gorm.DB) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		db:          db,
	}
}

// ListTasksInput represents filters for listing tasks. AssigneeFilter is the
// raw value of the optional assignee query parameter.
type ListTasksInput struct {
	AssigneeFilter string
	StatusID       *uint64
	ProjectID      *uint64
	Search         string
	Ordering       string
	Page           int
	PageSize       int
}

// ListTasks returns the tasks visible to the caller. A denied or unresolvable
// query yields an empty collection, never an error.
func (s *TaskService) ListTasks(caller authz.Caller, input ListTasksInput) ([]models.Task, int64, error) {
	allowed, err := authz.CanAccess(caller, authz.ActionList, &models.Task{})
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return []models.Task{}, 0, nil
	}

	filter := repository.TaskFilter{
		Scope:     authz.ScopeTasks(caller, input.AssigneeFilter),
		StatusID:  input.StatusID,
		ProjectID: input.ProjectID,
		Search:    input.Search,
		Ordering:  input.Ordering,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data. Denial surfaces as
// authz.ErrPermissionDenied since the id already reveals existence.
func (s *TaskService) GetTask(caller authz.Caller, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Status", "Assignee", "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionRetrieve, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Deadline    *time.Time
	StatusID    uint64
	AssigneeID  *uint64
	ProjectID   uint64
}

// CreateTask creates a new task after validating its references.
func (s *TaskService) CreateTask(caller authz.Caller, input CreateTaskInput) (*models.Task, error) {
	if !caller.Authenticated {
		return nil, authz.ErrUnauthenticated
	}
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to check project: %w", err)
	}

	if err := s.ensureTaskStatus(input.StatusID); err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to check assignee: %w", err)
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Deadline:    input.Deadline,
		StatusID:    input.StatusID,
		AssigneeID:  input.AssigneeID,
		ProjectID:   input.ProjectID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Status", "Assignee", "Project")
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	StatusID      *uint64
	AssigneeID    *uint64
	Unassign      bool
}

// UpdateTask updates an existing task when the caller is privileged or the
// task's assignee.
func (s *TaskService) UpdateTask(caller authz.Caller, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionUpdate, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.StatusID != nil {
		if err := s.ensureTaskStatus(*input.StatusID); err != nil {
			return nil, err
		}
		task.StatusID = *input.StatusID
	}
	if input.Unassign {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to check assignee: %w", err)
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Status", "Assignee", "Project")
}

// DeleteTask soft deletes a task when the caller is privileged or the task's
// assignee.
func (s *TaskService) DeleteTask(caller authz.Caller, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionDelete, task)
	if err != nil {
		return err
	}
	if !allowed {
		return authz.ErrPermissionDenied
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) ensureTaskStatus(id uint64) error {
	var status models.TaskStatus
	if err := s.db.First(&status, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskStatusNotFound
		}
		return fmt.Errorf("failed to check task status: %w", err)
	}
	return nil
}
