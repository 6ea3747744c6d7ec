package dto

import (
	"time"

	"github.com/donmarsh/tasker-backend/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      *StatusDTO `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	Assignee    string     `json:"assignee,omitempty"`
	AssigneeID  *uint64    `json:"assignee_id"`
	Project     string     `json:"project,omitempty"`
	ProjectID   uint64     `json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToTaskStatusDTO converts a TaskStatus model to StatusDTO
func ToTaskStatusDTO(status models.TaskStatus) *StatusDTO {
	if status.ID == 0 {
		return nil
	}
	return &StatusDTO{
		ID:   status.ID,
		Name: status.Name,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      ToTaskStatusDTO(task.Status),
		Deadline:    task.Deadline,
		AssigneeID:  task.AssigneeID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include usernames if preloaded
	if task.Assignee != nil {
		dto.Assignee = task.Assignee.Username
	}
	if task.Project.ID != 0 {
		dto.Project = task.Project.Name
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
