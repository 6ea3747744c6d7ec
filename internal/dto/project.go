package dto

import (
	"time"

	"github.com/donmarsh/tasker-backend/internal/models"
)

// StatusDTO represents a project or task status in API responses
type StatusDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID            uint64     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StartDate     *time.Time `json:"project_start_date"`
	EndDate       *time.Time `json:"project_end_date"`
	ProjectStatus *StatusDTO `json:"project_status"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToProjectStatusDTO converts a ProjectStatus model to StatusDTO
func ToProjectStatusDTO(status *models.ProjectStatus) *StatusDTO {
	if status == nil {
		return nil
	}
	return &StatusDTO{
		ID:   status.ID,
		Name: status.Name,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		StartDate:     project.StartDate,
		EndDate:       project.EndDate,
		ProjectStatus: ToProjectStatusDTO(project.ProjectStatus),
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}

	// Include creator username if preloaded
	if project.CreatedBy.ID != 0 {
		dto.CreatedBy = project.CreatedBy.Username
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}
	return items
}
