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
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectNameRequired   = errors.New("project name is required")
	ErrProjectStatusNotFound = errors.New("project status not found")
)

// ProjectService handles project business logic. All operations are gated on
// the admin or manager role via the access decision engine; the visible set
// is the non-deleted projects.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	db          *gorm.DB
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, db *gorm.DB) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		db:          db,
	}
}

// List returns non-deleted projects matching the filter.
func (s *ProjectService) List(caller authz.Caller, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	allowed, err := authz.CanAccess(caller, authz.ActionList, &models.Project{})
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return nil, 0, authz.ErrPermissionDenied
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// Get returns a single project with its status and creator.
func (s *ProjectService) Get(caller authz.Caller, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "ProjectStatus", "CreatedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionRetrieve, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	return project, nil
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	Name            string
	Description     string
	StartDate       *time.Time
	EndDate         *time.Time
	ProjectStatusID *uint64
}

// Create creates a new project owned by the caller.
func (s *ProjectService) Create(caller authz.Caller, input CreateProjectInput) (*models.Project, error) {
	allowed, err := authz.CanAccess(caller, authz.ActionUpdate, &models.Project{})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	if input.Name == "" {
		return nil, ErrProjectNameRequired
	}

	if input.ProjectStatusID != nil {
		if err := s.ensureProjectStatus(*input.ProjectStatusID); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Name:            input.Name,
		Description:     input.Description,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		ProjectStatusID: input.ProjectStatusID,
		CreatedByID:     caller.ID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "ProjectStatus", "CreatedBy")
}

// UpdateProjectInput represents input for updating a project.
type UpdateProjectInput struct {
	Name            *string
	Description     *string
	StartDate       *time.Time
	EndDate         *time.Time
	ProjectStatusID *uint64
}

// Update updates an existing project.
func (s *ProjectService) Update(caller authz.Caller, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionUpdate, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.ProjectStatusID != nil {
		if err := s.ensureProjectStatus(*input.ProjectStatusID); err != nil {
			return nil, err
		}
		project.ProjectStatusID = input.ProjectStatusID
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "ProjectStatus", "CreatedBy")
}

// Delete soft deletes a project.
func (s *ProjectService) Delete(caller authz.Caller, id uint64) error {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionDelete, project)
	if err != nil {
		return err
	}
	if !allowed {
		return authz.ErrPermissionDenied
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *ProjectService) ensureProjectStatus(id uint64) error {
	var status models.ProjectStatus
	if err := s.db.First(&status, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectStatusNotFound
		}
		return fmt.Errorf("failed to check project status: %w", err)
	}
	return nil
}
