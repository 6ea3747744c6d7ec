package repository

import (
	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with the active role preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds an active user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds an active user by email
	FindByEmail(email string) (*models.User, error)

	// FindByResetToken finds an active user by password reset token
	FindByResetToken(resetToken string) (*models.User, error)

	// List retrieves active users with their roles
	List(page, pageSize int) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	// FindByID finds an active role by ID
	FindByID(id uint64) (*models.Role, error)

	// FindByName finds an active role by name
	FindByName(name string) (*models.Role, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	StatusID *uint64
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves non-deleted projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks. Scope carries the
// caller-visibility restriction computed by the authorization core; the
// remaining fields are plain request filters.
type TaskFilter struct {
	Scope     authz.TaskScope
	StatusID  *uint64
	ProjectID *uint64
	Search    string
	Ordering  string
	Page      int
	PageSize  int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks restricted by the filter's visibility scope
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}
