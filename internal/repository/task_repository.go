package repository

import (
	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/database"
	"github.com/donmarsh/tasker-backend/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks restricted by the filter's visibility scope. Soft
// deleted tasks are excluded by the default gorm scope on DeletedAt.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	if filter.Scope.Empty {
		return []models.Task{}, 0, nil
	}

	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.Scope.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.Scope.AssigneeID)
	}
	if filter.Scope.RequireAssignee {
		query = query.Where("tasks.assignee_id IS NOT NULL")
	}

	if filter.StatusID != nil {
		query = query.Where("tasks.status_id = ?", *filter.StatusID)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("tasks.title LIKE ? OR tasks.description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order(taskOrdering(filter.Ordering)).
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.
		Preload("Status").
		Preload("Assignee").
		Preload("Project").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// taskOrdering maps the ordering parameter to a whitelisted ORDER BY clause
func taskOrdering(ordering string) string {
	switch ordering {
	case "deadline":
		return "CASE WHEN tasks.deadline IS NULL THEN 1 ELSE 0 END, tasks.deadline ASC"
	case "-deadline":
		return "CASE WHEN tasks.deadline IS NULL THEN 1 ELSE 0 END, tasks.deadline DESC"
	case "created_at":
		return "tasks.created_at ASC"
	default:
		return "tasks.created_at DESC"
	}
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
