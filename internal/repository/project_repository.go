package repository

import (
	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/database"
	"github.com/donmarsh/tasker-backend/internal/models"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves non-deleted projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	if filter.StatusID != nil {
		query = query.Where("projects.project_status_id = ?", *filter.StatusID)
	}
	if filter.Search != "" {
		query = query.Where("projects.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order(projectOrdering(filter.Ordering)).
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("ProjectStatus").Preload("CreatedBy").Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// projectOrdering maps the ordering parameter to a whitelisted ORDER BY clause
func projectOrdering(ordering string) string {
	switch ordering {
	case "created_at":
		return "projects.created_at ASC"
	case "project_start_date":
		return "projects.start_date ASC"
	case "-project_start_date":
		return "projects.start_date DESC"
	case "project_end_date":
		return "projects.end_date ASC"
	case "-project_end_date":
		return "projects.end_date DESC"
	default:
		return "projects.created_at DESC"
	}
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft deletes a project
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}
