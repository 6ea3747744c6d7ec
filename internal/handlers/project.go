package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/dto"
	apierrors "github.com/donmarsh/tasker-backend/internal/errors"
	"github.com/donmarsh/tasker-backend/internal/middleware"
	"github.com/donmarsh/tasker-backend/internal/repository"
	"github.com/donmarsh/tasker-backend/internal/services"
	"github.com/donmarsh/tasker-backend/internal/utils"
)

// ProjectHandler exposes the project endpoints. All of them are restricted to
// the admin and manager roles by the service layer.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns non-deleted projects matching the query filters.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ProjectFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if statusStr := c.Query("project_status"); statusStr != "" {
		statusID, err := strconv.ParseUint(statusStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_status")
			return
		}
		filter.StatusID = &statusID
	}

	projects, total, err := h.projectService.List(middleware.GetCaller(c), filter)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns a single project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.Get(middleware.GetCaller(c), id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name            string     `json:"name" binding:"required"`
		Description     string     `json:"description"`
		StartDate       *time.Time `json:"project_start_date"`
		EndDate         *time.Time `json:"project_end_date"`
		ProjectStatusID *uint64    `json:"project_status_id"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(middleware.GetCaller(c), services.CreateProjectInput{
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ProjectStatusID: req.ProjectStatusID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject updates the provided fields of a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type UpdateProjectRequest struct {
		Name            *string    `json:"name"`
		Description     *string    `json:"description"`
		StartDate       *time.Time `json:"project_start_date"`
		EndDate         *time.Time `json:"project_end_date"`
		ProjectStatusID *uint64    `json:"project_status_id"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(middleware.GetCaller(c), id, services.UpdateProjectInput{
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ProjectStatusID: req.ProjectStatusID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject soft deletes a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(middleware.GetCaller(c), id); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, authz.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrProjectStatusNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
