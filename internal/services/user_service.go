package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/authz"
	"github.com/donmarsh/tasker-backend/internal/models"
	"github.com/donmarsh/tasker-backend/internal/repository"
)

// UserService handles the admin user-management operations. Every entry
// point goes through the access decision engine; role logic is never
// re-derived here.
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// List returns active users. Requires the admin or manager role.
func (s *UserService) List(caller authz.Caller, page, pageSize int) ([]models.User, int64, error) {
	allowed, err := authz.CanAccess(caller, authz.ActionList, &models.User{})
	if err != nil {
		return nil, 0, err
	}
	if !allowed {
		return nil, 0, authz.ErrPermissionDenied
	}

	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Get retrieves a single user. Requires the admin role.
func (s *UserService) Get(caller authz.Caller, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionRetrieve, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	return user, nil
}

// UpdateUserInput represents input for updating a user account.
type UpdateUserInput struct {
	Email     *string
	FullName  *string
	Telephone *string
	RoleID    *uint64
}

// Update modifies a user account. Requires the admin role.
func (s *UserService) Update(caller authz.Caller, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	allowed, err := authz.CanAccess(caller, authz.ActionUpdate, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrPermissionDenied
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != "" && email != user.Email {
			if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != user.ID {
				return nil, ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Telephone != nil {
		user.Telephone = strings.TrimSpace(*input.Telephone)
	}
	if input.RoleID != nil {
		role, err := s.roleRepo.FindByID(*input.RoleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, fmt.Errorf("failed to check role: %w", err)
		}
		user.RoleID = &role.ID
		user.Role = role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
