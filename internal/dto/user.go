package dto

import (
	"github.com/donmarsh/tasker-backend/internal/models"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID       uint64 `json:"id"`
	RoleName string `json:"role_name"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     *RoleDTO `json:"role"`
}

// UserDetailDTO represents a user in admin user-management responses
type UserDetailDTO struct {
	ID        uint64   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Telephone string   `json:"telephone"`
	Role      *RoleDTO `json:"role"`
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role *models.Role) *RoleDTO {
	if role == nil {
		return nil
	}
	return &RoleDTO{
		ID:       role.ID,
		RoleName: role.Name,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     ToRoleDTO(user.Role),
	}
}

// ToUserDetailDTO converts a User model to UserDetailDTO
func ToUserDetailDTO(user models.User) UserDetailDTO {
	return UserDetailDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Telephone: user.Telephone,
		Role:      ToRoleDTO(user.Role),
	}
}

// ToUserDetailDTOs converts a slice of users
func ToUserDetailDTOs(users []models.User) []UserDetailDTO {
	items := make([]UserDetailDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDetailDTO(user)
	}
	return items
}
