package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	FullName     string         `gorm:"type:varchar(100);not null" json:"full_name"`
	Telephone    string         `gorm:"type:varchar(20)" json:"telephone"`
	PasswordHash string         `gorm:"type:varchar(256);not null" json:"-"`
	RoleID       *uint64        `json:"role_id"`
	ResetToken   *string        `gorm:"type:varchar(20)" json:"-"`
	ResetExpiry  *time.Time     `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Role          *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Projects      []Project `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTasks []Task    `gorm:"foreignKey:AssigneeID" json:"-"`
}

// RoleName returns the name of the user's active role. A user without a role
// assignment has no role name; soft-deleted roles are never preloaded, so they
// behave the same as a missing role.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
