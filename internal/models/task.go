package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(50);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(100);not null" json:"title"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	Deadline    *time.Time     `json:"deadline"`
	StatusID    uint64         `gorm:"not null" json:"status_id"`
	AssigneeID  *uint64        `json:"assignee_id"`
	ProjectID   uint64         `gorm:"not null" json:"project_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Status   TaskStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Assignee *User      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Project  Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
