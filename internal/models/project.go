package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(50);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Project struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"type:varchar(100);not null" json:"name"`
	Description     string         `gorm:"type:varchar(500)" json:"description"`
	StartDate       *time.Time     `json:"project_start_date"`
	EndDate         *time.Time     `json:"project_end_date"`
	ProjectStatusID *uint64        `json:"project_status_id"`
	CreatedByID     uint64         `gorm:"not null" json:"created_by_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ProjectStatus *ProjectStatus `gorm:"foreignKey:ProjectStatusID" json:"project_status,omitempty"`
	CreatedBy     User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Tasks         []Task         `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
