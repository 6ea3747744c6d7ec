package models

import (
	"time"

	"gorm.io/gorm"
)

// Seeded role IDs. Registration falls back to RoleIDUser when no role is given.
const (
	RoleIDAdmin   uint64 = 1
	RoleIDManager uint64 = 2
	RoleIDUser    uint64 = 3
)

type Role struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
