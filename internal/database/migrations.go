package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/donmarsh/tasker-backend/internal/models"
)

// Migrate creates or updates the schema for all models.
func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.ProjectStatus{},
		&models.Project{},
		&models.TaskStatus{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

// Seed inserts the baseline reference data: the three roles, the default
// project and task statuses, and an initial admin account. All inserts are
// idempotent so Seed is safe to run on every startup.
func Seed() error {
	return SeedDB(DB)
}

// SeedDB seeds the given database instance (used for testing)
func SeedDB(db *gorm.DB) error {
	roles := []models.Role{
		{ID: models.RoleIDAdmin, Name: "Admin"},
		{ID: models.RoleIDManager, Name: "Manager"},
		{ID: models.RoleIDUser, Name: "User"},
	}
	for _, role := range roles {
		var existing models.Role
		if err := db.Where("name = ?", role.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}

	statusNames := []string{"todo", "in progress", "completed"}
	for _, name := range statusNames {
		var taskStatus models.TaskStatus
		if err := db.Where("name = ?", name).First(&taskStatus).Error; err != nil {
			if err := db.Create(&models.TaskStatus{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed task status %s: %w", name, err)
			}
		}

		var projectStatus models.ProjectStatus
		if err := db.Where("name = ?", name).First(&projectStatus).Error; err != nil {
			if err := db.Create(&models.ProjectStatus{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed project status %s: %w", name, err)
			}
		}
	}

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		adminRoleID := models.RoleIDAdmin
		admin = models.User{
			Username:     "admin",
			Email:        "admin@example.com",
			FullName:     "Administrator",
			PasswordHash: string(hash),
			RoleID:       &adminRoleID,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Println("Seeded default admin user")
	}

	return nil
}
