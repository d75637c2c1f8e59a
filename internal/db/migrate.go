package db

import (
	"fmt"

	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.Stage{},
		&models.ProjectUser{},
		&models.Status{},
		&models.Priority{},
		&models.Defect{},
		&models.Comment{},
		&models.Attachment{},
		&models.History{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedLookups upserts the fixed status and priority rows. The defect
// workflow resolves statuses by these names, so seeding must run before the
// first defect is created.
func SeedLookups(db *gorm.DB) error {
	for _, name := range models.StatusNames {
		status := models.Status{Name: name}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&status)
		if result.Error != nil {
			return fmt.Errorf("db: seed status %q: %w", name, result.Error)
		}
	}
	for _, name := range models.PriorityNames {
		priority := models.Priority{Name: name}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&priority)
		if result.Error != nil {
			return fmt.Errorf("db: seed priority %q: %w", name, result.Error)
		}
	}
	return nil
}
