// Package comment provides the append-only discussion thread on defects.
package comment

import (
	"errors"
	"fmt"

	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// Add appends a comment to a defect's thread. Comments are never edited or
// deleted. Visibility is the API layer's job via access.CanViewDefect.
func Add(gdb *gorm.DB, defectID, authorID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment: content is required")
	}

	var count int64
	if err := gdb.Model(&models.Defect{}).Where("id = ?", defectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("comment: check defect %d: %w", defectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("comment: defect %d: %w", defectID, apperr.ErrNotFound)
	}

	c := models.Comment{
		DefectID: defectID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := gdb.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("comment: create: %w", err)
	}
	if err := gdb.Preload("Author").First(&c, c.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment: %d: %w", c.ID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("comment: reload %d: %w", c.ID, err)
	}
	return &c, nil
}

// ListByDefect returns a defect's comments, oldest first.
func ListByDefect(gdb *gorm.DB, defectID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := gdb.Preload("Author").
		Where("defect_id = ?", defectID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment: list for defect %d: %w", defectID, err)
	}
	return comments, nil
}
