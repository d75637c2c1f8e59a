// Package attachment links stored files to defects. Bytes live on a Store;
// the database keeps only metadata and handles.
package attachment

import (
	"errors"
	"fmt"

	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// Create records an attachment row for a file already saved to the store.
func Create(gdb *gorm.DB, defectID, uploadedByID uint, filePath, fileName, fileType string) (*models.Attachment, error) {
	var count int64
	if err := gdb.Model(&models.Defect{}).Where("id = ?", defectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("attachment: check defect %d: %w", defectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("attachment: defect %d: %w", defectID, apperr.ErrNotFound)
	}

	a := models.Attachment{
		DefectID:     defectID,
		FilePath:     filePath,
		FileName:     fileName,
		FileType:     fileType,
		UploadedByID: uploadedByID,
	}
	if err := gdb.Create(&a).Error; err != nil {
		return nil, fmt.Errorf("attachment: create: %w", err)
	}
	return &a, nil
}

// Get retrieves one attachment row.
func Get(gdb *gorm.DB, id uint) (*models.Attachment, error) {
	var a models.Attachment
	if err := gdb.Preload("UploadedBy").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attachment: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("attachment: get %d: %w", id, err)
	}
	return &a, nil
}

// ListByDefect returns a defect's attachments, oldest first.
func ListByDefect(gdb *gorm.DB, defectID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := gdb.Preload("UploadedBy").
		Where("defect_id = ?", defectID).
		Order("created_at ASC, id ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("attachment: list for defect %d: %w", defectID, err)
	}
	return attachments, nil
}
