// Package history provides the append-only audit ledger for defect changes.
package history

import (
	"fmt"

	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// Action identifies which defect field a history entry records. The set is
// closed; Record rejects anything else.
type Action string

const (
	ActionStatusChanged   Action = "status_changed"
	ActionAssigneeChanged Action = "assignee_changed"
	ActionDueDateChanged  Action = "due_date_changed"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionStatusChanged, ActionAssigneeChanged, ActionDueDateChanged:
		return true
	}
	return false
}

// Record appends one immutable change entry for a defect. Old and new
// values are display strings already resolved by the caller, so reading the
// history never needs joins. Entries are never updated or deleted.
func Record(gdb *gorm.DB, defectID, actingUserID uint, action Action, oldValue, newValue *string) (*models.History, error) {
	if defectID == 0 {
		return nil, fmt.Errorf("history: defect id is required")
	}
	if actingUserID == 0 {
		return nil, fmt.Errorf("history: acting user id is required")
	}
	if !action.Valid() {
		return nil, fmt.Errorf("history: unknown action %q", action)
	}

	entry := models.History{
		DefectID: defectID,
		UserID:   actingUserID,
		Action:   string(action),
		OldValue: oldValue,
		NewValue: newValue,
	}
	if err := gdb.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("history: record %s for defect %d: %w", action, defectID, err)
	}
	return &entry, nil
}

// ListByDefect returns the full history of a defect, oldest first.
// Re-querying always returns the current complete history.
func ListByDefect(gdb *gorm.DB, defectID uint) ([]models.History, error) {
	var entries []models.History
	err := gdb.Preload("User").
		Where("defect_id = ?", defectID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("history: list for defect %d: %w", defectID, err)
	}
	return entries, nil
}
