// Package defect owns the defect lifecycle: creation, the status state
// machine, and the audit trail written for every accepted change. No other
// package mutates a defect's status, assignee or due date.
package defect

import (
	"errors"
	"fmt"
	"time"

	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/history"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// Sentinel display values recorded in history for the empty side of a
// change, matching what the original system showed its users.
const (
	displayUnassigned = "Не назначен"
	displayNoDueDate  = "Не устранено"
)

// dueDateLayout is the wire format for due dates; dueDateDisplay is how
// they are rendered into history entries.
const (
	dueDateLayout  = "2006-01-02"
	dueDateDisplay = "02.01.2006"
)

// CreateOpts holds parameters for reporting a new defect.
type CreateOpts struct {
	Title       string
	Description string
	ProjectID   uint
	StageID     *uint
	CreatorID   uint
	PriorityID  uint
}

// UpdatePatch holds the mutable lifecycle fields of a defect. Nil means
// "leave unchanged". AssigneeID of 0 clears the assignee; an empty DueDate
// clears the due date.
type UpdatePatch struct {
	StatusID   *uint
	AssigneeID *uint
	DueDate    *string
}

// Create reports a new defect. Status always starts at the seeded "New"
// row, assignee and due date start empty. Authorization is the caller's
// job: the API layer checks access.CanCreateDefect before calling this.
func Create(gdb *gorm.DB, opts CreateOpts) (*models.Defect, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("defect: title is required")
	}

	var project models.Project
	if err := gdb.First(&project, opts.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("defect: project %d: %w", opts.ProjectID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("defect: check project %d: %w", opts.ProjectID, err)
	}

	if opts.StageID != nil {
		var stage models.Stage
		if err := gdb.First(&stage, *opts.StageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("defect: stage %d: %w", *opts.StageID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("defect: check stage %d: %w", *opts.StageID, err)
		}
		if stage.ProjectID != opts.ProjectID {
			return nil, fmt.Errorf("defect: stage %d does not belong to project %d", *opts.StageID, opts.ProjectID)
		}
	}

	var priority models.Priority
	if err := gdb.First(&priority, opts.PriorityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("defect: priority %d: %w", opts.PriorityID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("defect: check priority %d: %w", opts.PriorityID, err)
	}

	newStatus, err := statusByName(gdb, models.StatusNew)
	if err != nil {
		return nil, err
	}

	d := models.Defect{
		Title:       opts.Title,
		Description: opts.Description,
		ProjectID:   opts.ProjectID,
		StageID:     opts.StageID,
		CreatorID:   opts.CreatorID,
		PriorityID:  opts.PriorityID,
		StatusID:    newStatus.ID,
	}
	if err := gdb.Create(&d).Error; err != nil {
		return nil, fmt.Errorf("defect: create: %w", err)
	}
	return Get(gdb, d.ID)
}

// Get retrieves a defect with all display relations preloaded.
func Get(gdb *gorm.DB, id uint) (*models.Defect, error) {
	var d models.Defect
	err := gdb.
		Preload("Project").
		Preload("Stage").
		Preload("Creator").
		Preload("Assignee").
		Preload("Priority").
		Preload("Status").
		Preload("Attachments").
		Preload("Attachments.UploadedBy").
		First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("defect: %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("defect: get %d: %w", id, err)
	}
	return &d, nil
}

// pendingEntry is a history record computed during validation and written
// after the field update succeeds.
type pendingEntry struct {
	action   history.Action
	oldValue string
	newValue string
}

// Update applies a lifecycle patch to a defect. A status change must match
// exactly one workflow edge and its actor constraint; assignee and due date
// changes carry no transition check of their own. Every accepted change to
// a patched field produces one history entry. The load-validate-write-audit
// sequence runs in one transaction, and the write is guarded by a version
// token so concurrent updates cannot interleave unseen.
func Update(gdb *gorm.DB, id uint, patch UpdatePatch, p access.Principal) (*models.Defect, error) {
	var out *models.Defect
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var d models.Defect
		if err := tx.Preload("Status").Preload("Assignee").First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("defect: %d: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("defect: load %d for update: %w", id, err)
		}

		updates := map[string]interface{}{}
		var pending []pendingEntry

		if patch.StatusID != nil {
			var target models.Status
			if err := tx.First(&target, *patch.StatusID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("defect: status %d: %w", *patch.StatusID, apperr.ErrNotFound)
				}
				return fmt.Errorf("defect: resolve status %d: %w", *patch.StatusID, err)
			}
			if err := checkTransition(&d, d.Status.Name, target.Name, p); err != nil {
				return err
			}
			updates["status_id"] = target.ID
			pending = append(pending, pendingEntry{
				action:   history.ActionStatusChanged,
				oldValue: d.Status.Name,
				newValue: target.Name,
			})
		}

		if patch.AssigneeID != nil {
			oldDisplay := displayUnassigned
			if d.Assignee != nil {
				oldDisplay = d.Assignee.FullName
			}
			if *patch.AssigneeID == 0 {
				updates["assignee_id"] = nil
				if d.AssigneeID != nil {
					pending = append(pending, pendingEntry{
						action:   history.ActionAssigneeChanged,
						oldValue: oldDisplay,
						newValue: displayUnassigned,
					})
				}
			} else {
				var assignee models.User
				if err := tx.First(&assignee, *patch.AssigneeID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("defect: user %d: %w", *patch.AssigneeID, apperr.ErrNotFound)
					}
					return fmt.Errorf("defect: resolve assignee %d: %w", *patch.AssigneeID, err)
				}
				updates["assignee_id"] = assignee.ID
				if d.AssigneeID == nil || *d.AssigneeID != assignee.ID {
					pending = append(pending, pendingEntry{
						action:   history.ActionAssigneeChanged,
						oldValue: oldDisplay,
						newValue: assignee.FullName,
					})
				}
			}
		}

		if patch.DueDate != nil {
			oldDisplay := displayNoDueDate
			if d.DueDate != nil {
				oldDisplay = d.DueDate.Format(dueDateDisplay)
			}
			if *patch.DueDate == "" {
				updates["due_date"] = nil
				if d.DueDate != nil {
					pending = append(pending, pendingEntry{
						action:   history.ActionDueDateChanged,
						oldValue: oldDisplay,
						newValue: displayNoDueDate,
					})
				}
			} else {
				due, err := time.Parse(dueDateLayout, *patch.DueDate)
				if err != nil {
					return apperr.InvalidInput(fmt.Sprintf("Invalid due date %q, expected YYYY-MM-DD", *patch.DueDate))
				}
				updates["due_date"] = due
				if d.DueDate == nil || !d.DueDate.Equal(due) {
					pending = append(pending, pendingEntry{
						action:   history.ActionDueDateChanged,
						oldValue: oldDisplay,
						newValue: due.Format(dueDateDisplay),
					})
				}
			}
		}

		if len(updates) > 0 {
			updates["version"] = d.Version + 1
			res := tx.Model(&models.Defect{}).
				Where("id = ? AND version = ?", id, d.Version).
				Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("defect: update %d: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("defect: %d: %w", id, apperr.ErrConflict)
			}
		}

		for _, pe := range pending {
			oldValue, newValue := pe.oldValue, pe.newValue
			if _, err := history.Record(tx, id, p.ID, pe.action, &oldValue, &newValue); err != nil {
				return err
			}
		}

		reloaded, err := Get(tx, id)
		if err != nil {
			return err
		}
		out = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// statusByName resolves a seeded workflow status row. A missing row is
// fatal: the workflow cannot run without its lookup data.
func statusByName(gdb *gorm.DB, name string) (*models.Status, error) {
	var status models.Status
	if err := gdb.Where("name = ?", name).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("defect: status %q: %w", name, apperr.ErrSeedDataMissing)
		}
		return nil, fmt.Errorf("defect: resolve status %q: %w", name, err)
	}
	return &status, nil
}
