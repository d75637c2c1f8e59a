// Package access centralizes every role, ownership and grant check in the
// tracker. Components ask the gate instead of re-deriving policy, so the
// rules cannot drift between call sites.
package access

import (
	"fmt"

	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/db"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// Principal is the authenticated actor performing an operation. It arrives
// already verified; the gate never touches credentials.
type Principal struct {
	ID   uint
	Role string
}

// ProjectAccess is one row of a user's per-project grant listing.
type ProjectAccess struct {
	ProjectID   uint   `json:"project_id"`
	ProjectName string `json:"project_name"`
	HasAccess   bool   `json:"has_access"`
}

// HasGrant reports whether an active grant row exists for (userID,
// projectID). A missing row and a row with has_access=false both deny.
func HasGrant(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	var count int64
	err := gdb.Model(&models.ProjectUser{}).
		Where("user_id = ? AND project_id = ? AND has_access = ?", userID, projectID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("access: check grant user=%d project=%d: %w", userID, projectID, err)
	}
	return count > 0, nil
}

// CanViewProject reports whether p may see the project. Leaders see every
// project; everyone else needs an active grant.
func CanViewProject(gdb *gorm.DB, p Principal, projectID uint) (bool, error) {
	if p.Role == models.RoleLeader {
		return true, nil
	}
	return HasGrant(gdb, p.ID, projectID)
}

// CanViewDefect reports whether p may see the defect. Beyond project
// visibility, the creator and the current assignee always see their own
// defect, even without a project grant.
func CanViewDefect(gdb *gorm.DB, p Principal, d *models.Defect) (bool, error) {
	if p.Role == models.RoleLeader {
		return true, nil
	}
	if d.CreatorID == p.ID {
		return true, nil
	}
	if d.AssigneeID != nil && *d.AssigneeID == p.ID {
		return true, nil
	}
	return HasGrant(gdb, p.ID, d.ProjectID)
}

// CanCreateDefect reports whether p may report a defect on the project.
// Only engineers create defects, and only on projects they are granted.
func CanCreateDefect(gdb *gorm.DB, p Principal, projectID uint) (bool, error) {
	if p.Role != models.RoleEngineer {
		return false, nil
	}
	return HasGrant(gdb, p.ID, projectID)
}

// CanGenerateReport reports whether p may generate a report for the
// defect's project. Manager-only, and the manager needs a project grant.
func CanGenerateReport(gdb *gorm.DB, p Principal, d *models.Defect) (bool, error) {
	if p.Role != models.RoleManager {
		return false, nil
	}
	return HasGrant(gdb, p.ID, d.ProjectID)
}

// CanManageAccess reports whether p may grant or revoke project access.
func CanManageAccess(p Principal) bool {
	return p.Role == models.RoleLeader
}

// GrantedProjectIDs returns the ids of all projects the user holds an
// active grant on.
func GrantedProjectIDs(gdb *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := gdb.Model(&models.ProjectUser{}).
		Where("user_id = ? AND has_access = ?", userID, true).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("access: granted projects for user %d: %w", userID, err)
	}
	return ids, nil
}

// SetAccess grants or revokes a user's access to a project. Leader-only.
// The grant row is created on first use and toggled afterwards, keeping one
// row per (user, project) pair.
func SetAccess(gdb *gorm.DB, p Principal, userID, projectID uint, hasAccess bool) error {
	if !CanManageAccess(p) {
		return apperr.ErrForbidden
	}

	res := gdb.Model(&models.ProjectUser{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Update("has_access", hasAccess)
	if res.Error != nil {
		return fmt.Errorf("access: set access user=%d project=%d: %w", userID, projectID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	grant := models.ProjectUser{UserID: userID, ProjectID: projectID, HasAccess: hasAccess}
	if err := gdb.Create(&grant).Error; err != nil {
		// A concurrent first grant can win the insert; fall back to update.
		if db.IsDuplicateEntry(err) {
			res := gdb.Model(&models.ProjectUser{}).
				Where("user_id = ? AND project_id = ?", userID, projectID).
				Update("has_access", hasAccess)
			if res.Error != nil {
				return fmt.Errorf("access: set access user=%d project=%d: %w", userID, projectID, res.Error)
			}
			return nil
		}
		return fmt.Errorf("access: create grant user=%d project=%d: %w", userID, projectID, err)
	}
	return nil
}

// UserProjectAccess lists a user's grant state across all projects they
// have a grant row for. Leader-only.
func UserProjectAccess(gdb *gorm.DB, p Principal, userID uint) ([]ProjectAccess, error) {
	if !CanManageAccess(p) {
		return nil, apperr.ErrForbidden
	}

	var grants []models.ProjectUser
	err := gdb.Preload("Project").
		Where("user_id = ?", userID).
		Order("project_id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("access: list grants for user %d: %w", userID, err)
	}

	out := make([]ProjectAccess, len(grants))
	for i, g := range grants {
		out[i] = ProjectAccess{
			ProjectID:   g.ProjectID,
			ProjectName: g.Project.Name,
			HasAccess:   g.HasAccess,
		}
	}
	return out, nil
}
