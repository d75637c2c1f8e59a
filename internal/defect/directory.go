package defect

import (
	"fmt"

	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// ListVisible returns the defects and projects the principal may list.
// Leaders see everything; everyone else sees exactly the projects they hold
// an active grant on. Being creator or assignee of a defect outside those
// projects does not put it in the listing; that wider rule applies only to
// fetching a single defect (access.CanViewDefect).
func ListVisible(gdb *gorm.DB, p access.Principal) ([]models.Defect, []models.Project, error) {
	if p.Role == models.RoleLeader {
		defects, err := listDefects(gdb, nil)
		if err != nil {
			return nil, nil, err
		}
		var projects []models.Project
		if err := gdb.Order("id ASC").Find(&projects).Error; err != nil {
			return nil, nil, fmt.Errorf("defect: list projects: %w", err)
		}
		return defects, projects, nil
	}

	ids, err := access.GrantedProjectIDs(gdb, p.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return []models.Defect{}, []models.Project{}, nil
	}

	defects, err := listDefects(gdb, ids)
	if err != nil {
		return nil, nil, err
	}
	var projects []models.Project
	if err := gdb.Where("id IN ?", ids).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, nil, fmt.Errorf("defect: list projects: %w", err)
	}
	return defects, projects, nil
}

// listDefects loads defects with display relations, newest first. A nil
// projectIDs means no scoping.
func listDefects(gdb *gorm.DB, projectIDs []uint) ([]models.Defect, error) {
	q := gdb.
		Preload("Project").
		Preload("Stage").
		Preload("Creator").
		Preload("Assignee").
		Preload("Priority").
		Preload("Status")
	if projectIDs != nil {
		q = q.Where("project_id IN ?", projectIDs)
	}
	var defects []models.Defect
	if err := q.Order("created_at DESC, id DESC").Find(&defects).Error; err != nil {
		return nil, fmt.Errorf("defect: list: %w", err)
	}
	return defects, nil
}
