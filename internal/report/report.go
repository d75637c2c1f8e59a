// Package report aggregates defect data for manager reports. Rendering
// (spreadsheets, charts) happens elsewhere; this package only computes the
// numbers.
package report

import (
	"fmt"
	"time"

	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// StatusCount holds a status name and its defect count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// PriorityCount holds a priority name and its defect count.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

// ProjectSummary is the report payload for one project.
type ProjectSummary struct {
	ProjectID  uint            `json:"project_id"`
	Total      int64           `json:"total"`
	Overdue    int64           `json:"overdue"`
	ByStatus   []StatusCount   `json:"by_status"`
	ByPriority []PriorityCount `json:"by_priority"`
}

// Summarize computes defect counts for a project, grouped by status and
// priority. Overdue counts open defects whose due date has passed.
func Summarize(gdb *gorm.DB, projectID uint) (*ProjectSummary, error) {
	s := &ProjectSummary{ProjectID: projectID}

	if err := gdb.Model(&models.Defect{}).
		Where("project_id = ?", projectID).
		Count(&s.Total).Error; err != nil {
		return nil, fmt.Errorf("report: count defects for project %d: %w", projectID, err)
	}

	if err := gdb.Model(&models.Defect{}).
		Select("statuses.name AS status, COUNT(*) AS count").
		Joins("JOIN statuses ON statuses.id = defects.status_id").
		Where("defects.project_id = ?", projectID).
		Group("statuses.name").
		Order("statuses.name ASC").
		Find(&s.ByStatus).Error; err != nil {
		return nil, fmt.Errorf("report: status summary for project %d: %w", projectID, err)
	}

	if err := gdb.Model(&models.Defect{}).
		Select("priorities.name AS priority, COUNT(*) AS count").
		Joins("JOIN priorities ON priorities.id = defects.priority_id").
		Where("defects.project_id = ?", projectID).
		Group("priorities.name").
		Order("priorities.name ASC").
		Find(&s.ByPriority).Error; err != nil {
		return nil, fmt.Errorf("report: priority summary for project %d: %w", projectID, err)
	}

	if err := gdb.Model(&models.Defect{}).
		Joins("JOIN statuses ON statuses.id = defects.status_id").
		Where("defects.project_id = ? AND defects.due_date < ? AND statuses.name != ?",
			projectID, time.Now(), models.StatusClosed).
		Count(&s.Overdue).Error; err != nil {
		return nil, fmt.Errorf("report: overdue count for project %d: %w", projectID, err)
	}

	return s, nil
}

// OpenCountsByProject returns, for every project with at least one open
// defect, the project name and open-defect count. Used by the daily digest.
func OpenCountsByProject(gdb *gorm.DB) ([]ProjectOpenCount, error) {
	var rows []ProjectOpenCount
	err := gdb.Model(&models.Defect{}).
		Select("projects.name AS project, COUNT(*) AS count").
		Joins("JOIN projects ON projects.id = defects.project_id").
		Joins("JOIN statuses ON statuses.id = defects.status_id").
		Where("statuses.name != ?", models.StatusClosed).
		Group("projects.name").
		Order("projects.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("report: open counts by project: %w", err)
	}
	return rows, nil
}

// ProjectOpenCount holds a project name and its open defect count.
type ProjectOpenCount struct {
	Project string `json:"project"`
	Count   int64  `json:"count"`
}
