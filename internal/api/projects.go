package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/gorm"
)

// handleListProjects returns the projects the caller may see.
func (d *deps) handleListProjects(c *gin.Context) {
	p := principalFrom(c)

	var projects []models.Project
	if p.Role == models.RoleLeader {
		if err := d.db.Order("id ASC").Find(&projects).Error; err != nil {
			writeError(c, err)
			return
		}
	} else {
		ids, err := access.GrantedProjectIDs(d.db, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if len(ids) > 0 {
			if err := d.db.Where("id IN ?", ids).Order("id ASC").Find(&projects).Error; err != nil {
				writeError(c, err)
				return
			}
		} else {
			projects = []models.Project{}
		}
	}
	c.JSON(http.StatusOK, projects)
}

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// handleCreateProject creates a project. Leader-only.
func (d *deps) handleCreateProject(c *gin.Context) {
	p := principalFrom(c)
	if !access.CanManageAccess(p) {
		notFound(c)
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	project := models.Project{Name: *req.Name}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	var err error
	if project.StartDate, err = parseDate(req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	if project.EndDate, err = parseDate(req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	if err := d.db.Create(&project).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// handleUpdateProject edits project fields. Leader-only.
func (d *deps) handleUpdateProject(c *gin.Context) {
	p := principalFrom(c)
	if !access.CanManageAccess(p) {
		notFound(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var project models.Project
	if err := d.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		writeError(c, err)
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		t, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		project.StartDate = t
	}
	if req.EndDate != nil {
		t, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		project.EndDate = t
	}

	if err := d.db.Save(&project).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// handleGetProject returns one project if the caller may see it.
func (d *deps) handleGetProject(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	allowed, err := access.CanViewProject(d.db, p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}

	var project models.Project
	if err := d.db.Preload("Stages").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// handleListStages returns a project's stages, gated on project visibility.
func (d *deps) handleListStages(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	allowed, err := access.CanViewProject(d.db, p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}

	var stages []models.Stage
	if err := d.db.Where("project_id = ?", id).Order("id ASC").Find(&stages).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

// handleGetUserAccess lists a user's grant rows. Leader-only.
func (d *deps) handleGetUserAccess(c *gin.Context) {
	p := principalFrom(c)
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	grants, err := access.UserProjectAccess(d.db, p, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

type setAccessRequest struct {
	ProjectID uint  `json:"project_id"`
	HasAccess *bool `json:"has_access"`
}

// handleSetUserAccess grants or revokes a user's project access. Leader-only.
func (d *deps) handleSetUserAccess(c *gin.Context) {
	p := principalFrom(c)
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	var req setAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == 0 || req.HasAccess == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and has_access are required"})
		return
	}

	if err := access.SetAccess(d.db, p, userID, req.ProjectID, *req.HasAccess); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseDate parses an optional "2006-01-02" date string.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", *raw, err)
	}
	return &t, nil
}
