package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/attachment"
	"github.com/snagtrack/snagtrack/internal/defect"
	"github.com/snagtrack/snagtrack/internal/models"
	"github.com/snagtrack/snagtrack/internal/notify"
	"github.com/snagtrack/snagtrack/internal/report"
	"gorm.io/gorm"
)

// handleListDefects returns the defects and projects visible to the caller.
func (d *deps) handleListDefects(c *gin.Context) {
	p := principalFrom(c)
	defects, projects, err := defect.ListVisible(d.db, p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"defects": defects, "projects": projects})
}

// handleGetDefect returns one defect. Unlike the listing, the creator and
// the current assignee can fetch their defect without a project grant.
func (d *deps) handleGetDefect(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	df, err := defect.Get(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	allowed, err := access.CanViewDefect(d.db, p, df)
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, df)
}

// handleCreateDefect reports a new defect, optionally with one attached
// file from the same multipart form. The file is stored before the database
// writes, then the defect and its attachment row are created in one
// transaction; a failed transaction removes the stored file again so no
// half-created defect or orphaned upload remains.
func (d *deps) handleCreateDefect(c *gin.Context) {
	p := principalFrom(c)

	projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 64)
	if err != nil || projectID == 0 {
		notFound(c)
		return
	}

	allowed, err := access.CanCreateDefect(d.db, p, uint(projectID))
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}

	priorityID, err := strconv.ParseUint(c.PostForm("priority_id"), 10, 64)
	if err != nil || priorityID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority_id is required"})
		return
	}

	opts := defect.CreateOpts{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		ProjectID:   uint(projectID),
		CreatorID:   p.ID,
		PriorityID:  uint(priorityID),
	}
	if raw := c.PostForm("stage_id"); raw != "" {
		stageID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage_id"})
			return
		}
		sid := uint(stageID)
		opts.StageID = &sid
	}
	if opts.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var handle, fileName, contentType string
	if file, err := c.FormFile("file"); err == nil && d.store != nil {
		src, err := file.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		defer src.Close()

		if handle, err = d.store.Save(file.Filename, src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fileName = file.Filename
		contentType = file.Header.Get("Content-Type")
	}

	var df *models.Defect
	err = d.db.Transaction(func(tx *gorm.DB) error {
		created, err := defect.Create(tx, opts)
		if err != nil {
			return err
		}
		if handle != "" {
			if _, err := attachment.Create(tx, created.ID, p.ID, handle, fileName, contentType); err != nil {
				return err
			}
			if created, err = defect.Get(tx, created.ID); err != nil {
				return err
			}
		}
		df = created
		return nil
	})
	if err != nil {
		if handle != "" {
			if rmErr := d.store.Remove(handle); rmErr != nil {
				log.Printf("api: remove upload %s after failed create: %v", handle, rmErr)
			}
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, df)
}

// updateDefectRequest is the lifecycle patch body. Absent fields stay
// unchanged; assignee_id 0 and an empty due_date clear their fields.
type updateDefectRequest struct {
	StatusID   *uint   `json:"status_id"`
	AssigneeID *uint   `json:"assignee_id"`
	DueDate    *string `json:"due_date"`
}

// handleUpdateDefect applies a lifecycle patch through the defect engine
// and notifies channels when a status transition was accepted.
func (d *deps) handleUpdateDefect(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	before, err := defect.Get(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	allowed, err := access.CanViewDefect(d.db, p, before)
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}

	patch := defect.UpdatePatch{
		StatusID:   req.StatusID,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	}
	df, err := defect.Update(d.db, id, patch, p)
	if err != nil {
		writeError(c, err)
		return
	}

	if d.notifier != nil && df.Status.Name != before.Status.Name {
		actor := strconv.FormatUint(uint64(p.ID), 10)
		var actingUser models.User
		if err := d.db.First(&actingUser, p.ID).Error; err == nil {
			actor = actingUser.FullName
		}
		d.notifier.DefectTransition(notify.TransitionEvent{
			DefectID:   df.ID,
			Title:      df.Title,
			Project:    df.Project.Name,
			FromStatus: before.Status.Name,
			ToStatus:   df.Status.Name,
			Actor:      actor,
		})
	}

	c.JSON(http.StatusOK, df)
}

// handleDefectReport returns the summary counts for the defect's project.
// Manager-only, and the manager needs a grant on that project.
func (d *deps) handleDefectReport(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	df, err := defect.Get(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	allowed, err := access.CanGenerateReport(d.db, p, df)
	if err != nil {
		writeError(c, err)
		return
	}
	if !allowed {
		notFound(c)
		return
	}

	summary, err := report.Summarize(d.db, df.ProjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
