package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/models"
)

// handleListStatuses returns the workflow status rows.
func (d *deps) handleListStatuses(c *gin.Context) {
	var statuses []models.Status
	if err := d.db.Order("id ASC").Find(&statuses).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// handleListPriorities returns the priority rows.
func (d *deps) handleListPriorities(c *gin.Context) {
	var priorities []models.Priority
	if err := d.db.Order("id ASC").Find(&priorities).Error; err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, priorities)
}
