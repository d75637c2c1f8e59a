package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/defect"
	"github.com/snagtrack/snagtrack/internal/history"
)

// handleDefectHistory returns a defect's audit trail, oldest first.
func (d *deps) handleDefectHistory(c *gin.Context) {
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

	entries, err := history.ListByDefect(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
