package api

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/attachment"
	"github.com/snagtrack/snagtrack/internal/defect"
)

// handleDownloadAttachment streams a stored file, gated by visibility of
// the defect it belongs to.
func (d *deps) handleDownloadAttachment(c *gin.Context) {
	p := principalFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if d.store == nil {
		notFound(c)
		return
	}

	a, err := attachment.Get(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	df, err := defect.Get(d.db, a.DefectID)
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

	rc, err := d.store.Open(a.FilePath)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName))
	contentType := a.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	// Headers are already out; a read failure here truncates the body.
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Printf("api: stream attachment %d (%s): %v", a.ID, a.FilePath, err)
	}
}
