package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/comment"
	"github.com/snagtrack/snagtrack/internal/defect"
)

// handleListComments returns a defect's comment thread, oldest first.
func (d *deps) handleListComments(c *gin.Context) {
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

	comments, err := comment.ListByDefect(d.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

type addCommentRequest struct {
	DefectID uint   `json:"defect_id"`
	Content  string `json:"content"`
}

// handleAddComment appends to a defect's thread.
func (d *deps) handleAddComment(c *gin.Context) {
	p := principalFrom(c)

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DefectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "defect_id is required"})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	df, err := defect.Get(d.db, req.DefectID)
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

	cm, err := comment.Add(d.db, req.DefectID, p.ID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}
