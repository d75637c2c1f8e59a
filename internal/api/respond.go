package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/apperr"
)

// notFound writes the generic not-found body. Forbidden outcomes use the
// same response so callers cannot probe for resource existence.
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// writeError maps domain errors to HTTP responses. Invalid transitions and
// rejected input keep their human-readable reason; everything unexpected
// collapses to a 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrForbidden):
		notFound(c)
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Reason(err)})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "the defect was modified concurrently, retry"})
	default:
		log.Printf("api: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseID parses a numeric path parameter. Unparseable ids read as
// nonexistent resources.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		notFound(c)
		return 0, false
	}
	return uint(id), true
}
