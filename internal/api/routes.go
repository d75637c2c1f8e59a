package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/obs"
)

// registerRoutes sets up all API routes on the gin router.
func registerRoutes(router *gin.Engine, d *deps, jwtSecret string) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(obs.Handler()))

	authed := router.Group("/", AuthRequired(jwtSecret))

	authed.GET("/defects", d.handleListDefects)
	authed.GET("/defects/:id", d.handleGetDefect)
	authed.POST("/defects", d.handleCreateDefect)
	authed.PUT("/defects/:id", d.handleUpdateDefect)
	authed.GET("/defects/:id/report", d.handleDefectReport)

	authed.GET("/history/:id", d.handleDefectHistory)

	authed.GET("/comments/:id", d.handleListComments)
	authed.POST("/comments", d.handleAddComment)

	authed.GET("/projects", d.handleListProjects)
	authed.POST("/projects", d.handleCreateProject)
	authed.GET("/projects/:id", d.handleGetProject)
	authed.PATCH("/projects/:id", d.handleUpdateProject)
	authed.GET("/projects/:id/stages", d.handleListStages)
	authed.GET("/projects/users/:userId/access", d.handleGetUserAccess)
	authed.PATCH("/projects/users/:userId/access", d.handleSetUserAccess)

	authed.GET("/attachments/:id", d.handleDownloadAttachment)

	authed.GET("/statuses", d.handleListStatuses)
	authed.GET("/priorities", d.handleListPriorities)
}
